package form

import (
	"fmt"
	"time"

	"github.com/agentstation/userdetails/pkg/errors"
	"github.com/agentstation/userdetails/pkg/profile"
)

// State is the form's lifecycle state.
type State int

// Form states. A form alternates between Editing and Submitting and has no
// terminal state.
const (
	Editing State = iota
	Submitting
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EventKind names a submission lifecycle event.
type EventKind string

// Submission lifecycle events.
const (
	EventSubmitted EventKind = "submitted"
	EventRejected  EventKind = "rejected"
	EventCompleted EventKind = "completed"
	EventCanceled  EventKind = "canceled"
)

// Event describes a submission lifecycle change.
type Event struct {
	Kind   EventKind
	Record profile.Record
	Errors errors.ValidationErrors
	// Deadline is set for EventSubmitted.
	Deadline time.Time
}

// Listener receives submission lifecycle events. Listeners are called
// without the form lock held.
type Listener func(Event)

// Snapshot is a consistent view of a form at one instant.
type Snapshot struct {
	Values      Values            `json:"values"`
	State       State             `json:"state"`
	Errors      map[string]string `json:"errors,omitempty"`
	SubmitLabel string            `json:"submitLabel"`
	Disabled    bool              `json:"disabled"`
	PendingTill *time.Time        `json:"pendingUntil,omitempty"`
}
