// Package events fans user details activity out to real-time transports.
//
// A Broker receives events from the record store and from form sessions and
// delivers them to every registered Subscriber (SSE, WebSocket). Transports
// never talk to the store or the forms directly.
package events

import (
	"time"

	"github.com/agentstation/userdetails/pkg/profile"
)

// EventType names an event on the update stream.
type EventType string

// Event types.
const (
	// ProfileUpdated is published when a submission reaches the store.
	ProfileUpdated EventType = "profile.updated"

	// Submission lifecycle of a single form session.
	SubmissionStarted   EventType = "submission.started"
	SubmissionRejected  EventType = "submission.rejected"
	SubmissionCompleted EventType = "submission.completed"
	SubmissionCanceled  EventType = "submission.canceled"

	// ClientConnected is published by transports when a client attaches.
	ClientConnected EventType = "client.connected"
)

// Event is one entry on the update stream. ID increases monotonically per
// broker.
type Event struct {
	ID        uint64    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// ProfileUpdate is the payload of ProfileUpdated.
type ProfileUpdate struct {
	Version uint64         `json:"version"`
	Record  profile.Record `json:"record"`
}

// Submission is the payload of the submission events. Session is the public
// session identifier, never the cookie value.
type Submission struct {
	Session  string            `json:"session"`
	Deadline *time.Time        `json:"deadline,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}
