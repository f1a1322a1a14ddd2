// Package form implements the user details input form: raw field values,
// validation, the variable length tech stack list and the delayed hand-off
// of a valid record to a holder.
package form

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/userdetails/pkg/constants"
	"github.com/agentstation/userdetails/pkg/errors"
	"github.com/agentstation/userdetails/pkg/profile"
	"github.com/agentstation/userdetails/pkg/task"
)

// Form errors. Input errors wrap errors.ErrInvalidInput and lifecycle
// errors wrap errors.ErrConflict.
var (
	// ErrFormDisabled is returned by mutators while a submission is pending.
	ErrFormDisabled = errors.New("form is disabled")
	// ErrSubmissionPending is returned by Submit while a submission is pending.
	ErrSubmissionPending = errors.New("submission already pending")
	// ErrFormClosed is returned by Submit after Close.
	ErrFormClosed = fmt.Errorf("%w: form is closed", errors.ErrConflict)
	// ErrUnknownField is returned by SetField for names it does not manage.
	ErrUnknownField = fmt.Errorf("%w: unknown field", errors.ErrInvalidInput)
	// ErrIndexOutOfRange is returned for tech stack indexes outside the list.
	ErrIndexOutOfRange = fmt.Errorf("%w: tech stack index out of range", errors.ErrInvalidInput)
	// ErrFirstEntry is returned when removing the first tech stack entry.
	ErrFirstEntry = fmt.Errorf("%w: the first tech stack entry cannot be removed", errors.ErrInvalidInput)
	// ErrInvalidGender is returned by SelectGender for values outside the options.
	ErrInvalidGender = fmt.Errorf("%w: invalid gender option", errors.ErrInvalidInput)
)

// Updater receives records from successful submissions.
type Updater interface {
	Update(record profile.Record)
}

// Values holds the raw input of every field.
type Values = profile.Input

// DefaultValues returns the initial values: every field empty and a single
// blank tech stack entry.
func DefaultValues() Values {
	return Values{TechStack: []string{""}}
}

// Form collects and validates user details. It is safe for concurrent use.
type Form struct {
	mu        sync.Mutex
	values    Values
	state     State
	errs      errors.ValidationErrors
	revalid   bool
	pending   *task.Task
	pendingID uint64
	closed    bool

	holder Updater
	opts   *options
	logger *zerolog.Logger
}

// New creates a form that hands valid records to holder.
func New(holder Updater, opts ...Option) *Form {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Form{
		values: DefaultValues(),
		holder: holder,
		opts:   o,
		logger: o.logger,
	}
}

// Values returns a copy of the current values.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values.Clone()
}

// State returns the current lifecycle state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Errors returns the field errors from the latest validation.
func (f *Form) Errors() errors.ValidationErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append(errors.ValidationErrors(nil), f.errs...)
}

// SubmitLabel returns the label of the submit control.
func (f *Form) SubmitLabel() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return submitLabel(f.state)
}

func submitLabel(s State) string {
	if s == Submitting {
		return constants.SubmittingLabel
	}
	return constants.SubmitLabel
}

// Snapshot returns values, state and errors read atomically.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{
		Values:      f.values.Clone(),
		State:       f.state,
		SubmitLabel: submitLabel(f.state),
		Disabled:    f.state == Submitting,
	}
	if len(f.errs) > 0 {
		snap.Errors = f.errs.Fields()
	}
	if f.pending != nil {
		deadline := f.pending.Deadline()
		snap.PendingTill = &deadline
	}
	return snap
}

// SetField sets one of the text fields: firstName, lastName, email,
// phoneNumber or dob.
func (f *Form) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editable("edit " + name); err != nil {
		return err
	}

	switch name {
	case profile.FieldFirstName:
		f.values.FirstName = value
	case profile.FieldLastName:
		f.values.LastName = value
	case profile.FieldEmail:
		f.values.Email = value
	case profile.FieldPhoneNumber:
		f.values.PhoneNumber = value
	case profile.FieldDateOfBirth:
		f.values.DateOfBirth = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	f.revalidate()
	return nil
}

// SelectGender selects one of the gender options. The empty value clears
// the selection.
func (f *Form) SelectGender(value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editable("select gender"); err != nil {
		return err
	}
	if value != "" {
		if _, ok := profile.ParseGender(value); !ok {
			return fmt.Errorf("%w: %q", ErrInvalidGender, value)
		}
	}

	f.values.Gender = value
	f.revalidate()
	return nil
}

// SetTechStack edits the tech stack entry at index.
func (f *Form) SetTechStack(index int, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editable("edit tech stack"); err != nil {
		return err
	}
	if index < 0 || index >= len(f.values.TechStack) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	f.values.TechStack[index] = value
	f.revalidate()
	return nil
}

// Replace sets every value at once. An empty tech stack is replaced by a
// single blank entry.
func (f *Form) Replace(values Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editable("replace values"); err != nil {
		return err
	}
	if values.Gender != "" {
		if _, ok := profile.ParseGender(values.Gender); !ok {
			return fmt.Errorf("%w: %q", ErrInvalidGender, values.Gender)
		}
	}

	f.values = values.Clone()
	if len(f.values.TechStack) == 0 {
		f.values.TechStack = []string{""}
	}
	f.revalidate()
	return nil
}

// Append adds a blank tech stack entry at the end. It does nothing while
// submitting.
func (f *Form) Append() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Submitting {
		return
	}
	f.values.TechStack = append(f.values.TechStack, "")
	f.revalidate()
}

// Remove deletes the tech stack entry at index, keeping the order of the
// rest. The first entry is never removable and the list never shrinks below
// one entry; Remove reports whether an entry was removed.
func (f *Form) Remove(index int) bool {
	return f.RemoveEntry(index) == nil
}

// RemoveEntry is Remove with the reason for a refusal: a StateError while
// submitting, an errors.NotFoundError for an index outside the list, and
// ErrFirstEntry for the first or only entry.
func (f *Form) RemoveEntry(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editable("remove tech stack entry"); err != nil {
		return err
	}
	n := len(f.values.TechStack)
	if index < 0 || index >= n {
		return errors.NewNotFoundError("tech stack entry", strconv.Itoa(index))
	}
	if index == 0 || n <= 1 {
		return ErrFirstEntry
	}

	f.values.TechStack = append(f.values.TechStack[:index:index], f.values.TechStack[index+1:]...)
	f.revalidate()
	return nil
}

// Validate validates the current values, records the errors and enables
// validation on every later change.
func (f *Form) Validate() errors.ValidationErrors {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.revalid = true
	f.errs = profile.Validate(f.values)
	return append(errors.ValidationErrors(nil), f.errs...)
}

// Submit validates the values and, when valid, schedules the record to be
// handed to the holder after the configured delay. Invalid values return the
// errors.ValidationErrors and leave the form editable. Canceling ctx before
// the delay elapses cancels the submission.
func (f *Form) Submit(ctx context.Context) (*task.Task, error) {
	f.mu.Lock()

	if f.closed {
		f.mu.Unlock()
		return nil, ErrFormClosed
	}
	if f.state == Submitting {
		f.mu.Unlock()
		return nil, errors.NewStateError("submit", Submitting.String(), ErrSubmissionPending)
	}

	f.revalid = true
	f.errs = profile.Validate(f.values)
	if len(f.errs) > 0 {
		verrs := append(errors.ValidationErrors(nil), f.errs...)
		f.mu.Unlock()

		f.logger.Debug().Strs("fields", fieldNames(verrs)).Msg("Submission rejected")
		f.notify(Event{Kind: EventRejected, Errors: verrs})
		return nil, verrs
	}

	record := f.values.Record()
	f.pendingID++
	id := f.pendingID
	f.state = Submitting
	// Completion waits for the submitted event so listeners see them in order.
	announced := make(chan struct{})
	f.pending = task.After(ctx, f.opts.delay, func(context.Context) {
		<-announced
		f.complete(id, record)
	})
	t := f.pending
	f.mu.Unlock()

	f.logger.Debug().Dur("delay", f.opts.delay).Msg("Submission pending")
	f.notify(Event{Kind: EventSubmitted, Record: record.Clone(), Deadline: t.Deadline()})
	close(announced)

	go f.watch(id, t)
	return t, nil
}

// complete hands the record to the holder and resets the form. The holder
// is updated under the form lock so a concurrent Cancel either wins
// entirely or not at all.
func (f *Form) complete(id uint64, record profile.Record) {
	f.mu.Lock()
	if f.pendingID != id || f.state != Submitting {
		f.mu.Unlock()
		return
	}

	f.holder.Update(record)

	f.values = DefaultValues()
	f.errs = nil
	f.revalid = false
	f.state = Editing
	f.pending = nil
	f.mu.Unlock()

	f.logger.Info().Str("email", record.Email).Msg("Submission completed")
	f.notify(Event{Kind: EventCompleted, Record: record.Clone()})
}

// watch returns the form to Editing when a pending task is canceled through
// its context rather than through Cancel or Close.
func (f *Form) watch(id uint64, t *task.Task) {
	<-t.Done()
	if t.State() != task.Canceled {
		return
	}

	f.mu.Lock()
	if f.pendingID != id || f.state != Submitting {
		f.mu.Unlock()
		return
	}
	f.state = Editing
	f.pending = nil
	f.mu.Unlock()

	f.logger.Debug().Err(t.Err()).Msg("Submission canceled by context")
	f.notify(Event{Kind: EventCanceled})
}

// Cancel aborts a pending submission and returns to Editing with the values
// kept. It reports whether a submission was pending.
func (f *Form) Cancel() bool {
	f.mu.Lock()
	if !f.abort() {
		f.mu.Unlock()
		return false
	}
	f.mu.Unlock()

	f.logger.Debug().Msg("Submission canceled")
	f.notify(Event{Kind: EventCanceled})
	return true
}

// Close cancels any pending submission so it never reaches the holder.
// Later submissions are refused.
func (f *Form) Close() {
	f.mu.Lock()
	f.closed = true
	aborted := f.abort()
	f.mu.Unlock()

	if aborted {
		f.notify(Event{Kind: EventCanceled})
	}
}

// abort must be called with f.mu held.
func (f *Form) abort() bool {
	if f.state != Submitting {
		return false
	}
	if f.pending != nil {
		f.pending.Cancel()
	}
	f.pendingID++
	f.state = Editing
	f.pending = nil
	return true
}

// editable must be called with f.mu held.
func (f *Form) editable(op string) error {
	if f.state == Submitting {
		return errors.NewStateError(op, Submitting.String(), ErrFormDisabled)
	}
	return nil
}

// revalidate must be called with f.mu held.
func (f *Form) revalidate() {
	if f.revalid {
		f.errs = profile.Validate(f.values)
	}
}

func (f *Form) notify(e Event) {
	for _, fn := range f.opts.listeners {
		fn(e)
	}
}

func fieldNames(verrs errors.ValidationErrors) []string {
	names := make([]string, 0, len(verrs))
	for _, e := range verrs {
		names = append(names, e.Field)
	}
	return names
}

// PendingUntil returns when the pending submission is due, if any.
func (f *Form) PendingUntil() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return time.Time{}, false
	}
	return f.pending.Deadline(), true
}
