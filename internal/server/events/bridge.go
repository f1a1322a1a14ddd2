package events

import (
	"github.com/agentstation/userdetails/pkg/form"
	"github.com/agentstation/userdetails/pkg/profile"
	"github.com/agentstation/userdetails/pkg/store"
)

// WatchStore publishes ProfileUpdated for every update of s. The returned
// function stops watching.
func (b *Broker) WatchStore(s *store.Store) (stop func()) {
	return s.Subscribe(func(record profile.Record) {
		b.Publish(ProfileUpdated, ProfileUpdate{
			Version: s.Version(),
			Record:  record,
		})
	})
}

// FormListener returns a form listener that publishes the submission
// lifecycle of the session identified by session.
func (b *Broker) FormListener(session string) form.Listener {
	return func(e form.Event) {
		payload := Submission{Session: session}
		switch e.Kind {
		case form.EventSubmitted:
			deadline := e.Deadline
			payload.Deadline = &deadline
			b.Publish(SubmissionStarted, payload)
		case form.EventRejected:
			payload.Errors = e.Errors.Fields()
			b.Publish(SubmissionRejected, payload)
		case form.EventCompleted:
			b.Publish(SubmissionCompleted, payload)
		case form.EventCanceled:
			b.Publish(SubmissionCanceled, payload)
		}
	}
}
