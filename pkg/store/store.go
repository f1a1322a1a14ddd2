// Package store holds the most recently submitted user details record and
// notifies subscribers whenever it is replaced.
//
// A Store is shared by every form session of a process: forms push records
// into it and display views subscribe to it.
package store

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/userdetails/pkg/logging"
	"github.com/agentstation/userdetails/pkg/profile"
)

// Listener is called with a copy of the new record after every Update.
type Listener func(record profile.Record)

type subscription struct {
	id uint64
	fn Listener
}

// Store is an observable holder of at most one record.
type Store struct {
	// notifyMu serializes Update so listeners see records in version order.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	record    profile.Record
	hasRecord bool
	version   uint64

	subMu     sync.Mutex
	nextID    uint64
	listeners []subscription

	logger *zerolog.Logger
}

// New creates an empty Store. A nil logger selects the default logger.
func New(logger *zerolog.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{logger: logger}
}

// Current returns a copy of the record and whether one has been submitted.
func (s *Store) Current() (profile.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasRecord {
		return profile.Record{}, false
	}
	return s.record.Clone(), true
}

// Version returns the number of updates applied so far.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Update replaces the record wholesale and synchronously notifies every
// listener in subscription order. Concurrent updates are applied one at a
// time, so the last record a listener receives is the current one.
// Listeners may call Current but must not call Update.
func (s *Store) Update(record profile.Record) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.record = record.Clone()
	s.hasRecord = true
	s.version++
	version := s.version
	s.mu.Unlock()

	s.subMu.Lock()
	listeners := make([]subscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.subMu.Unlock()

	s.logger.Debug().
		Uint64("version", version).
		Int("listeners", len(listeners)).
		Msg("Record updated")

	for _, sub := range listeners {
		sub.fn(record.Clone())
	}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// SubscriberCount returns the number of active listeners.
func (s *Store) SubscriberCount() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.listeners)
}
