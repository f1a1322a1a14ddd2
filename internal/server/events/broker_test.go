package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/userdetails/pkg/form"
	"github.com/agentstation/userdetails/pkg/logging"
	"github.com/agentstation/userdetails/pkg/profile"
	"github.com/agentstation/userdetails/pkg/store"
)

// mockSubscriber records the events it receives.
type mockSubscriber struct {
	events []Event
	mu     sync.Mutex
	closed bool
}

func (m *mockSubscriber) Send(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSubscriber) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *mockSubscriber) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func startBroker(t *testing.T) *Broker {
	t.Helper()
	logger := zerolog.Nop()
	b := NewBroker(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)
	return b
}

func TestBrokerDelivers(t *testing.T) {
	b := startBroker(t)
	sub := &mockSubscriber{}
	b.Subscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	b.Publish(ClientConnected, map[string]any{"client": "test"})
	b.Publish(ClientConnected, nil)

	require.Eventually(t, func() bool { return len(sub.Events()) == 2 }, time.Second, 5*time.Millisecond)
	ids := []uint64{sub.Events()[0].ID, sub.Events()[1].ID}
	assert.Equal(t, []uint64{1, 2}, ids)

	published, dropped := b.Stats()
	assert.Equal(t, uint64(2), published)
	assert.Zero(t, dropped)
}

func TestBrokerKeepsPublishOrder(t *testing.T) {
	b := startBroker(t)
	sub := &mockSubscriber{}
	b.Subscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	kinds := []EventType{SubmissionStarted, SubmissionCompleted, ProfileUpdated, SubmissionRejected}
	for i := 0; i < 25; i++ {
		for _, k := range kinds {
			b.Publish(k, nil)
		}
	}

	require.Eventually(t, func() bool { return len(sub.Events()) == 100 }, time.Second, 5*time.Millisecond)
	for i, e := range sub.Events() {
		assert.Equal(t, uint64(i+1), e.ID)
		assert.Equal(t, kinds[i%len(kinds)], e.Type)
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := startBroker(t)
	sub := &mockSubscriber{}
	b.Subscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	b.Unsubscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, sub.Closed())
}

func TestBrokerShutdownClosesSubscribers(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)

	// Subscribing before Run must not block.
	sub := &mockSubscriber{}
	b.Subscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, sub.Closed, time.Second, 5*time.Millisecond)
	assert.Zero(t, b.SubscriberCount())
}

func TestWatchStore(t *testing.T) {
	b := startBroker(t)
	sub := &mockSubscriber{}
	b.Subscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	s := store.New(logging.NewNopLogger())
	stop := b.WatchStore(s)
	s.Update(profile.Record{FirstName: "Jane", TechStack: []string{"Go"}})

	require.Eventually(t, func() bool { return len(sub.Events()) == 1 }, time.Second, 5*time.Millisecond)
	event := sub.Events()[0]
	assert.Equal(t, ProfileUpdated, event.Type)
	update, ok := event.Data.(ProfileUpdate)
	require.True(t, ok)
	assert.Equal(t, uint64(1), update.Version)
	assert.Equal(t, "Jane", update.Record.FirstName)

	stop()
	assert.Zero(t, s.SubscriberCount())
}

func TestFormListener(t *testing.T) {
	b := startBroker(t)
	sub := &mockSubscriber{}
	b.Subscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	listener := b.FormListener("public-1")
	listener(form.Event{Kind: form.EventSubmitted, Deadline: time.Now()})
	listener(form.Event{Kind: form.EventCanceled})

	require.Eventually(t, func() bool { return len(sub.Events()) == 2 }, time.Second, 5*time.Millisecond)

	types := map[EventType]Submission{}
	for _, e := range sub.Events() {
		types[e.Type] = e.Data.(Submission)
	}
	require.Contains(t, types, SubmissionStarted)
	require.Contains(t, types, SubmissionCanceled)
	assert.Equal(t, "public-1", types[SubmissionStarted].Session)
	assert.NotNil(t, types[SubmissionStarted].Deadline)
	assert.Nil(t, types[SubmissionCanceled].Deadline)
}
