package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/userdetails/internal/server/events"
	"github.com/agentstation/userdetails/internal/server/sse"
	ws "github.com/agentstation/userdetails/internal/server/websocket"
	"github.com/agentstation/userdetails/pkg/profile"
)

func sampleEvent() events.Event {
	return events.Event{
		ID:        42,
		Type:      events.ProfileUpdated,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Data: events.ProfileUpdate{
			Version: 1,
			Record:  profile.Record{FirstName: "Jane", TechStack: []string{"Go"}},
		},
	}
}

func TestToSSE(t *testing.T) {
	e := ToSSE(sampleEvent())
	assert.Equal(t, "profile.updated", e.Event)
	assert.Equal(t, "42", e.ID)
	assert.IsType(t, events.ProfileUpdate{}, e.Data)
}

func TestToMessage(t *testing.T) {
	m := ToMessage(sampleEvent())
	assert.Equal(t, uint64(42), m.ID)
	assert.Equal(t, "profile.updated", m.Type)
	assert.Equal(t, sampleEvent().Timestamp, m.Timestamp)
}

func TestSubscribersSendAndClose(t *testing.T) {
	logger := zerolog.Nop()

	sseSub := NewSSESubscriber(sse.NewBroadcaster(&logger))
	require.NoError(t, sseSub.Send(sampleEvent()))
	require.NoError(t, sseSub.Close())
	require.NoError(t, sseSub.Close())

	wsSub := NewWebSocketSubscriber(ws.NewHub(&logger))
	require.NoError(t, wsSub.Send(sampleEvent()))
	require.NoError(t, wsSub.Close())
}

func TestBrokerToWebSocketHub(t *testing.T) {
	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub(&logger)
	go hub.Run(ctx)
	broker := events.NewBroker(&logger)
	go broker.Run(ctx)
	broker.Subscribe(NewWebSocketSubscriber(hub))

	client := ws.NewClient("c1", hub, nil)
	hub.Register(client)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1 && broker.SubscriberCount() == 1
	}, time.Second, 5*time.Millisecond)

	broker.Publish(events.ClientConnected, nil)

	// The client's queue is internal; a successful delivery leaves the
	// client registered and the broker reports no drops.
	require.Eventually(t, func() bool {
		published, _ := broker.Stats()
		return published == 1
	}, time.Second, 5*time.Millisecond)
	_, dropped := broker.Stats()
	assert.Zero(t, dropped)
}
