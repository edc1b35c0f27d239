package sse

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()

	m := NewManager(slog.New(slog.DiscardHandler), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
		defer done()
		_ = m.Shutdown(shutdownCtx)
	})
	return m
}

func receive(t *testing.T, client *Client) Event {
	t.Helper()

	select {
	case event := <-client.EventChan:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestManager_BroadcastsToAllClients(t *testing.T) {
	m := newTestManager(t)

	first, err := m.Connect()
	require.NoError(t, err)
	second, err := m.Connect()
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClientCount())
	assert.NotEqual(t, first.ID, second.ID)

	m.Emit(NewShelfLoadedEvent("load-1", time.Now(), 6, 2))

	for _, c := range []*Client{first, second} {
		event := receive(t, c)
		assert.Equal(t, EventShelfLoaded, event.Type)
		data, ok := event.Data.(ShelfLoadedEventData)
		require.True(t, ok)
		assert.Equal(t, "load-1", data.LoadID)
		assert.Equal(t, 6, data.Books)
	}
}

func TestManager_AssignsIncreasingSeq(t *testing.T) {
	m := newTestManager(t)

	client, err := m.Connect()
	require.NoError(t, err)

	m.Emit(NewShelfCursorEvent("load-1", "A", 0, 2))
	m.Emit(NewShelfCursorEvent("load-1", "B", 1, 2))

	first := receive(t, client)
	second := receive(t, client)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
}

func TestManager_DisconnectAllKeepsRunning(t *testing.T) {
	m := newTestManager(t)

	old, err := m.Connect()
	require.NoError(t, err)
	m.DisconnectAll()
	assert.Equal(t, 0, m.ClientCount())
	_, open := <-old.Done
	assert.False(t, open)

	fresh, err := m.Connect()
	require.NoError(t, err)
	m.Emit(NewShelfClearedEvent("reset"))
	assert.Equal(t, EventShelfCleared, receive(t, fresh).Type)
}

func TestManager_Heartbeat(t *testing.T) {
	m := newTestManager(t, WithHeartbeatInterval(10*time.Millisecond))

	client, err := m.Connect()
	require.NoError(t, err)

	assert.Equal(t, EventHeartbeat, receive(t, client).Type)
}

func TestManager_DisconnectClosesChannels(t *testing.T) {
	m := newTestManager(t)

	client, err := m.Connect()
	require.NoError(t, err)

	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())

	_, open := <-client.EventChan
	assert.False(t, open)

	// A second disconnect is a no-op.
	m.Disconnect(client.ID)
}

func TestManager_EmitIgnoresForeignValues(t *testing.T) {
	m := newTestManager(t)

	client, err := m.Connect()
	require.NoError(t, err)

	m.Emit("not an event")
	m.Emit(NewShelfClearedEvent("HTTP 500"))

	event := receive(t, client)
	assert.Equal(t, EventShelfCleared, event.Type)
}

func TestManager_EmitAfterShutdown(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	client, err := m.Connect()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	require.NoError(t, m.Shutdown(ctx))

	assert.NotPanics(t, func() {
		m.Emit(NewShelfCursorEvent("load-1", "Кобзар", 1, 6))
	})

	_, open := <-client.Done
	assert.False(t, open)
}

func TestManager_ShutdownDeliversQueuedEvents(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	client, err := m.Connect()
	require.NoError(t, err)

	m.Emit(NewShelfLoadedEvent("load-1", time.Now(), 6, 2))
	m.Emit(NewShelfCursorEvent("load-1", "B", 1, 6))

	shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	require.NoError(t, m.Shutdown(shutdownCtx))

	var got []EventType
	for event := range client.EventChan {
		got = append(got, event.Type)
	}
	assert.Equal(t, []EventType{EventShelfLoaded, EventShelfCursor}, got)
	assert.Equal(t, 0, m.ClientCount())
}
