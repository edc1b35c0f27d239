// Package sse implements Server-Sent Events for live shelf updates.
package sse

import (
	"time"
)

// The SPA keeps request/response for everything it asks for. The stream
// only tells other open tabs that the shelf changed under them.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventShelfLoaded represents a successful shelf load.
	EventShelfLoaded EventType = "shelf.loaded"
	// EventShelfCleared represents a failed load emptying the shelf.
	EventShelfCleared EventType = "shelf.cleared"
	// EventShelfCursor represents the cursor moving to another book.
	EventShelfCursor EventType = "shelf.cursor"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one frame on the stream. Seq is assigned by the Manager when the
// event is broadcast and is sent as the SSE id field.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
	Seq       uint64    `json:"seq"`
}

// ShelfLoadedEventData is the data payload for shelf.loaded events.
type ShelfLoadedEventData struct {
	LoadedAt time.Time `json:"loaded_at"`
	LoadID   string    `json:"load_id"`
	Books    int       `json:"books"`
	Groups   int       `json:"groups"`
}

// ShelfClearedEventData is the data payload for shelf.cleared events.
type ShelfClearedEventData struct {
	ClearedAt time.Time `json:"cleared_at"`
	Reason    string    `json:"reason"`
}

// ShelfCursorEventData is the data payload for shelf.cursor events.
type ShelfCursorEventData struct {
	LoadID string `json:"load_id"`
	Title  string `json:"title"`
	Index  int    `json:"index"`
	Total  int    `json:"total"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewShelfLoadedEvent creates a shelf.loaded event.
func NewShelfLoadedEvent(loadID string, loadedAt time.Time, books, groups int) Event {
	return Event{
		Type: EventShelfLoaded,
		Data: ShelfLoadedEventData{
			LoadID:   loadID,
			LoadedAt: loadedAt,
			Books:    books,
			Groups:   groups,
		},
		Timestamp: time.Now(),
	}
}

// NewShelfClearedEvent creates a shelf.cleared event.
func NewShelfClearedEvent(reason string) Event {
	return Event{
		Type: EventShelfCleared,
		Data: ShelfClearedEventData{
			Reason:    reason,
			ClearedAt: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewShelfCursorEvent creates a shelf.cursor event.
func NewShelfCursorEvent(loadID, title string, index, total int) Event {
	return Event{
		Type: EventShelfCursor,
		Data: ShelfCursorEventData{
			LoadID: loadID,
			Title:  title,
			Index:  index,
			Total:  total,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
