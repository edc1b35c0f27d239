package sse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labdesk/labdesk-server/internal/id"
)

const (
	defaultHeartbeatInterval = 30 * time.Second

	queueSize       = 256
	clientQueueSize = 32
)

// Client is one open stream. EventChan and Done are closed together when
// the client is dropped.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
}

func (c *Client) close() {
	close(c.Done)
	close(c.EventChan)
}

// Manager fans shelf events out to every connected client. Slow clients
// lose events rather than stall the others.
type Manager struct {
	logger    *slog.Logger
	heartbeat time.Duration
	seq       atomic.Uint64

	// started is claimed by whichever of Start or Shutdown drains queue;
	// stopped closes when that drain ends.
	started atomic.Bool
	stopped chan struct{}

	// queueMu guards closing queue against concurrent Emit sends.
	queueMu sync.RWMutex
	queue   chan Event
	closed  bool

	clientsMu sync.RWMutex
	clients   map[string]*Client
}

// Option configures a Manager.
type Option func(*Manager)

// WithHeartbeatInterval overrides how often idle clients get a heartbeat.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(m *Manager) { m.heartbeat = d }
}

func NewManager(logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		logger:    logger,
		heartbeat: defaultHeartbeatInterval,
		queue:     make(chan Event, queueSize),
		stopped:   make(chan struct{}),
		clients:   make(map[string]*Client),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start runs the broadcast loop until ctx ends or Shutdown closes the queue
// and it has been drained. Call it in its own goroutine; later calls return
// at once.
func (m *Manager) Start(ctx context.Context) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	defer close(m.stopped)

	ticker := time.NewTicker(m.heartbeat)
	defer ticker.Stop()

	m.logger.Info("Shelf event stream running", "heartbeat", m.heartbeat)
	for {
		select {
		case <-ctx.Done():
			m.dropAll()
			return
		case <-ticker.C:
			m.broadcast(NewHeartbeatEvent())
		case event, ok := <-m.queue:
			if !ok {
				return
			}
			m.broadcast(event)
		}
	}
}

// Shutdown stops accepting events, lets the broadcast loop deliver what is
// queued until ctx ends, then drops every client. Calling it again is a
// no-op.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.queueMu.Lock()
	if m.closed {
		m.queueMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.queueMu.Unlock()

	// Never started: nobody else will read the queue.
	if m.started.CompareAndSwap(false, true) {
		for event := range m.queue {
			m.broadcast(event)
		}
		close(m.stopped)
	}

	select {
	case <-m.stopped:
	case <-ctx.Done():
		m.logger.Warn("Shelf event stream stopped before the queue drained")
	}

	m.dropAll()
	m.logger.Info("Shelf event stream stopped")
	return nil
}

// Emit queues event for broadcast. Values that are not an Event, events
// emitted after Shutdown and events that find the queue full are dropped.
func (m *Manager) Emit(event any) {
	evt, ok := event.(Event)
	if !ok {
		m.logger.Error("Ignoring non-event value on the shelf stream", "value_type", fmt.Sprintf("%T", event))
		return
	}

	m.queueMu.RLock()
	defer m.queueMu.RUnlock()
	if m.closed {
		return
	}

	select {
	case m.queue <- evt:
	default:
		m.logger.Error("Shelf event queue full, dropping event", "event_type", evt.Type)
	}
}

func (m *Manager) broadcast(event Event) {
	event.Seq = m.seq.Add(1)

	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()

	dropped := 0
	for _, c := range m.clients {
		select {
		case c.EventChan <- event:
		default:
			dropped++
			m.logger.Warn("Client too slow, event dropped", "client_id", c.ID, "event_type", event.Type)
		}
	}

	if event.Type != EventHeartbeat {
		m.logger.Debug("Shelf event sent",
			"event_type", event.Type,
			"seq", event.Seq,
			slog.Group("clients",
				slog.Int("delivered", len(m.clients)-dropped),
				slog.Int("dropped", dropped)))
	}
}

// Connect registers a new client.
func (m *Manager) Connect() (*Client, error) {
	clientID, err := id.NewStreamID()
	if err != nil {
		return nil, err
	}

	c := &Client{
		ID:          clientID,
		ConnectedAt: time.Now(),
		EventChan:   make(chan Event, clientQueueSize),
		Done:        make(chan struct{}),
	}

	m.clientsMu.Lock()
	m.clients[clientID] = c
	total := len(m.clients)
	m.clientsMu.Unlock()

	m.logger.Info("Shelf stream client connected", "client_id", clientID, "clients", total)
	return c, nil
}

// Disconnect drops one client. Unknown IDs are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.clientsMu.Lock()
	c, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
	}
	total := len(m.clients)
	m.clientsMu.Unlock()

	if !ok {
		return
	}
	c.close()
	m.logger.Info("Shelf stream client disconnected",
		"client_id", clientID,
		"connected_for", time.Since(c.ConnectedAt).Round(time.Millisecond),
		"clients", total)
}

func (m *Manager) ClientCount() int {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()
	return len(m.clients)
}

// DisconnectAll ends every open stream but keeps the manager running. The
// HTTP server calls it on shutdown so streams do not hold it open.
func (m *Manager) DisconnectAll() {
	m.dropAll()
}

func (m *Manager) dropAll() {
	m.clientsMu.Lock()
	clients := m.clients
	m.clients = make(map[string]*Client)
	m.clientsMu.Unlock()

	for _, c := range clients {
		c.close()
	}
	if len(clients) > 0 {
		m.logger.Info("Dropped all shelf stream clients", "clients", len(clients))
	}
}
