package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type streamEvent struct {
	id   string
	name string
	data string
}

// readEvent reads the next named event frame, skipping control frames
// such as the retry hint.
func readEvent(t *testing.T, r *bufio.Reader) streamEvent {
	t.Helper()

	var ev streamEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case line == "":
			if ev.name != "" {
				return ev
			}
			ev = streamEvent{}
		case strings.HasPrefix(line, "id: "):
			ev.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestHandler_StreamsEvents(t *testing.T) {
	m := newTestManager(t)
	srv := httptest.NewServer(NewHandler(m, slog.New(slog.DiscardHandler)))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	connected := readEvent(t, reader)
	assert.Equal(t, "connected", connected.name)
	assert.Empty(t, connected.id)
	assert.Contains(t, connected.data, "client_id")

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	m.Emit(NewShelfCursorEvent("load-1", "Intermezzo", 2, 6))

	ev := readEvent(t, reader)
	assert.Equal(t, string(EventShelfCursor), ev.name)
	assert.Equal(t, "1", ev.id)

	var payload struct {
		Type EventType            `json:"type"`
		Seq  uint64               `json:"seq"`
		Data ShelfCursorEventData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(ev.data), &payload))
	assert.Equal(t, EventShelfCursor, payload.Type)
	assert.Equal(t, uint64(1), payload.Seq)
	assert.Equal(t, "Intermezzo", payload.Data.Title)
	assert.Equal(t, 2, payload.Data.Index)
	assert.Equal(t, 6, payload.Data.Total)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	h := NewHandler(m, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/shelf/events", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
	assert.Equal(t, 0, m.ClientCount())
}

// unflushableWriter is a ResponseWriter without Flush support.
type unflushableWriter struct {
	header http.Header
	body   strings.Builder
	codes  []int
}

func (w *unflushableWriter) Header() http.Header { return w.header }

func (w *unflushableWriter) Write(p []byte) (int, error) {
	if len(w.codes) == 0 {
		w.codes = append(w.codes, http.StatusOK)
	}
	return w.body.Write(p)
}

func (w *unflushableWriter) WriteHeader(code int) { w.codes = append(w.codes, code) }

func TestHandler_NoFlushSupportEndsQuietly(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	h := NewHandler(m, slog.New(slog.DiscardHandler))

	w := &unflushableWriter{header: make(http.Header)}
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/shelf/events", nil))

	assert.Equal(t, []int{http.StatusOK}, w.codes)
	assert.Equal(t, "retry: 3000\n\n", w.body.String())
	assert.Equal(t, 0, m.ClientCount())
}
