package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	// writeWindow is how far each successful write pushes the connection's
	// write deadline, overriding the server-wide WriteTimeout.
	writeWindow = 60 * time.Second

	// retryMillis is the reconnect delay suggested to browsers.
	retryMillis = 3000
)

// Handler serves the shelf event stream.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, logger: logger}
}

// stream writes text/event-stream frames to one response.
type stream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (s *stream) extend() error {
	return s.rc.SetWriteDeadline(time.Now().Add(writeWindow))
}

// send writes one frame and flushes it. seq 0 omits the id field.
func (s *stream) send(name string, seq uint64, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}

	frame := make([]byte, 0, len(body)+64)
	if seq > 0 {
		frame = append(frame, "id: "...)
		frame = strconv.AppendUint(frame, seq, 10)
		frame = append(frame, '\n')
	}
	frame = append(frame, "event: "...)
	frame = append(frame, name...)
	frame = append(frame, "\ndata: "...)
	frame = append(frame, body...)
	frame = append(frame, "\n\n"...)

	if _, err := s.w.Write(frame); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil {
		return err
	}
	// Writers without deadline support still stream, just under the server timeout.
	_ = s.extend()
	return nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	if ctx.Err() != nil {
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	out := &stream{w: w, rc: http.NewResponseController(w)}
	if err := out.extend(); err != nil {
		h.logger.Debug("Write deadline not supported", "error", err)
	}
	if _, err := fmt.Fprintf(w, "retry: %d\n\n", retryMillis); err != nil {
		return
	}
	if err := out.rc.Flush(); err != nil {
		// The status line is already out; there is nothing left to report to.
		h.logger.Error("Response does not support streaming", "error", err)
		return
	}

	client, err := h.manager.Connect()
	if err != nil {
		h.logger.Error("Could not register stream client", "error", err)
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With("client_id", client.ID)
	hello := map[string]string{
		"client_id":     client.ID,
		"message":       "SSE connection established",
		"last_event_id": r.Header.Get("Last-Event-ID"),
	}
	if err := out.send("connected", 0, hello); err != nil {
		log.Warn("Could not send connected frame", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug("Stream closed by client")
			return
		case <-client.Done:
			log.Debug("Stream closed by server")
			return
		case event, ok := <-client.EventChan:
			if !ok {
				log.Debug("Stream closed by server")
				return
			}
			if err := out.send(string(event.Type), event.Seq, event); err != nil {
				log.Debug("Stream write failed, client gone", "error", err)
				return
			}
		}
	}
}
