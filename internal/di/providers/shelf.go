package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/labdesk/labdesk-server/internal/config"
	"github.com/labdesk/labdesk-server/internal/logger"
	"github.com/labdesk/labdesk-server/internal/search"
	"github.com/labdesk/labdesk-server/internal/service"
	"github.com/labdesk/labdesk-server/internal/sse"
)

// SearchIndexHandle owns the in-memory title index rebuilt on every load.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve index over the loaded shelf.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index := search.NewSearchIndex(search.Options{Logger: log.Logger})
	log.Debug("Search index ready, waiting for first load")

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// SSEManagerHandle owns the shelf event broadcaster and its run loop.
type SSEManagerHandle struct {
	*sse.Manager
	stop context.CancelFunc
}

// Shutdown implements do.Shutdownable. Queued events are flushed to
// clients before their streams close.
func (h *SSEManagerHandle) Shutdown() error {
	// Cancelling first would make Start drop the clients before the drain.
	defer h.stop()
	ctx, cancel := shutdownContext()
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the shelf event broadcaster, already running.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.With("component", "shelf-events"))
	ctx, stop := context.WithCancel(context.Background())
	go manager.Start(ctx)

	return &SSEManagerHandle{Manager: manager, stop: stop}, nil
}

// ProvideShelfService provides the Lab 3 shelf service. With the event
// stream enabled, every commit and cursor move is published on it.
func ProvideShelfService(i do.Injector) (*service.ShelfService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	sourceHandle := do.MustInvoke[*BookSourceHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	shelf := service.NewShelfService(sourceHandle.Client, indexHandle.SearchIndex, log.Logger)
	if cfg.Server.EventStream {
		eventsHandle := do.MustInvoke[*SSEManagerHandle](i)
		shelf.SetEventEmitter(eventsHandle.Manager)
	}
	return shelf, nil
}
