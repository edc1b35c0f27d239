package providers

import (
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/labdesk/labdesk-server/internal/api"
	"github.com/labdesk/labdesk-server/internal/config"
	"github.com/labdesk/labdesk-server/internal/logger"
	"github.com/labdesk/labdesk-server/internal/menu"
	"github.com/labdesk/labdesk-server/internal/ratelimit"
	"github.com/labdesk/labdesk-server/internal/service"
	"github.com/labdesk/labdesk-server/internal/sse"
)

// RateLimiterHandle wraps the inbound per-IP limiter with Shutdownable.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-IP limiter for the API.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(
		ratelimit.PerMinute(cfg.Server.RateLimitPerMinute),
		cfg.Server.RateLimitBurst,
	)

	return &RateLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := shutdownContext()
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	eventsHandle := do.MustInvoke[*SSEManagerHandle](i)

	services := &api.Services{
		Shelf:    do.MustInvoke[*service.ShelfService](i),
		Exercise: do.MustInvoke[*service.ExerciseService](i),
		Menu:     do.MustInvoke[*menu.Registry](i),
		Index:    indexHandle.SearchIndex,
	}
	if cfg.Server.EventStream {
		services.Events = sse.NewHandler(eventsHandle.Manager, log.Logger)
	}

	handler := api.NewServer(services, api.Options{
		Version:        Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimiter:    limiterHandle.KeyedRateLimiter,
		SourceURL:      cfg.Books.SourceURL,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	// Open event streams would otherwise hold Shutdown until its timeout.
	srv.RegisterOnShutdown(eventsHandle.DisconnectAll)

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "version", Version)

	return &HTTPServerHandle{Server: srv}, nil
}
