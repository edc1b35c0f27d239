package providers

import (
	"context"
	"time"
)

// Version is reported in the OpenAPI document and the startup log. Set at
// build time with -ldflags "-X github.com/labdesk/labdesk-server/internal/di/providers.Version=...".
var Version = "dev"

// shutdownTimeout bounds every handle's graceful stop.
const shutdownTimeout = 30 * time.Second

// shutdownContext returns a fresh context for a handle's Shutdown. The
// injector calls Shutdown after the root context is already gone.
func shutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), shutdownTimeout)
}
