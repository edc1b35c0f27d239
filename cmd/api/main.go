// Command api serves the labdesk HTTP API until SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/labdesk/labdesk-server/internal/di"
	"github.com/labdesk/labdesk-server/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(serve(ctx))
}

// serve runs the container until ctx ends and returns the process exit code.
func serve(ctx context.Context) int {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "labdesk: bootstrap failed: %v\n", err)
		// Partially built handles still own goroutines and sockets.
		_ = injector.Shutdown()
		return 1
	}

	log := do.MustInvoke[*logger.Logger](injector)

	<-ctx.Done()
	log.Info("Signal received, stopping")

	// Shutdown runs in reverse dependency order: HTTP server first, then the
	// limiter, the event stream, the shelf index and the book source.
	if report := injector.Shutdown(); report != nil {
		log.Error("Shutdown finished with errors", "error", report.Error())
		return 1
	}

	log.Info("Server stopped")
	return 0
}
