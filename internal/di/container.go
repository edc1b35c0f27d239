// Package di provides dependency injection configuration for the labdesk server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/labdesk/labdesk-server/internal/config"
	"github.com/labdesk/labdesk-server/internal/di/providers"
	"github.com/labdesk/labdesk-server/internal/logger"
	"github.com/labdesk/labdesk-server/internal/menu"
	"github.com/labdesk/labdesk-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Book source, search and shelf events
	do.Provide(injector, providers.ProvideBookSource)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSSEManager)

	// Business services
	do.Provide(injector, providers.ProvideShelfService)
	do.Provide(injector, providers.ProvideExerciseService)
	do.Provide(injector, providers.ProvideMenuRegistry)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap resolves every provider in dependency order, which starts the
// SSE manager and the HTTP server. The first provider error is returned.
func Bootstrap(injector *do.RootScope) error {
	steps := []func(do.Injector) error{
		resolve[*config.Config],
		resolve[*logger.Logger],
		resolve[*providers.BookSourceHandle],
		resolve[*providers.SearchIndexHandle],
		resolve[*providers.SSEManagerHandle],
		resolve[*service.ShelfService],
		resolve[*service.ExerciseService],
		resolve[*menu.Registry],
		resolve[*providers.RateLimiterHandle],
		resolve[*providers.HTTPServerHandle],
	}
	for _, step := range steps {
		if err := step(injector); err != nil {
			return err
		}
	}
	return nil
}

func resolve[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
