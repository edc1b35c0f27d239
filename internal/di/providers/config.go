// Package providers contains dependency injection providers for the labdesk server.
package providers

import (
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"github.com/labdesk/labdesk-server/internal/config"
	"github.com/labdesk/labdesk-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		Environment: cfg.App.Environment,
		AddSource:   cfg.App.Environment == "development",
		NoColor:     os.Getenv("NO_COLOR") != "",
	})

	log.Info("labdesk server configured",
		slog.String("version", Version),
		slog.String("environment", cfg.App.Environment),
		slog.Group("logging",
			slog.String("level", cfg.Logger.Level),
			slog.String("format", cfg.Logger.Format)),
		slog.String("port", cfg.Server.Port),
		slog.String("books_url", cfg.Books.SourceURL),
	)

	return log, nil
}
