package providers

import (
	"github.com/samber/do/v2"

	"github.com/labdesk/labdesk-server/internal/config"
	"github.com/labdesk/labdesk-server/internal/logger"
	"github.com/labdesk/labdesk-server/internal/metadata/jsonbin"
)

// BookSourceHandle wraps the JSONBin client with shutdown capability.
type BookSourceHandle struct {
	*jsonbin.Client
}

// Shutdown implements do.Shutdownable.
func (h *BookSourceHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideBookSource provides the client for the configured book document.
func ProvideBookSource(i do.Injector) (*BookSourceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := jsonbin.New(log.Logger, jsonbin.Options{
		URL:               cfg.Books.SourceURL,
		AccessKey:         cfg.Books.AccessKey,
		MasterKey:         cfg.Books.MasterKey,
		Timeout:           cfg.Books.FetchTimeout,
		RequestsPerSecond: cfg.Books.RequestsPerSecond,
		Burst:             cfg.Books.Burst,
	})

	log.Info("Book source client initialized",
		"url", client.URL(),
		"timeout", cfg.Books.FetchTimeout,
		"authenticated", cfg.Books.AccessKey != "" || cfg.Books.MasterKey != "",
	)

	return &BookSourceHandle{Client: client}, nil
}
