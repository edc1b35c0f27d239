package api

import (
	"github.com/labdesk/labdesk-server/internal/menu"
	"github.com/labdesk/labdesk-server/internal/search"
	"github.com/labdesk/labdesk-server/internal/service"
	"github.com/labdesk/labdesk-server/internal/sse"
)

// Services groups the business logic used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Shelf    *service.ShelfService
	Exercise *service.ExerciseService
	Menu     *menu.Registry
	Index    *search.SearchIndex // read by the health check only
	Events   *sse.Handler        // optional shelf event stream
}
