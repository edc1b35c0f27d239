package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/labdesk/labdesk-server/internal/menu"
)

func (s *Server) registerMenuRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMenu",
		Method:      http.MethodGet,
		Path:        "/api/v1/menu",
		Summary:     "Get menu",
		Description: "Returns the side menu section and every known page",
		Tags:        []string{"Menu"},
	}, s.handleGetMenu)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPages",
		Method:      http.MethodGet,
		Path:        "/api/v1/pages",
		Summary:     "List pages",
		Description: "Returns every known page in menu order",
		Tags:        []string{"Menu"},
	}, s.handleListPages)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPage",
		Method:      http.MethodGet,
		Path:        "/api/v1/pages/{name}",
		Summary:     "Get page",
		Description: "Resolves a page name case-insensitively. Unknown names resolve to a placeholder page",
		Tags:        []string{"Menu"},
	}, s.handleGetPage)
}

// === DTOs ===

// MenuResponse is the navigation shell.
type MenuResponse struct {
	Section menu.Section `json:"section" doc:"Side menu section"`
	Pages   []menu.Page  `json:"pages" doc:"Every known page in menu order"`
}

// MenuOutput wraps the menu response for Huma.
type MenuOutput struct {
	Body MenuResponse
}

// ListPagesOutput wraps the page list for Huma.
type ListPagesOutput struct {
	Body []menu.Page
}

// GetPageInput contains the page name to resolve.
type GetPageInput struct {
	Name string `path:"name" maxLength:"64" doc:"Page name, case-insensitive"`
}

// PageOutput wraps a resolved page for Huma.
type PageOutput struct {
	Body menu.Page
}

// === Handlers ===

func (s *Server) handleGetMenu(_ context.Context, _ *struct{}) (*MenuOutput, error) {
	return &MenuOutput{
		Body: MenuResponse{
			Section: s.services.Menu.Side(),
			Pages:   s.services.Menu.Pages(),
		},
	}, nil
}

func (s *Server) handleListPages(_ context.Context, _ *struct{}) (*ListPagesOutput, error) {
	return &ListPagesOutput{Body: s.services.Menu.Pages()}, nil
}

func (s *Server) handleGetPage(_ context.Context, input *GetPageInput) (*PageOutput, error) {
	return &PageOutput{Body: s.services.Menu.Lookup(input.Name)}, nil
}
