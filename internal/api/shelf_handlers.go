package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/labdesk/labdesk-server/internal/books"
	"github.com/labdesk/labdesk-server/internal/search"
	"github.com/labdesk/labdesk-server/internal/service"
)

func (s *Server) registerShelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "loadShelf",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelf/load",
		Summary:     "Load shelf",
		Description: "Fetches the book document, classifies every record and replaces the shelf. A failed load empties the shelf",
		Tags:        []string{"Shelf"},
	}, s.handleLoadShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "getShelf",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelf",
		Summary:     "Get shelf",
		Description: "Returns the loaded books, the cursor and the per-genre minimums",
		Tags:        []string{"Shelf"},
	}, s.handleGetShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelf/current",
		Summary:     "Get current book",
		Description: "Returns the book under the cursor",
		Tags:        []string{"Shelf"},
	}, s.handleGetCurrent)

	huma.Register(s.api, huma.Operation{
		OperationID: "nextBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/shelf/next",
		Summary:     "Next book",
		Description: "Moves the cursor to the next book, wrapping to the first after the last",
		Tags:        []string{"Shelf"},
	}, s.handleNext)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenreMinimums",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelf/groups",
		Summary:     "Shortest books per genre",
		Description: "Returns, for every fiction genre, the books tied at its lowest page count",
		Tags:        []string{"Shelf"},
	}, s.handleListGroups)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchShelf",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelf/search",
		Summary:     "Search shelf",
		Description: "Searches the loaded books by title, author and genre or field",
		Tags:        []string{"Shelf"},
	}, s.handleSearchShelf)
}

// === DTOs ===

// BookResponse is a classified book.
type BookResponse struct {
	Position int    `json:"position" doc:"Zero-based index in the source document"`
	Kind     string `json:"kind" doc:"fiction or non_fiction"`
	Title    string `json:"title" doc:"Book title"`
	Author   string `json:"author" doc:"Book author"`
	Pages    int    `json:"pages" doc:"Page count, 100 when missing or invalid"`
	Label    string `json:"label" doc:"Genre for fiction, field for non-fiction"`
	Info     string `json:"info" doc:"Single-line description for display"`
}

// GroupResponse holds the shortest fiction books of one genre.
type GroupResponse struct {
	Genre string         `json:"genre" doc:"Genre label"`
	Pages int            `json:"pages" doc:"Lowest page count in the genre"`
	Books []BookResponse `json:"books" doc:"Books tied at the lowest page count, in source order"`
}

// ShelfResponse is the whole shelf state.
type ShelfResponse struct {
	Loaded   bool            `json:"loaded" doc:"Whether a load has succeeded since the last failure"`
	LoadID   string          `json:"load_id,omitempty" doc:"Identifier of the load that produced this state"`
	LoadedAt *time.Time      `json:"loaded_at,omitempty" doc:"When the load finished"`
	Total    int             `json:"total" doc:"Number of books"`
	Cursor   int             `json:"cursor" doc:"Index of the current book"`
	Books    []BookResponse  `json:"books" doc:"Books in source order"`
	Groups   []GroupResponse `json:"groups" doc:"Shortest fiction books per genre"`
}

// ShelfOutput wraps the shelf for Huma.
type ShelfOutput struct {
	Body ShelfResponse
}

// CursorResponse is the book under the cursor.
type CursorResponse struct {
	Index int          `json:"index" doc:"Cursor position"`
	Total int          `json:"total" doc:"Number of books"`
	Book  BookResponse `json:"book" doc:"Current book"`
}

// CursorOutput wraps the cursor for Huma.
type CursorOutput struct {
	Body CursorResponse
}

// GroupsResponse lists the per-genre minimums.
type GroupsResponse struct {
	Groups []GroupResponse `json:"groups" doc:"Shortest fiction books per genre, in first-seen order"`
}

// GroupsOutput wraps the groups for Huma.
type GroupsOutput struct {
	Body GroupsResponse
}

// SearchShelfInput contains search parameters.
type SearchShelfInput struct {
	Query string `query:"q" maxLength:"200" doc:"Search query"`
	Limit int    `query:"limit" doc:"Max results (default 20, max 100)"`
}

// SearchShelfResponse contains search results.
type SearchShelfResponse struct {
	Query string         `json:"query" doc:"Original search query"`
	Total int            `json:"total" doc:"Number of results"`
	Books []BookResponse `json:"books" doc:"Matching books, best match first"`
}

// SearchShelfOutput wraps the search results for Huma.
type SearchShelfOutput struct {
	Body SearchShelfResponse
}

// === Handlers ===

func (s *Server) handleLoadShelf(ctx context.Context, _ *struct{}) (*ShelfOutput, error) {
	snap, err := s.services.Shelf.Load(ctx)
	if err != nil {
		return nil, s.toStatusError(err, "load shelf")
	}
	return &ShelfOutput{Body: toShelfResponse(snap)}, nil
}

func (s *Server) handleGetShelf(_ context.Context, _ *struct{}) (*ShelfOutput, error) {
	return &ShelfOutput{Body: toShelfResponse(s.services.Shelf.Snapshot())}, nil
}

func (s *Server) handleGetCurrent(_ context.Context, _ *struct{}) (*CursorOutput, error) {
	cur, err := s.services.Shelf.Current()
	if err != nil {
		return nil, s.toStatusError(err, "current book")
	}
	return &CursorOutput{Body: toCursorResponse(cur)}, nil
}

func (s *Server) handleNext(_ context.Context, _ *struct{}) (*CursorOutput, error) {
	cur, err := s.services.Shelf.Next()
	if err != nil {
		return nil, s.toStatusError(err, "next book")
	}
	return &CursorOutput{Body: toCursorResponse(cur)}, nil
}

func (s *Server) handleListGroups(_ context.Context, _ *struct{}) (*GroupsOutput, error) {
	return &GroupsOutput{
		Body: GroupsResponse{Groups: toGroupResponses(s.services.Shelf.MinByGenre())},
	}, nil
}

func (s *Server) handleSearchShelf(ctx context.Context, input *SearchShelfInput) (*SearchShelfOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = search.DefaultLimit
	}

	items, err := s.services.Shelf.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, s.toStatusError(err, "search shelf")
	}

	return &SearchShelfOutput{
		Body: SearchShelfResponse{
			Query: input.Query,
			Total: len(items),
			Books: toBookResponses(items),
		},
	}, nil
}

// === Converters ===

func toBookResponse(it books.Item) BookResponse {
	return BookResponse{
		Position: it.Position,
		Kind:     it.Kind.String(),
		Title:    it.Title,
		Author:   it.Author,
		Pages:    it.Pages,
		Label:    it.Label,
		Info:     it.DisplayInfo(),
	}
}

func toBookResponses(items []books.Item) []BookResponse {
	out := make([]BookResponse, len(items))
	for i, it := range items {
		out[i] = toBookResponse(it)
	}
	return out
}

func toGroupResponses(groups []books.Group) []GroupResponse {
	out := make([]GroupResponse, len(groups))
	for i, g := range groups {
		out[i] = GroupResponse{
			Genre: g.Label,
			Pages: g.Pages,
			Books: toBookResponses(g.Items),
		}
	}
	return out
}

func toCursorResponse(cur service.Cursor) CursorResponse {
	return CursorResponse{
		Index: cur.Index,
		Total: cur.Total,
		Book:  toBookResponse(cur.Item),
	}
}

func toShelfResponse(snap service.Snapshot) ShelfResponse {
	resp := ShelfResponse{
		Loaded: snap.Loaded,
		LoadID: snap.LoadID,
		Total:  len(snap.Items),
		Cursor: snap.Cursor,
		Books:  toBookResponses(snap.Items),
		Groups: toGroupResponses(snap.Groups),
	}
	if snap.Loaded {
		loadedAt := snap.LoadedAt
		resp.LoadedAt = &loadedAt
	}
	return resp
}
