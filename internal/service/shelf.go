package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/labdesk/labdesk-server/internal/books"
	domainerrors "github.com/labdesk/labdesk-server/internal/errors"
	"github.com/labdesk/labdesk-server/internal/id"
	"github.com/labdesk/labdesk-server/internal/metadata/jsonbin"
	"github.com/labdesk/labdesk-server/internal/search"
	"github.com/labdesk/labdesk-server/internal/sse"
	"github.com/labdesk/labdesk-server/internal/validation"
)

// EventEmitter receives shelf change events. Emit must not block.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// BookSource supplies the raw records for one load.
type BookSource interface {
	FetchRecords(ctx context.Context) ([]books.Record, error)
}

// Snapshot is the shelf state after a successful load.
type Snapshot struct {
	Loaded   bool
	LoadID   string
	LoadedAt time.Time
	Items    []books.Item
	Cursor   int
	Groups   []books.Group
}

// Cursor is the item under the shelf cursor.
type Cursor struct {
	Item  books.Item
	Index int
	Total int
}

type shelfState struct {
	loadID   string
	loadedAt time.Time
	items    []books.Item
	cursor   int
	groups   books.GroupMins
}

// ShelfService owns the Lab 3 shelf: the loaded books, the cursor and the
// per-genre minimums. Loads fetch outside any lock and are never cancelled
// by a newer load; whichever finishes last is what readers see.
type ShelfService struct {
	source    BookSource
	index     *search.SearchIndex
	events    EventEmitter
	logger    *slog.Logger
	validator *validation.Validator
	now       func() time.Time

	// commitMu pairs the index rebuild with the state swap.
	commitMu sync.Mutex

	mu    sync.RWMutex
	state *shelfState
}

// NewShelfService creates a new shelf service.
func NewShelfService(source BookSource, index *search.SearchIndex, logger *slog.Logger) *ShelfService {
	return &ShelfService{
		source:    source,
		index:     index,
		events:    NoopEmitter{},
		logger:    logger,
		validator: validation.New(),
		now:       time.Now,
	}
}

// SetEventEmitter sets where shelf change events go.
func (s *ShelfService) SetEventEmitter(events EventEmitter) {
	if events == nil {
		events = NoopEmitter{}
	}
	s.events = events
}

// Load fetches, classifies and aggregates the books and makes them current.
// On failure the shelf is emptied and an error carrying the user-facing
// message "failed to load books: <reason>" is returned.
func (s *ShelfService) Load(ctx context.Context) (Snapshot, error) {
	start := s.now()

	records, err := s.source.FetchRecords(ctx)
	if err == nil && len(records) == 0 {
		err = jsonbin.ErrEmpty
	}
	if err != nil {
		s.Reset()
		reason := fetchFailureReason(err)
		s.logger.Warn("Shelf load failed", "reason", reason, "error", err)
		s.events.Emit(sse.NewShelfClearedEvent(reason))
		return Snapshot{}, domainerrors.Wrap(err, domainerrors.CodeUpstream, "failed to load books: "+reason)
	}

	loadID, err := id.NewLoadID()
	if err != nil {
		s.Reset()
		s.events.Emit(sse.NewShelfClearedEvent("could not allocate load id"))
		return Snapshot{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load books: could not allocate load id")
	}

	items := books.ClassifyAll(records)
	next := &shelfState{
		loadID:   loadID,
		loadedAt: s.now(),
		items:    items,
		groups:   books.MinPagesByGroup(items),
	}

	snap, err := s.commit(next)
	if err != nil {
		s.logger.Error("Shelf index rebuild failed", "load_id", loadID, "error", err)
		s.events.Emit(sse.NewShelfClearedEvent("search index unavailable"))
		return Snapshot{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load books: search index unavailable")
	}

	s.logger.Info("Shelf loaded",
		"load_id", loadID,
		"books", len(items),
		"groups", next.groups.Len(),
		"elapsed", time.Since(start),
	)

	return snap, nil
}

// commit indexes next and makes it the current state. A failed rebuild
// leaves the shelf empty. Loaded events go out in commit order.
func (s *ShelfService) commit(next *shelfState) (Snapshot, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if err := s.index.Rebuild(next.items); err != nil {
		s.clearLocked()
		return Snapshot{}, err
	}

	s.mu.Lock()
	s.state = next
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.events.Emit(sse.NewShelfLoadedEvent(next.loadID, next.loadedAt, len(next.items), next.groups.Len()))
	return snap, nil
}

// Current returns the item under the cursor.
func (s *ShelfService) Current() (Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil || len(s.state.items) == 0 {
		return Cursor{}, domainerrors.NotFound("no books loaded")
	}
	return s.cursorLocked(), nil
}

// Next advances the cursor cyclically and returns the new current item.
// With no books loaded nothing changes and a not found error is returned.
func (s *ShelfService) Next() (Cursor, error) {
	s.mu.Lock()
	if s.state == nil || len(s.state.items) == 0 {
		s.mu.Unlock()
		return Cursor{}, domainerrors.NotFound("no books loaded")
	}
	s.state.cursor = (s.state.cursor + 1) % len(s.state.items)
	cur := s.cursorLocked()
	loadID := s.state.loadID
	s.mu.Unlock()

	s.events.Emit(sse.NewShelfCursorEvent(loadID, cur.Item.Title, cur.Index, cur.Total))
	return cur, nil
}

// MinByGenre returns the fiction groups with their shortest books.
// Without a load the list is empty.
func (s *ShelfService) MinByGenre() []books.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return []books.Group{}
	}
	return s.state.groups.Groups()
}

// Search finds loaded books by title, author or label.
func (s *ShelfService) Search(ctx context.Context, q string, limit int) ([]books.Item, error) {
	if err := s.validator.Var("limit", limit, fmt.Sprintf("gte=0,lte=%d", search.MaxLimit)); err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, q, limit)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]books.Item, 0, len(hits))
	if s.state == nil {
		return items, nil
	}
	for _, h := range hits {
		// A load may have landed between the search and the lock.
		if h.Position < 0 || h.Position >= len(s.state.items) {
			continue
		}
		items = append(items, s.state.items[h.Position])
	}
	return items, nil
}

// Snapshot returns a copy of the current state.
func (s *ShelfService) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Reset empties the shelf and the index.
func (s *ShelfService) Reset() {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	s.clearLocked()
}

// clearLocked requires commitMu.
func (s *ShelfService) clearLocked() {
	s.index.Clear()
	s.mu.Lock()
	s.state = nil
	s.mu.Unlock()
}

func (s *ShelfService) cursorLocked() Cursor {
	return Cursor{
		Item:  s.state.items[s.state.cursor],
		Index: s.state.cursor,
		Total: len(s.state.items),
	}
}

func (s *ShelfService) snapshotLocked() Snapshot {
	if s.state == nil {
		return Snapshot{Items: []books.Item{}, Groups: []books.Group{}}
	}
	items := make([]books.Item, len(s.state.items))
	copy(items, s.state.items)
	return Snapshot{
		Loaded:   true,
		LoadID:   s.state.loadID,
		LoadedAt: s.state.loadedAt,
		Items:    items,
		Cursor:   s.state.cursor,
		Groups:   s.state.groups.Groups(),
	}
}

// fetchFailureReason turns a fetch error into the short text users see.
func fetchFailureReason(err error) string {
	var binErr *jsonbin.Error
	switch {
	case errors.As(err, &binErr):
		return binErr.Reason()
	case errors.Is(err, jsonbin.ErrEmpty):
		return jsonbin.ErrEmpty.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	default:
		return err.Error()
	}
}
