package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/labdesk/labdesk-server/internal/books"
	domainerrors "github.com/labdesk/labdesk-server/internal/errors"
	"github.com/labdesk/labdesk-server/internal/metadata/jsonbin"
	"github.com/labdesk/labdesk-server/internal/search"
	"github.com/labdesk/labdesk-server/internal/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource returns queued responses in order; the last one repeats.
type fakeSource struct {
	mu        sync.Mutex
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	records []books.Record
	err     error
}

func (f *fakeSource) FetchRecords(context.Context) ([]books.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.calls, len(f.responses)-1)
	f.calls++
	r := f.responses[i]
	return r.records, r.err
}

func records(t *testing.T, doc string) []books.Record {
	t.Helper()
	var out []books.Record
	require.NoError(t, json.Unmarshal([]byte(doc), &out))
	return out
}

const shelfDoc = `[
	{"title": "A", "author": "X", "pages": 50, "genre": "G1"},
	{"title": "B", "author": "Y", "pages": 50, "genre": "G1"},
	{"title": "C", "author": "Z", "pages": 10, "genre": "G1"},
	{"title": "Physics", "author": "F", "pages": 300, "type": "science", "field": "Фізика"},
	{"title": "D", "author": "W", "pages": "abc", "genre": "G2"}
]`

func newShelf(t *testing.T, responses ...fakeResponse) (*ShelfService, *fakeSource) {
	t.Helper()
	src := &fakeSource{responses: responses}
	index := search.NewSearchIndex(search.Options{})
	t.Cleanup(func() { _ = index.Close() })
	return NewShelfService(src, index, slog.New(slog.DiscardHandler)), src
}

func TestShelfService_Load(t *testing.T) {
	svc, _ := newShelf(t, fakeResponse{records: records(t, shelfDoc)})

	snap, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Loaded)
	assert.True(t, strings.HasPrefix(snap.LoadID, "load-"))
	assert.False(t, snap.LoadedAt.IsZero())
	assert.Len(t, snap.Items, 5)
	assert.Equal(t, 0, snap.Cursor)

	require.Len(t, snap.Groups, 2)
	assert.Equal(t, "G1", snap.Groups[0].Label)
	require.Len(t, snap.Groups[0].Items, 1)
	assert.Equal(t, "C", snap.Groups[0].Items[0].Title)
	assert.Equal(t, "G2", snap.Groups[1].Label)
	assert.Equal(t, books.DefaultPages, snap.Groups[1].Pages)

	assert.Equal(t, snap.Groups, svc.MinByGenre())
}

func TestShelfService_LoadFailureClearsState(t *testing.T) {
	upstream := &jsonbin.Error{Op: "fetch", URL: "https://example.test", Status: 500, Err: jsonbin.ErrServer}
	svc, _ := newShelf(t,
		fakeResponse{records: records(t, shelfDoc)},
		fakeResponse{err: upstream},
	)

	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	_, err = svc.Next()
	require.NoError(t, err)

	_, err = svc.Load(context.Background())
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeUpstream, domainErr.Code)
	assert.Equal(t, "failed to load books: HTTP 500", domainErr.Message)
	assert.ErrorIs(t, err, jsonbin.ErrServer)

	snap := svc.Snapshot()
	assert.False(t, snap.Loaded)
	assert.Empty(t, snap.Items)
	assert.Empty(t, svc.MinByGenre())

	_, err = svc.Current()
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	found, err := svc.Search(context.Background(), "A", 10)
	require.NoError(t, err)
	assert.Empty(t, found, "index is cleared with the state")
}

func TestShelfService_LoadFailureReasons(t *testing.T) {
	tests := []struct {
		name    string
		resp    fakeResponse
		wantMsg string
	}{
		{
			name:    "empty document",
			resp:    fakeResponse{records: []books.Record{}},
			wantMsg: "failed to load books: empty or invalid JSON document",
		},
		{
			name:    "wrapped empty",
			resp:    fakeResponse{err: &jsonbin.Error{Op: "fetch", Err: jsonbin.ErrEmpty}},
			wantMsg: "failed to load books: empty or invalid JSON document",
		},
		{
			name:    "timeout",
			resp:    fakeResponse{err: fmt.Errorf("fetch: %w", context.DeadlineExceeded)},
			wantMsg: "failed to load books: request timed out",
		},
		{
			name:    "other",
			resp:    fakeResponse{err: errors.New("connection refused")},
			wantMsg: "failed to load books: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newShelf(t, tt.resp)

			_, err := svc.Load(context.Background())
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.wantMsg, domainErr.Message)
			assert.Equal(t, 502, domainErr.HTTPStatus())
		})
	}
}

func TestShelfService_NextWrapsAround(t *testing.T) {
	svc, _ := newShelf(t, fakeResponse{records: records(t, shelfDoc)})
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, "A", cur.Item.Title)
	assert.Equal(t, 5, cur.Total)

	titles := []string{}
	for range 5 {
		cur, err = svc.Next()
		require.NoError(t, err)
		titles = append(titles, cur.Item.Title)
	}
	assert.Equal(t, []string{"B", "C", "Physics", "D", "A"}, titles)
	assert.Equal(t, 0, cur.Index)
}

func TestShelfService_NextOnEmptyShelf(t *testing.T) {
	svc, src := newShelf(t, fakeResponse{records: records(t, shelfDoc)})

	_, err := svc.Next()
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	assert.Equal(t, 0, src.calls, "next never triggers a fetch")
}

func TestShelfService_ReloadResetsCursor(t *testing.T) {
	svc, _ := newShelf(t, fakeResponse{records: records(t, shelfDoc)})

	first, err := svc.Load(context.Background())
	require.NoError(t, err)
	_, err = svc.Next()
	require.NoError(t, err)

	second, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.LoadID, second.LoadID)
	assert.Equal(t, 0, second.Cursor)
}

func TestShelfService_Search(t *testing.T) {
	svc, _ := newShelf(t, fakeResponse{records: records(t, shelfDoc)})
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	found, err := svc.Search(context.Background(), "physics", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, books.KindNonFiction, found[0].Kind)

	_, err = svc.Search(context.Background(), "physics", 1000)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestShelfService_Reset(t *testing.T) {
	svc, _ := newShelf(t, fakeResponse{records: records(t, shelfDoc)})
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	svc.Reset()
	assert.False(t, svc.Snapshot().Loaded)
}

func TestShelfService_SnapshotIsACopy(t *testing.T) {
	svc, _ := newShelf(t, fakeResponse{records: records(t, shelfDoc)})
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	snap := svc.Snapshot()
	snap.Items[0].Title = "changed"

	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, "A", cur.Item.Title)
}

func TestShelfService_ConcurrentLoadsAndReads(t *testing.T) {
	svc, _ := newShelf(t, fakeResponse{records: records(t, shelfDoc)})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, _ = svc.Load(context.Background())
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Next()
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Search(context.Background(), "C", 5)
		}()
	}
	wg.Wait()

	snap := svc.Snapshot()
	require.True(t, snap.Loaded)
	assert.Len(t, snap.Items, 5)

	count, err := svc.index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event.(sse.Event))
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func TestShelfService_EmitsEvents(t *testing.T) {
	upstream := &jsonbin.Error{Op: "fetch", URL: "https://example.test", Status: 503, Err: jsonbin.ErrServer}
	svc, _ := newShelf(t,
		fakeResponse{records: records(t, shelfDoc)},
		fakeResponse{err: upstream},
	)
	emitter := &recordingEmitter{}
	svc.SetEventEmitter(emitter)

	snap, err := svc.Load(context.Background())
	require.NoError(t, err)
	_, err = svc.Next()
	require.NoError(t, err)
	_, err = svc.Load(context.Background())
	require.Error(t, err)

	// Next on an empty shelf changes nothing and emits nothing.
	_, err = svc.Next()
	require.Error(t, err)

	assert.Equal(t, []sse.EventType{sse.EventShelfLoaded, sse.EventShelfCursor, sse.EventShelfCleared}, emitter.types())

	loaded := emitter.events[0].Data.(sse.ShelfLoadedEventData)
	assert.Equal(t, snap.LoadID, loaded.LoadID)
	assert.Equal(t, 5, loaded.Books)
	assert.Equal(t, 2, loaded.Groups)

	cursor := emitter.events[1].Data.(sse.ShelfCursorEventData)
	assert.Equal(t, "B", cursor.Title)
	assert.Equal(t, 1, cursor.Index)
	assert.Equal(t, 5, cursor.Total)

	cleared := emitter.events[2].Data.(sse.ShelfClearedEventData)
	assert.Equal(t, "HTTP 503", cleared.Reason)
}

func TestShelfService_SetEventEmitterNil(t *testing.T) {
	svc, _ := newShelf(t, fakeResponse{records: records(t, shelfDoc)})
	svc.SetEventEmitter(nil)

	_, err := svc.Load(context.Background())
	assert.NoError(t, err)
}
