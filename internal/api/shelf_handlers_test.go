package api

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShelf_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/shelf/load", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeEnvelope[ShelfResponse](t, resp)
	assert.True(t, envelope.Success)

	shelf := envelope.Data
	assert.True(t, shelf.Loaded)
	assert.NotEmpty(t, shelf.LoadID)
	assert.NotNil(t, shelf.LoadedAt)
	assert.Equal(t, 6, shelf.Total)
	assert.Equal(t, 0, shelf.Cursor)
	require.Len(t, shelf.Books, 6)

	assert.Equal(t, "fiction", shelf.Books[0].Kind)
	assert.Equal(t, 320, shelf.Books[1].Pages, "string pages are coerced")
	assert.Equal(t, "non_fiction", shelf.Books[3].Kind)
	assert.Equal(t, "Фізика", shelf.Books[3].Label)
	assert.Equal(t, "Мовознавство (англійська)", shelf.Books[4].Label)
	assert.Equal(t, 100, shelf.Books[5].Pages, "missing pages default to 100")
	assert.Equal(t, "Назва: Кобзар; Автор: Т. Шевченко; Сторінок: 320; Жанр: Поезія", shelf.Books[1].Info)
}

func TestLoadShelf_GroupsShortestFiction(t *testing.T) {
	ts := setupTestServer(t)

	require.Equal(t, http.StatusOK, ts.api.Post("/api/v1/shelf/load", nil).Code)

	resp := ts.api.Get("/api/v1/shelf/groups")
	require.Equal(t, http.StatusOK, resp.Code)

	groups := decodeEnvelope[GroupsResponse](t, resp).Data.Groups
	require.Len(t, groups, 2)

	assert.Equal(t, "Повість", groups[0].Genre)
	assert.Equal(t, 40, groups[0].Pages)
	require.Len(t, groups[0].Books, 1)
	assert.Equal(t, "Intermezzo", groups[0].Books[0].Title)

	assert.Equal(t, "Поезія", groups[1].Genre)
	assert.Equal(t, 100, groups[1].Pages)
	require.Len(t, groups[1].Books, 1)
	assert.Equal(t, "Без сторінок", groups[1].Books[0].Title)
}

func TestLoadShelf_UpstreamFailureIsBadGateway(t *testing.T) {
	ts := setupTestServer(t)
	ts.failUpstream(http.StatusInternalServerError, `{"message":"boom"}`)

	resp := ts.api.Post("/api/v1/shelf/load", nil)

	assert.Equal(t, http.StatusBadGateway, resp.Code)
	envelope := decodeEnvelope[any](t, resp)
	assert.False(t, envelope.Success)
	assert.Equal(t, "UPSTREAM", envelope.Code)
	assert.Equal(t, "failed to load books: HTTP 500", envelope.Error)
}

func TestLoadShelf_EmptyDocument(t *testing.T) {
	ts := setupTestServer(t)
	ts.failUpstream(http.StatusOK, `{"record":[]}`)

	resp := ts.api.Post("/api/v1/shelf/load", nil)

	assert.Equal(t, http.StatusBadGateway, resp.Code)
	envelope := decodeEnvelope[any](t, resp)
	assert.Equal(t, "failed to load books: empty or invalid JSON document", envelope.Error)
}

func TestLoadShelf_FailureClearsPreviousLoad(t *testing.T) {
	ts := setupTestServer(t)

	require.Equal(t, http.StatusOK, ts.api.Post("/api/v1/shelf/load", nil).Code)

	ts.failUpstream(http.StatusNotFound, `{"message":"Bin not found"}`)
	require.Equal(t, http.StatusBadGateway, ts.api.Post("/api/v1/shelf/load", nil).Code)

	resp := ts.api.Get("/api/v1/shelf")
	require.Equal(t, http.StatusOK, resp.Code)
	shelf := decodeEnvelope[ShelfResponse](t, resp).Data
	assert.False(t, shelf.Loaded)
	assert.Empty(t, shelf.Books)
	assert.Empty(t, shelf.Groups)
	assert.Nil(t, shelf.LoadedAt)

	assert.Equal(t, http.StatusNotFound, ts.api.Get("/api/v1/shelf/current").Code)
}

func TestShelf_CurrentBeforeLoad(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/shelf/current")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	envelope := decodeEnvelope[any](t, resp)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.Equal(t, "no books loaded", envelope.Error)
}

func TestShelf_NextWrapsAround(t *testing.T) {
	ts := setupTestServer(t)
	require.Equal(t, http.StatusOK, ts.api.Post("/api/v1/shelf/load", nil).Code)

	var last CursorResponse
	for range 6 {
		resp := ts.api.Post("/api/v1/shelf/next", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		last = decodeEnvelope[CursorResponse](t, resp).Data
	}

	assert.Equal(t, 0, last.Index, "six steps over six books land on the first")
	assert.Equal(t, 6, last.Total)
	assert.Equal(t, "Тіні забутих предків", last.Book.Title)

	resp := ts.api.Get("/api/v1/shelf/current")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, decodeEnvelope[CursorResponse](t, resp).Data.Index)
}

func TestShelf_NextOnEmptyShelf(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/shelf/next", nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestShelf_GroupsBeforeLoad(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/shelf/groups")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeEnvelope[GroupsResponse](t, resp).Data.Groups)
}

func TestShelf_Search(t *testing.T) {
	ts := setupTestServer(t)
	require.Equal(t, http.StatusOK, ts.api.Post("/api/v1/shelf/load", nil).Code)

	resp := ts.api.Get("/api/v1/shelf/search?q=Коцюбинський")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decodeEnvelope[SearchShelfResponse](t, resp).Data
	assert.Equal(t, "Коцюбинський", result.Query)
	require.Equal(t, 2, result.Total)

	titles := []string{result.Books[0].Title, result.Books[1].Title}
	assert.ElementsMatch(t, []string{"Тіні забутих предків", "Intermezzo"}, titles)
}

func TestShelf_SearchEmptyQuery(t *testing.T) {
	ts := setupTestServer(t)
	require.Equal(t, http.StatusOK, ts.api.Post("/api/v1/shelf/load", nil).Code)

	resp := ts.api.Get("/api/v1/shelf/search")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, decodeEnvelope[SearchShelfResponse](t, resp).Data.Total)
}

func TestShelf_SearchLimitTooLarge(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/shelf/search?q=a&limit=1000")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	envelope := decodeEnvelope[any](t, resp)
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Contains(t, envelope.Details, "limit")
}

func TestShelfEvents_StreamsLoad(t *testing.T) {
	ts := setupTestServer(t)
	srv := httptest.NewServer(ts.Server)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/shelf/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", nextEventName(t, reader))

	require.Equal(t, http.StatusOK, ts.api.Post("/api/v1/shelf/load", nil).Code)
	assert.Equal(t, "shelf.loaded", nextEventName(t, reader))

	require.Equal(t, http.StatusOK, ts.api.Post("/api/v1/shelf/next", nil).Code)
	assert.Equal(t, "shelf.cursor", nextEventName(t, reader))
}

// nextEventName reads one SSE frame and returns its event name.
func nextEventName(t *testing.T, r *bufio.Reader) string {
	t.Helper()

	var name string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		if line == "" && name != "" {
			return name
		}
		if after, ok := strings.CutPrefix(line, "event: "); ok {
			name = after
		}
	}
}
