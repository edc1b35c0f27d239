package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/labdesk/labdesk-server/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	result := decode(t, w)
	assert.Equal(t, Version, result.Version)
	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Error)
}

func TestJSON_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, map[string]any{"id": "123", "name": "test"}, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)

	result := decode(t, w)
	assert.True(t, result.Success)

	dataMap, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "123", dataMap["id"])
	assert.Equal(t, "test", dataMap["name"])
}

func TestError_CarriesCode(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusBadGateway, domainerrors.CodeUpstream, "failed to load books: HTTP 500", discardLogger())

	assert.Equal(t, http.StatusBadGateway, w.Code)

	result := decode(t, w)
	assert.Equal(t, Version, result.Version)
	assert.False(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Equal(t, "failed to load books: HTTP 500", result.Error)
	assert.Equal(t, "UPSTREAM", result.Code)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			write:      func(w http.ResponseWriter) { NotFound(w, "resource not found", nil) },
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "method not allowed",
			write:      func(w http.ResponseWriter) { MethodNotAllowed(w, "method not allowed", nil) },
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   "VALIDATION",
		},
		{
			name:       "too many requests",
			write:      func(w http.ResponseWriter) { TooManyRequests(w, "slow down", 0, nil) },
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMITED",
		},
		{
			name:       "internal",
			write:      func(w http.ResponseWriter) { InternalError(w, "boom", nil) },
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.wantStatus, w.Code)
			result := decode(t, w)
			assert.False(t, result.Success)
			assert.Equal(t, tt.wantCode, result.Code)
			assert.NotEmpty(t, result.Error)
		})
	}
}

func TestTooManyRequests_RetryAfter(t *testing.T) {
	w := httptest.NewRecorder()

	TooManyRequests(w, "slow down", 3, nil)

	assert.Equal(t, "3", w.Header().Get("Retry-After"))
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()
	err := domainerrors.ValidationWithDetails("validation failed", map[string]string{"size": "is required"})

	HandleError(w, err, discardLogger())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	result := decode(t, w)
	assert.Equal(t, "VALIDATION", result.Code)
	assert.Equal(t, "validation failed", result.Error)
	assert.Equal(t, map[string]any{"size": "is required"}, result.Details)
}

func TestHandleError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("disk on fire"), discardLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	result := decode(t, w)
	assert.Equal(t, "internal server error", result.Error, "internal causes are not leaked")
}

func TestStatusCodeBoundary(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		expectedSuccess bool
	}{
		{"200 OK", 200, true},
		{"201 Created", 201, true},
		{"399 Custom Success", 399, true},
		{"400 Bad Request", 400, false},
		{"404 Not Found", 404, false},
		{"500 Internal Server Error", 500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSON(w, tt.status, nil, nil)

			assert.Equal(t, tt.expectedSuccess, decode(t, w).Success, "Status %d should have Success=%v", tt.status, tt.expectedSuccess)
		})
	}
}

func TestEnvelope_OmitEmpty(t *testing.T) {
	tests := []struct {
		name        string
		envelope    Envelope
		contains    []string
		notContains []string
	}{
		{
			name:        "success with data",
			envelope:    Envelope{Version: Version, Success: true, Data: "test"},
			contains:    []string{`"v":1`, `"success":true`, `"data":"test"`},
			notContains: []string{`"error":`, `"code":`, `"details":`},
		},
		{
			name:        "error without data",
			envelope:    Envelope{Version: Version, Success: false, Error: "something failed", Code: "INTERNAL"},
			contains:    []string{`"v":1`, `"success":false`, `"error":"something failed"`, `"code":"INTERNAL"`},
			notContains: []string{`"data":`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.envelope)
			require.NoError(t, err)

			jsonStr := string(data)
			for _, s := range tt.contains {
				assert.Contains(t, jsonStr, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, jsonStr, s)
			}
		})
	}
}
