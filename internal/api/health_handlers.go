package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Component and overall health states, worst last.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

var statusRank = map[string]int{statusHealthy: 0, statusDegraded: 1, statusUnhealthy: 2}

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Reports the book source, search index and shelf state",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Time taken by the probe"`
	Message string `json:"message,omitempty" doc:"Human-readable detail"`
}

// HealthResponse is the worst component status plus every component.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Per-component status"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	resp := HealthResponse{
		Status: statusHealthy,
		Components: map[string]ComponentHealth{
			"book_source": s.checkBookSource(),
			"search":      s.checkSearchIndex(),
			"shelf":       s.checkShelf(),
		},
	}
	for _, c := range resp.Components {
		if statusRank[c.Status] > statusRank[resp.Status] {
			resp.Status = c.Status
		}
	}
	return &HealthOutput{Body: resp}, nil
}

// checkBookSource only looks at configuration; the document is fetched on load.
func (s *Server) checkBookSource() ComponentHealth {
	if s.opts.SourceURL == "" {
		return ComponentHealth{Status: statusDegraded, Message: "book source not configured"}
	}
	return ComponentHealth{Status: statusHealthy, Message: s.opts.SourceURL}
}

func (s *Server) checkSearchIndex() ComponentHealth {
	if s.services == nil || s.services.Index == nil {
		return ComponentHealth{Status: statusDegraded, Message: "search index not configured"}
	}

	start := time.Now()
	count, err := s.services.Index.DocumentCount()
	latency := time.Since(start).String()
	if err != nil {
		return ComponentHealth{Status: statusUnhealthy, Latency: latency, Message: "search index unreachable"}
	}
	return ComponentHealth{Status: statusHealthy, Latency: latency, Message: formatDocumentCount(count)}
}

// checkShelf reports the last committed load. An empty shelf is healthy.
func (s *Server) checkShelf() ComponentHealth {
	if s.services == nil || s.services.Shelf == nil {
		return ComponentHealth{Status: statusDegraded, Message: "shelf not configured"}
	}

	snap := s.services.Shelf.Snapshot()
	if !snap.Loaded {
		return ComponentHealth{Status: statusHealthy, Message: "nothing loaded yet"}
	}
	return ComponentHealth{
		Status:  statusHealthy,
		Message: fmt.Sprintf("load %s at %s", snap.LoadID, snap.LoadedAt.UTC().Format(time.RFC3339)),
	}
}

func formatDocumentCount(count uint64) string {
	switch count {
	case 0:
		return "no books indexed"
	case 1:
		return "1 book indexed"
	default:
		return fmt.Sprintf("%d books indexed", count)
	}
}
