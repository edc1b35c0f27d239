package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const (
	// DefaultLimit caps hits when the caller passes no limit.
	DefaultLimit = 20
	// MaxLimit is the largest accepted limit.
	MaxLimit = 100
)

// Hit is one search match.
type Hit struct {
	Position int     `json:"position"`
	Score    float64 `json:"score"`
}

// Search returns shelf positions matching q, best first. An empty query
// or an empty index returns no hits.
func (s *SearchIndex) Search(ctx context.Context, q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index == nil {
		return []Hit{}, nil
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(q), limit, 0, false)
	req.SortBy([]string{"-_score", "position"})

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		pos, err := strconv.Atoi(h.ID)
		if err != nil {
			s.logger.Warn("search hit with non-numeric id", "id", h.ID)
			continue
		}
		hits = append(hits, Hit{Position: pos, Score: h.Score})
	}
	return hits, nil
}

// buildSearchQuery matches the analyzed query on title, author and label,
// and also treats each word as a prefix so partial input finds titles.
func buildSearchQuery(q string) query.Query {
	fields := []struct {
		name  string
		boost float64
	}{
		{"title", 3},
		{"author", 2},
		{"label", 1},
	}

	var queries []query.Query
	for _, f := range fields {
		mq := bleve.NewMatchQuery(q)
		mq.SetField(f.name)
		mq.SetBoost(f.boost)
		queries = append(queries, mq)

		for _, word := range strings.Fields(strings.ToLower(q)) {
			word = strings.Trim(word, ".,;:!?\"'()")
			if word == "" {
				continue
			}
			pq := bleve.NewPrefixQuery(word)
			pq.SetField(f.name)
			pq.SetBoost(f.boost / 2)
			queries = append(queries, pq)
		}
	}

	// Kind matches exactly, e.g. "fiction".
	kq := bleve.NewTermQuery(strings.ToLower(q))
	kq.SetField("kind")
	queries = append(queries, kq)

	return bleve.NewDisjunctionQuery(queries...)
}
