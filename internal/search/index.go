package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/labdesk/labdesk-server/internal/books"
)

// SearchIndex holds an in-memory Bleve index of the current shelf.
//
// Thread safety: All public methods are safe for concurrent use.
// Rebuild builds the new index before taking the write lock, so searches
// only block for the swap.
type SearchIndex struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	Logger *slog.Logger // Logger for operations (uses discard if nil)
}

// NewSearchIndex creates an empty index.
func NewSearchIndex(opts Options) *SearchIndex {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SearchIndex{logger: logger}
}

// Rebuild replaces the index contents with items.
func (s *SearchIndex) Rebuild(items []books.Item) error {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	batch := index.NewBatch()
	for _, item := range items {
		doc := NewBookDocument(item)
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			_ = index.Close()
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return fmt.Errorf("commit batch: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index = index
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Warn("failed to close previous search index", "error", err)
		}
	}

	s.logger.Debug("rebuilt search index", "documents", len(items))
	return nil
}

// Clear drops every document.
func (s *SearchIndex) Clear() {
	s.mu.Lock()
	old := s.index
	s.index = nil
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
}

// DocumentCount returns the number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0, nil
	}
	return s.index.DocCount()
}

// Close releases the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}
