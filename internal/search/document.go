// Package search provides in-memory full-text search over the loaded shelf
// using Bleve.
package search

import (
	"strconv"

	"github.com/labdesk/labdesk-server/internal/books"
	"github.com/labdesk/labdesk-server/internal/util"
)

// BookDocument is the indexed form of one classified item.
type BookDocument struct {
	ID        string
	Position  int
	Title     string
	Author    string
	Label     string
	LabelSlug string
	Kind      string
	Pages     int
}

// NewBookDocument builds the document for an item. The ID is the item's
// position, which is how hits map back to the snapshot.
func NewBookDocument(item books.Item) *BookDocument {
	return &BookDocument{
		ID:        strconv.Itoa(item.Position),
		Position:  item.Position,
		Title:     item.Title,
		Author:    item.Author,
		Label:     item.Label,
		LabelSlug: util.LabelSlug(item.Label),
		Kind:      item.Kind.String(),
		Pages:     item.Pages,
	}
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *BookDocument) ToMap() map[string]any {
	return map[string]any{
		"position":   d.Position,
		"title":      d.Title,
		"author":     d.Author,
		"label":      d.Label,
		"label_slug": d.LabelSlug,
		"kind":       d.Kind,
		"pages":      d.Pages,
	}
}
