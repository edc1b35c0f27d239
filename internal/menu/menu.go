// Package menu holds the lab page registry shown in the SPA side menu.
package menu

import "strings"

// View names the UI view a page renders.
type View string

// Views the SPA knows how to render.
const (
	ViewMultiples View = "multiples"
	ViewRange     View = "range"
	ViewMatrix    View = "matrix"
	ViewShelf     View = "shelf"
	ViewExplore   View = "explore"
)

// SectionTitle heads the side menu.
const SectionTitle = "Лабораторна робота 1"

// Page is one routable lab page.
type Page struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	View  View   `json:"view"`
	Known bool   `json:"known"`
}

// Entry is a side menu line.
type Entry struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Section is the rendered side menu.
type Section struct {
	Title   string  `json:"title"`
	Note    string  `json:"note,omitempty"`
	Entries []Entry `json:"entries"`
}

var pages = []Page{
	{Name: "task1", Title: "Task 1", View: ViewMultiples, Known: true},
	{Name: "task2", Title: "Task 2", View: ViewRange, Known: true},
	{Name: "lab2", Title: "Lab 2 (JSONBin)", View: ViewRange, Known: true},
	{Name: "task3", Title: "Task 3", View: ViewMatrix, Known: true},
	{Name: "lab3", Title: "Lab 3 (Abstract classes)", View: ViewShelf, Known: true},
}

// sideMenu lists the pages under SectionTitle.
var sideMenu = []string{"task1", "task2", "task3"}

// Registry resolves page names.
type Registry struct {
	note  string
	index map[string]Page
}

// NewRegistry creates a registry. note is shown under the side menu header
// when non-empty.
func NewRegistry(note string) *Registry {
	index := make(map[string]Page, len(pages))
	for _, p := range pages {
		index[p.Name] = p
	}
	return &Registry{note: strings.TrimSpace(note), index: index}
}

// Pages returns every known page in menu order.
func (r *Registry) Pages() []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	return out
}

// Lookup resolves a page name case-insensitively. Unknown names resolve to
// a placeholder titled with the raw name.
func (r *Registry) Lookup(name string) Page {
	if p, ok := r.index[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return Page{Name: name, Title: name, View: ViewExplore}
}

// Side returns the side menu section.
func (r *Registry) Side() Section {
	entries := make([]Entry, 0, len(sideMenu))
	for _, name := range sideMenu {
		p := r.index[name]
		entries = append(entries, Entry{Name: p.Name, Title: p.Title})
	}
	return Section{Title: SectionTitle, Note: r.note, Entries: entries}
}
