package books

import (
	"fmt"
	"math"

	"github.com/labdesk/labdesk-server/internal/numeric"
)

const (
	// DefaultPages replaces page counts that are missing, invalid or not positive.
	DefaultPages = 100

	// DefaultFieldLabel is used for non-fiction records with neither a field nor a language.
	DefaultFieldLabel = "Філологія"

	// maxPages caps absurd counts so they still fit an int on every platform.
	maxPages = math.MaxInt32
)

// Kind is the classification variant of an item.
type Kind int

const (
	// KindFiction marks novels; their label is a genre.
	KindFiction Kind = iota
	// KindNonFiction marks science books; their label is a field of study.
	KindNonFiction
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFiction:
		return "fiction"
	case KindNonFiction:
		return "non_fiction"
	default:
		return "unknown"
	}
}

// Item is a classified record. Label is the genre for fiction and the
// field for non-fiction; it is the only key used for display and grouping.
type Item struct {
	Kind     Kind
	Title    string
	Author   string
	Pages    int
	Label    string
	Position int // zero-based index in the source list
}

// IsFiction reports whether the item is a novel.
func (it Item) IsFiction() bool {
	return it.Kind == KindFiction
}

// DisplayInfo renders the single-line description shown for an item.
func (it Item) DisplayInfo() string {
	base := fmt.Sprintf("Назва: %s; Автор: %s; Сторінок: %d", it.Title, it.Author, it.Pages)
	switch it.Kind {
	case KindNonFiction:
		return base + "; Галузь: " + it.Label
	default:
		return base + "; Жанр: " + it.Label
	}
}

// ParsePages turns a coerced page value into a count.
// Non-finite or non-positive values become DefaultPages; anything else is
// rounded half up, so a value below 0.5 rounds to zero.
func ParsePages(v float64) int {
	if !numeric.IsFinite(v) || v <= 0 {
		return DefaultPages
	}
	rounded := math.Floor(v + 0.5)
	if rounded > maxPages {
		return maxPages
	}
	return int(rounded)
}

// IsNonFiction reports whether a record carries a non-fiction signal:
// an explicit science type, or a non-empty field.
func IsNonFiction(r Record) bool {
	if typ, ok := tagValue(r.Type); ok && typ == TypeScience {
		return true
	}
	field, ok := tagValue(r.Field)
	return ok && field != ""
}

// Classify assigns a record to Fiction or NonFiction. Position is the
// record's zero-based index in its source list and only feeds the
// placeholder genre. Classify never fails.
func Classify(r Record, position int) Item {
	item := Item{
		Title:    r.Title,
		Author:   r.Author,
		Pages:    ParsePages(r.Pages),
		Position: position,
	}

	if IsNonFiction(r) {
		item.Kind = KindNonFiction
		item.Label = fieldLabel(r)
		return item
	}

	item.Kind = KindFiction
	if genre, ok := tagValue(r.Genre); ok {
		item.Label = genre
	} else {
		item.Label = fmt.Sprintf("Жанр %d", position+1)
	}
	return item
}

// ClassifyAll classifies records in order.
func ClassifyAll(records []Record) []Item {
	items := make([]Item, 0, len(records))
	for i, r := range records {
		items = append(items, Classify(r, i))
	}
	return items
}

func fieldLabel(r Record) string {
	if field, ok := tagValue(r.Field); ok {
		return field
	}
	if lang, ok := tagValue(r.Language); ok {
		return fmt.Sprintf("Мовознавство (%s)", lang)
	}
	return DefaultFieldLabel
}
