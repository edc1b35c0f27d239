// Package books classifies loosely typed book records from a remote document
// and aggregates the shortest fiction titles per genre.
package books

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/labdesk/labdesk-server/internal/numeric"
)

// TypeScience is the explicit type tag that marks a record as non-fiction.
const TypeScience = "science"

// Record is a raw book entry as published by the source document.
// Every field is optional on the wire; decoding never rejects a record
// because a field has an unexpected JSON type.
type Record struct {
	Title  string
	Author string

	// Pages holds the coerced page value. It may be NaN or infinite;
	// ParsePages turns it into a usable count.
	Pages float64

	// Optional tags are nil when absent or null.
	Genre    *string
	Field    *string
	Language *string
	Type     *string
}

// rawRecord mirrors the wire shape before coercion.
type rawRecord struct {
	Title    json.RawMessage `json:"title"`
	Author   json.RawMessage `json:"author"`
	Pages    json.RawMessage `json:"pages"`
	Genre    json.RawMessage `json:"genre"`
	Field    json.RawMessage `json:"field"`
	Language json.RawMessage `json:"language"`
	Type     json.RawMessage `json:"type"`
}

// UnmarshalJSON decodes a record, coercing scalar fields to text and the
// page count to a number. Only a value that is not a JSON object fails.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record{
		Title:    textOf(raw.Title),
		Author:   textOf(raw.Author),
		Pages:    numeric.FromJSON(raw.Pages),
		Genre:    optionalText(raw.Genre),
		Field:    optionalText(raw.Field),
		Language: optionalText(raw.Language),
		Type:     optionalText(raw.Type),
	}
	return nil
}

// optionalText returns nil for missing or null values.
func optionalText(raw json.RawMessage) *string {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil
	}
	s := textOf(v)
	return &s
}

// textOf renders a JSON scalar as display text.
// Strings are unquoted, numbers keep their literal form, null is empty.
func textOf(raw json.RawMessage) string {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return ""
	}

	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		return ""
	case 'n':
		return ""
	case 't', 'f':
		return string(v)
	case '[', '{':
		return string(v)
	}

	if f, err := strconv.ParseFloat(string(v), 64); err == nil && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return string(v)
}

// tagValue dereferences an optional tag.
func tagValue(tag *string) (string, bool) {
	if tag == nil {
		return "", false
	}
	return *tag, true
}
