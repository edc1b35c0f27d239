package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/labdesk/labdesk-server/internal/menu"
	"github.com/labdesk/labdesk-server/internal/service"
)

// Colors
var (
	colorAccentRed  = lipgloss.Color("#f85149")
	colorAccentBlue = lipgloss.Color("#58a6ff")
	colorTextMuted  = lipgloss.Color("#8b949e")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorAccentBlue).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	cellStyle = lipgloss.NewStyle().
			Align(lipgloss.Right).
			PaddingLeft(1)

	// Cells picked by matrix.IsHighlighted.
	highlightStyle = cellStyle.
			Foreground(colorAccentRed).
			Bold(true)
)

func renderShelf(snapshot service.Snapshot) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Книги (%d)", len(snapshot.Items))))
	b.WriteByte('\n')
	for _, it := range snapshot.Items {
		fmt.Fprintf(&b, "%3d. %s\n", it.Position+1, it.DisplayInfo())
	}

	b.WriteByte('\n')
	b.WriteString(headerStyle.Render("Найменше сторінок за жанром"))
	b.WriteByte('\n')
	if len(snapshot.Groups) == 0 {
		b.WriteString(mutedStyle.Render("Художніх книг немає"))
		b.WriteByte('\n')
	}
	for _, g := range snapshot.Groups {
		titles := make([]string, len(g.Items))
		for i, it := range g.Items {
			titles[i] = it.Title
		}
		fmt.Fprintf(&b, "%s: %d (%s)\n", g.Label, g.Pages, strings.Join(titles, ", "))
	}

	return b.String()
}

func renderRange(result service.RangeResult) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Знайдено: %d", result.Count)))
	b.WriteByte('\n')
	if result.Count == 0 {
		b.WriteString(mutedStyle.Render("Немає чисел"))
		b.WriteByte('\n')
		return b.String()
	}

	values := make([]string, len(result.Values))
	for i, v := range result.Values {
		values[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	b.WriteString(strings.Join(values, ", "))
	b.WriteByte('\n')
	return b.String()
}

func renderMatrix(result service.MatrixResult) string {
	width := 0
	for _, row := range result.Rows {
		for _, v := range row {
			width = max(width, len(strconv.Itoa(v)))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n",
		headerStyle.Render(fmt.Sprintf("Матриця %d×%d", result.Size, result.Size)),
		mutedStyle.Render(fmt.Sprintf("seed=%d", result.Seed)),
	)

	for _, cell := range result.Cells {
		style := cellStyle
		if cell.Highlighted {
			style = highlightStyle
		}
		b.WriteString(style.Width(width + 1).Render(strconv.Itoa(cell.Value)))
		if cell.Col == result.Size-1 {
			b.WriteByte('\n')
		}
	}

	fmt.Fprintf(&b, "Виділено: %d\n", result.Highlighted)
	return b.String()
}

func renderPages(registry *menu.Registry) string {
	var b strings.Builder

	side := registry.Side()
	b.WriteString(headerStyle.Render(side.Title))
	b.WriteByte('\n')
	if side.Note != "" {
		b.WriteString(mutedStyle.Render(side.Note))
		b.WriteByte('\n')
	}

	for _, p := range registry.Pages() {
		fmt.Fprintf(&b, "%-6s %-28s %s\n", p.Name, p.Title, mutedStyle.Render(string(p.View)))
	}
	return b.String()
}
