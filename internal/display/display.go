// Package display renders run summaries for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

// Status markers.
const (
	markPass = "✅"
	markFail = "❌"
	markWarn = "⚠️"
)

// Pass formats a success line.
func Pass(format string, args ...interface{}) string {
	return markPass + " " + color.Green.Sprintf(format, args...)
}

// Fail formats a failure line.
func Fail(format string, args ...interface{}) string {
	return markFail + " " + color.Red.Sprintf(format, args...)
}

// Warn formats a warning line.
func Warn(format string, args ...interface{}) string {
	return markWarn + " " + color.Yellow.Sprintf(format, args...)
}

// Heading formats a section title.
func Heading(title string) string {
	return color.Bold.Sprintf("=== %s ===", title)
}

// width is the display width of s with color codes removed.
func width(s string) int {
	return runewidth.StringWidth(color.ClearCode(s))
}

// pad right-fills s to w display columns.
func pad(s string, w int) string {
	if n := width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

// Table is a column-aligned text table.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table with a header rule.
func (t *Table) Render(w io.Writer) error {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := width(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = pad(c, widths[i])
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("-", n)
	}

	if _, err := fmt.Fprintln(w, line(t.headers)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, line(rule)); err != nil {
		return err
	}
	for _, row := range t.rows {
		if _, err := fmt.Fprintln(w, line(row)); err != nil {
			return err
		}
	}
	return nil
}

// KeyValues renders label/value pairs with the values aligned.
type KeyValues struct {
	keys   []string
	values []string
}

// Add appends one pair.
func (kv *KeyValues) Add(key string, value interface{}) {
	kv.keys = append(kv.keys, key)
	kv.values = append(kv.values, fmt.Sprint(value))
}

// Render writes one "key:  value" line per pair.
func (kv *KeyValues) Render(w io.Writer) error {
	widest := 0
	for _, k := range kv.keys {
		if n := width(k); n > widest {
			widest = n
		}
	}
	for i, k := range kv.keys {
		if _, err := fmt.Fprintf(w, "%s  %s\n", pad(k+":", widest+1), kv.values[i]); err != nil {
			return err
		}
	}
	return nil
}
