// Package output renders command results as aligned terminal tables.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table collects rows and renders them as tab-aligned columns.
type Table struct {
	w       *tabwriter.Writer
	headers []string
	rows    [][]string
}

// NewTable returns a table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

// WithHeaders sets the column headers.
func (t *Table) WithHeaders(headers ...string) *Table {
	t.headers = headers
	return t
}

// AddRow appends one row; values beyond the header count are still printed.
func (t *Table) AddRow(values ...string) *Table {
	t.rows = append(t.rows, values)
	return t
}

// Render writes the headers and rows and flushes the writer.
func (t *Table) Render() error {
	if len(t.headers) > 0 {
		if _, err := fmt.Fprintln(t.w, strings.Join(t.headers, "\t")); err != nil {
			return err
		}
	}
	for _, row := range t.rows {
		if _, err := fmt.Fprintln(t.w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return t.w.Flush()
}
