package models

import (
	"strings"
)

// Layout fixes the column set of a table
type Layout struct {
	Domain  string
	Attrs   []string
	Metrics []string
}

// Cell holds one reconciled metric value
type Cell struct {
	Value      float64
	Provenance Provenance
	SourceID   string
}

// Imputed reports whether the value was filled in by the merge layer
func (c Cell) Imputed() bool {
	return c.Provenance == ProvenanceImputed
}

// Row represents one entity joined with its metrics and rating
type Row struct {
	Entity  Entity
	Metrics map[string]Cell
	Rating  float64
}

// Metric returns the value of a metric and whether it is present
func (r Row) Metric(name string) (float64, bool) {
	cell, ok := r.Metrics[name]
	if !ok {
		return 0, false
	}
	return cell.Value, true
}

// ImputedMetrics lists the imputed metrics of the row in layout order
func (r Row) ImputedMetrics(layout Layout) []string {
	var out []string
	for _, name := range layout.Metrics {
		if cell, ok := r.Metrics[name]; ok && cell.Imputed() {
			out = append(out, name)
		}
	}
	return out
}

func (r Row) clone() Row {
	out := Row{
		Entity: r.Entity.clone(),
		Rating: r.Rating,
	}
	if r.Metrics != nil {
		out.Metrics = make(map[string]Cell, len(r.Metrics))
		for k, v := range r.Metrics {
			out.Metrics[k] = v
		}
	}
	return out
}

// Table is the reconciled, row-per-entity working table of a run
type Table struct {
	Layout
	Rows []Row
}

// NewTable creates an empty table with the given layout
func NewTable(layout Layout) *Table {
	return &Table{Layout: layout}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasIDs reports whether any row carries an external identifier
func (t *Table) HasIDs() bool {
	for _, row := range t.Rows {
		if row.Entity.ID != "" {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := &Table{Layout: t.Layout, Rows: make([]Row, 0, len(t.Rows))}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, row.clone())
	}
	return out
}

// WithRows returns a table sharing the layout but holding the given rows
func (t *Table) WithRows(rows []Row) *Table {
	return &Table{Layout: t.Layout, Rows: rows}
}

// Columns returns the export column order. Debug adds one provenance column per metric.
func (t *Table) Columns(debug bool) []string {
	cols := []string{NameColumn, TeamColumn}
	if t.HasIDs() {
		cols = append(cols, IDColumn)
	}
	cols = append(cols, t.Attrs...)
	cols = append(cols, t.Metrics...)
	cols = append(cols, RatingColumn)
	if debug {
		for _, m := range t.Metrics {
			cols = append(cols, SourceColumn(m))
		}
	}
	return cols
}

// SourceColumn names the debug provenance column of a metric
func SourceColumn(metric string) string {
	return metric + sourceSuffix
}

// MetricOfSourceColumn is the inverse of SourceColumn
func MetricOfSourceColumn(col string) (string, bool) {
	if !strings.HasSuffix(col, sourceSuffix) {
		return "", false
	}
	return strings.TrimSuffix(col, sourceSuffix), true
}
