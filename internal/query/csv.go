package query

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"betedge/engine/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrMissingColumn is returned by ReadCSV when a required column is absent
var ErrMissingColumn = errors.New("missing column")

// WriteCSV writes the table with a header row and one row per entity.
// Debug adds one provenance column per metric.
func WriteCSV(w io.Writer, t *models.Table, debug bool) error {
	cols := t.Columns(debug)
	withID := t.HasIDs()

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, 0, len(cols))
	for _, row := range t.Rows {
		record = record[:0]
		record = append(record, row.Entity.Name, row.Entity.Team)
		if withID {
			record = append(record, row.Entity.ID)
		}
		for _, attr := range t.Attrs {
			record = append(record, row.Entity.Attr(attr))
		}
		for _, m := range t.Metrics {
			if v, ok := row.Metric(m); ok {
				record = append(record, formatFloat(v))
			} else {
				record = append(record, "")
			}
		}
		record = append(record, formatFloat(row.Rating))
		if debug {
			for _, m := range t.Metrics {
				if cell, ok := row.Metrics[m]; ok {
					record = append(record, cell.Provenance.String())
				} else {
					record = append(record, "")
				}
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %q: %w", row.Entity.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV. Columns outside the layout are ignored.
// Without a provenance column, values are read back as fetched.
func ReadCSV(r io.Reader, layout models.Layout) (*models.Table, error) {
	return ReadCSVAs(r, layout, models.ProvenanceFetched)
}

// ReadCSVAs is ReadCSV with the provenance given to values that have no
// provenance column. A non-debug export carries no provenance at all.
func ReadCSVAs(r io.Reader, layout models.Layout, unmarked models.Provenance) (*models.Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, col := range header {
		pos[strings.TrimPrefix(col, "\ufeff")] = i
	}
	for _, required := range []string{models.NameColumn, models.TeamColumn, models.RatingColumn} {
		if _, ok := pos[required]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, required)
		}
	}

	table := models.NewTable(layout)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseRow(rec, pos, layout, unmarked)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func parseRow(rec []string, pos map[string]int, layout models.Layout, unmarked models.Provenance) (models.Row, error) {
	get := func(col string) (string, bool) {
		i, ok := pos[col]
		if !ok || i >= len(rec) {
			return "", false
		}
		return rec[i], true
	}

	name, _ := get(models.NameColumn)
	team, _ := get(models.TeamColumn)
	id, _ := get(models.IDColumn)
	row := models.Row{
		Entity:  models.Entity{ID: id, Name: name, Team: team},
		Metrics: make(map[string]models.Cell),
	}

	for _, attr := range layout.Attrs {
		if v, ok := get(attr); ok {
			row.Entity.SetAttr(attr, v)
		}
	}

	for _, m := range layout.Metrics {
		raw, ok := get(m)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return row, fmt.Errorf("column %q: %w", m, err)
		}
		cell := models.Cell{Value: v, Provenance: unmarked, SourceID: "csv"}
		if p, ok := get(models.SourceColumn(m)); ok && p != "" {
			prov, err := models.ParseProvenance(p)
			if err != nil {
				return row, fmt.Errorf("column %q: %w", models.SourceColumn(m), err)
			}
			cell.Provenance = prov
		}
		row.Metrics[m] = cell
	}

	raw, _ := get(models.RatingColumn)
	rating, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return row, fmt.Errorf("column %q: %w", models.RatingColumn, err)
	}
	row.Rating = rating
	return row, nil
}

// Export writes the table to path, replacing any existing file
func Export(path string, t *models.Table, debug bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WriteCSV(f, t, debug); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("rows", t.Len()).
		Bool("debug", debug).
		Msg("Exported table")
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
