// Package merge reconciles adapter output into one row-per-entity table.
package merge

import (
	"sort"

	"betedge/engine/internal/models"
	"betedge/engine/internal/rating"

	"github.com/rs/zerolog/log"
)

// ImputedSource is the SourceID of imputed cells
const ImputedSource = "imputed"

// Report summarizes what happened during a merge
type Report struct {
	Applied    int
	Superseded int
	Malformed  int
	Unknown    int
	Unmatched  int
	// Ambiguous lists names that mapped to more than one entity
	Ambiguous []string
	// Imputed counts imputed cells per metric
	Imputed map[string]int
}

// ImputedTotal returns the number of imputed cells
func (r Report) ImputedTotal() int {
	total := 0
	for _, n := range r.Imputed {
		total += n
	}
	return total
}

// Merge joins records onto identities and imputes what is missing
func Merge(domain *rating.Domain, identities []models.Entity, records []models.SourceRecord, rng rating.RandomSource) *models.Table {
	table, _ := Reconcile(domain, identities, records, rng)
	return table
}

// Reconcile is Merge that also reports join statistics.
//
// Records join on external ID when both sides carry one, otherwise on the normalized
// name. Higher provenance wins; within the same provenance the last record wins.
// Rows are never dropped: whatever no record supplied is imputed per metric spec.
func Reconcile(domain *rating.Domain, identities []models.Entity, records []models.SourceRecord, rng rating.RandomSource) (*models.Table, Report) {
	report := Report{Imputed: make(map[string]int)}
	table := models.NewTable(domain.Layout())

	idx := newIndex()
	for _, e := range identities {
		if pos, ok := idx.find(e); ok {
			mergeIdentity(&table.Rows[pos].Entity, e)
			continue
		}
		table.Rows = append(table.Rows, models.Row{
			Entity:  copyEntity(e),
			Metrics: make(map[string]models.Cell),
		})
		idx.add(e, len(table.Rows)-1)
	}

	ambiguous := make(map[string]bool)
	for _, rec := range records {
		spec, ok := domain.Metric(rec.Metric)
		if !ok {
			report.Unknown++
			continue
		}
		if !spec.Accepts(rec.Value) {
			report.Malformed++
			log.Debug().
				Str("entity", rec.EntityName).
				Str("metric", rec.Metric).
				Str("source", rec.SourceID).
				Msg("Discarding malformed value")
			continue
		}

		pos, status := idx.resolve(rec)
		switch status {
		case joinAmbiguous:
			ambiguous[rec.Key()] = true
			continue
		case joinMissed:
			report.Unmatched++
			log.Debug().
				Str("entity", rec.EntityName).
				Str("id", rec.EntityID).
				Str("source", rec.SourceID).
				Msg("Record matched no entity")
			continue
		}

		row := &table.Rows[pos]
		if existing, ok := row.Metrics[rec.Metric]; ok && existing.Provenance > rec.Provenance {
			report.Superseded++
			continue
		}
		row.Metrics[rec.Metric] = models.Cell{
			Value:      models.Round(rec.Value, spec.Precision),
			Provenance: rec.Provenance,
			SourceID:   rec.SourceID,
		}
		report.Applied++
	}

	for name := range ambiguous {
		report.Ambiguous = append(report.Ambiguous, name)
	}
	sort.Strings(report.Ambiguous)
	for _, name := range report.Ambiguous {
		log.Debug().Str("name", name).Msg("Ambiguous name, records not applied")
	}

	for i := range table.Rows {
		impute(&table.Rows[i], domain, rng, report.Imputed)
	}

	return table, report
}

// impute fills the missing metrics of a row in layout order so a seeded source
// always yields the same table
func impute(row *models.Row, domain *rating.Domain, rng rating.RandomSource, counts map[string]int) {
	for _, spec := range domain.Metrics {
		if _, ok := row.Metrics[spec.Name]; ok {
			continue
		}

		var v float64
		switch {
		case spec.Impute.Range != nil && rng != nil:
			v = rating.Draw(rng, spec.Impute.Range.Lo, spec.Impute.Range.Hi)
		case spec.Impute.Neutral != nil:
			v = *spec.Impute.Neutral
		case spec.Impute.Range != nil:
			// No random source: use the middle of the range
			v = (spec.Impute.Range.Lo + spec.Impute.Range.Hi) / 2
		default:
			continue
		}

		row.Metrics[spec.Name] = models.Cell{
			Value:      models.Round(v, spec.Precision),
			Provenance: models.ProvenanceImputed,
			SourceID:   ImputedSource,
		}
		counts[spec.Name]++
	}
}

// Records converts a table back into source records, keeping each cell's provenance.
// Merging them onto the table's entities reproduces the table.
func Records(t *models.Table) []models.SourceRecord {
	var out []models.SourceRecord
	for _, row := range t.Rows {
		for _, name := range t.Metrics {
			cell, ok := row.Metrics[name]
			if !ok {
				continue
			}
			out = append(out, models.SourceRecord{
				EntityID:   row.Entity.ID,
				EntityName: row.Entity.Name,
				Metric:     name,
				Value:      cell.Value,
				SourceID:   cell.SourceID,
				Provenance: cell.Provenance,
			})
		}
	}
	return out
}

// Entities returns the entities of a table in row order
func Entities(t *models.Table) []models.Entity {
	out := make([]models.Entity, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, row.Entity)
	}
	return out
}

func copyEntity(e models.Entity) models.Entity {
	out := models.Entity{ID: e.ID, Name: e.Name, Team: e.Team}
	for k, v := range e.Attrs {
		out.SetAttr(k, v)
	}
	return out
}

// mergeIdentity folds a repeated identity (doubleheader) into the existing row.
// Later non-empty values win.
func mergeIdentity(dst *models.Entity, src models.Entity) {
	if dst.ID == "" {
		dst.ID = src.ID
	}
	if src.Team != "" {
		dst.Team = src.Team
	}
	for k, v := range src.Attrs {
		dst.SetAttr(k, v)
	}
}
