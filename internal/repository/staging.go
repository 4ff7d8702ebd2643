package repository

import (
	"database/sql"
	"fmt"
	"time"

	"betedge/engine/internal/models"
	"betedge/engine/internal/rating"
)

// StagedFromTable turns the observed cells of a table into staged metrics dated
// asOf. Imputed and simulated cells are never staged. Values a metric does not
// accept are skipped and reported.
func StagedFromTable(domain *rating.Domain, t *models.Table, asOf time.Time) ([]*models.StagedMetric, []string) {
	var (
		staged  []*models.StagedMetric
		skipped []string
	)
	for _, row := range t.Rows {
		for _, name := range t.Metrics {
			cell, ok := row.Metrics[name]
			if !ok || cell.Provenance < models.ProvenanceScraped {
				continue
			}
			spec, ok := domain.Metric(name)
			if !ok {
				skipped = append(skipped, fmt.Sprintf("%s: unknown metric %q", row.Entity.Name, name))
				continue
			}
			if !spec.Accepts(cell.Value) {
				skipped = append(skipped, fmt.Sprintf("%s: %s value %v rejected", row.Entity.Name, name, cell.Value))
				continue
			}

			sm := &models.StagedMetric{
				Domain:     domain.Key,
				EntityName: row.Entity.Name,
				Metric:     name,
				Value:      cell.Value,
				AsOf:       asOf,
			}
			if row.Entity.ID != "" {
				sm.EntityID = sql.NullString{String: row.Entity.ID, Valid: true}
			}
			staged = append(staged, sm)
		}
	}
	return staged, skipped
}
