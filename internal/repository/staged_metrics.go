package repository

import (
	"context"
	"fmt"
	"time"

	"betedge/engine/internal/metrics"
	"betedge/engine/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// Schema is the DDL of the staged metrics table, owned by the upstream loaders
const Schema = `
	CREATE TABLE IF NOT EXISTS staged_metrics (
		id          SERIAL PRIMARY KEY,
		domain      TEXT NOT NULL,
		entity_id   TEXT,
		entity_name TEXT NOT NULL,
		metric      TEXT NOT NULL,
		value       DOUBLE PRECISION NOT NULL,
		as_of       TIMESTAMPTZ NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_staged_metrics_domain_as_of ON staged_metrics (domain, as_of);
`

// StagedMetricRepository reads metrics staged by upstream jobs
type StagedMetricRepository struct {
	db *Database
}

// LatestByDomain returns, for each entity and metric of the domain, the most recent
// value staged strictly before asOf
func (r *StagedMetricRepository) LatestByDomain(ctx context.Context, domain string, asOf time.Time) ([]*models.StagedMetric, error) {
	query := `
		SELECT DISTINCT ON (COALESCE(entity_id, lower(entity_name)), metric)
			id, domain, entity_id, entity_name, metric, value, as_of, created_at
		FROM staged_metrics
		WHERE domain = $1 AND as_of < $2
		ORDER BY COALESCE(entity_id, lower(entity_name)), metric, as_of DESC, id DESC
	`

	start := time.Now()
	rows, err := r.db.Pool.Query(ctx, query, domain, asOf)
	if err != nil {
		metrics.RecordDBQuery("select", "staged_metrics", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to query staged metrics: %w", err)
	}

	staged, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.StagedMetric])
	if err != nil {
		metrics.RecordDBQuery("select", "staged_metrics", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to scan staged metrics: %w", err)
	}
	metrics.RecordDBQuery("select", "staged_metrics", "success", time.Since(start).Seconds())

	log.Debug().
		Str("domain", domain).
		Time("as_of", asOf).
		Int("count", len(staged)).
		Msg("Loaded staged metrics")

	return staged, nil
}

// Stage inserts a staged metric. The engine never writes; loaders and tests do.
func (r *StagedMetricRepository) Stage(ctx context.Context, sm *models.StagedMetric) error {
	query := `
		INSERT INTO staged_metrics (domain, entity_id, entity_name, metric, value, as_of)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		sm.Domain, sm.EntityID, sm.EntityName, sm.Metric, sm.Value, sm.AsOf,
	).Scan(&sm.ID, &sm.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to stage metric: %w", err)
	}

	return nil
}

// EnsureSchema creates the staged metrics table when it is missing
func (r *StagedMetricRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create staged_metrics: %w", err)
	}
	return nil
}

// StageAll copies every metric in one transaction; either all rows land or none
func (r *StagedMetricRepository) StageAll(ctx context.Context, staged []*models.StagedMetric) (int64, error) {
	if len(staged) == 0 {
		return 0, nil
	}

	start := time.Now()
	var copied int64
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		n, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"staged_metrics"},
			[]string{"domain", "entity_id", "entity_name", "metric", "value", "as_of"},
			pgx.CopyFromSlice(len(staged), func(i int) ([]any, error) {
				sm := staged[i]
				return []any{sm.Domain, sm.EntityID, sm.EntityName, sm.Metric, sm.Value, sm.AsOf}, nil
			}),
		)
		copied = n
		return err
	})
	if err != nil {
		metrics.RecordDBQuery("copy", "staged_metrics", "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("failed to stage metrics: %w", err)
	}
	metrics.RecordDBQuery("copy", "staged_metrics", "success", time.Since(start).Seconds())

	return copied, nil
}
