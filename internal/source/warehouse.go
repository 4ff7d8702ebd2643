package source

import (
	"context"
	"fmt"
	"time"

	"betedge/engine/internal/models"
)

// StagedMetricReader reads metrics staged by upstream jobs
type StagedMetricReader interface {
	LatestByDomain(ctx context.Context, domain string, asOf time.Time) ([]*models.StagedMetric, error)
}

// WarehouseAdapter serves staged metrics from the read-only warehouse
type WarehouseAdapter struct {
	reader StagedMetricReader
}

// NewWarehouseAdapter creates a new warehouse adapter
func NewWarehouseAdapter(reader StagedMetricReader) *WarehouseAdapter {
	return &WarehouseAdapter{reader: reader}
}

func (a *WarehouseAdapter) Name() string { return Warehouse }

// Fetch implements Adapter. Metrics staged after the run date are ignored.
func (a *WarehouseAdapter) Fetch(ctx context.Context, scope Scope) (models.Batch, error) {
	asOf := scope.Date.AddDate(0, 0, 1)
	staged, err := a.reader.LatestByDomain(ctx, scope.Domain, asOf)
	if err != nil {
		return models.Batch{Source: Warehouse}, fmt.Errorf("failed to read staged metrics: %w", err)
	}

	records := make([]models.SourceRecord, 0, len(staged))
	for _, sm := range staged {
		records = append(records, sm.ToRecord(Warehouse))
	}
	return models.Batch{
		Source:  Warehouse,
		Records: newEntitySet(scope.Entities).keep(records),
	}, nil
}

func init() {
	Register(Warehouse, func(deps Deps) (Adapter, error) {
		if deps.Warehouse == nil {
			return nil, fmt.Errorf("%w: warehouse not connected", ErrUnavailable)
		}
		return NewWarehouseAdapter(deps.Warehouse), nil
	})
}
