package models

import (
	"database/sql"
	"time"
)

// StagedMetric is a metric value staged in the warehouse by an upstream job
type StagedMetric struct {
	ID         int            `db:"id"`
	Domain     string         `db:"domain"`
	EntityID   sql.NullString `db:"entity_id"`
	EntityName string         `db:"entity_name"`
	Metric     string         `db:"metric"`
	Value      float64        `db:"value"`
	AsOf       time.Time      `db:"as_of"`
	CreatedAt  time.Time      `db:"created_at"`
}

// ToRecord converts StagedMetric to a source record
func (sm *StagedMetric) ToRecord(sourceID string) SourceRecord {
	rec := SourceRecord{
		EntityName: sm.EntityName,
		Metric:     sm.Metric,
		Value:      sm.Value,
		SourceID:   sourceID,
		Provenance: ProvenanceFetched,
	}
	if sm.EntityID.Valid {
		rec.EntityID = sm.EntityID.String
	}
	return rec
}
