package repository

import (
	"bytes"
	"math"
	"testing"
	"time"

	"betedge/engine/internal/merge"
	"betedge/engine/internal/models"
	"betedge/engine/internal/query"
	"betedge/engine/internal/rating"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagedFromTable(t *testing.T) {
	d, err := rating.Lookup(rating.MLBPrecision)
	require.NoError(t, err)

	table := models.NewTable(d.Layout())
	table.Rows = []models.Row{
		{
			Entity: models.Entity{ID: "592450", Name: "Aaron Judge", Team: "NYY"},
			Metrics: map[string]models.Cell{
				models.MetricBarrelPct: {Value: 19.5, Provenance: models.ProvenanceFetched},
				models.MetricExitVelo:  {Value: 91, Provenance: models.ProvenanceImputed},
				models.MetricWindMPH:   {Value: 8, Provenance: models.ProvenanceSimulated},
			},
		},
		{
			Entity: models.Entity{Name: "Pete Alonso", Team: "NYM"},
			Metrics: map[string]models.Cell{
				models.MetricBarrelPct: {Value: -3, Provenance: models.ProvenanceFetched},
				models.MetricExitVelo:  {Value: math.NaN(), Provenance: models.ProvenanceScraped},
				models.MetricTempF:     {Value: 71, Provenance: models.ProvenanceScraped},
			},
		},
	}

	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	staged, skipped := StagedFromTable(d, table, asOf)

	require.Len(t, staged, 2)
	assert.Equal(t, "592450", staged[0].EntityID.String)
	assert.True(t, staged[0].EntityID.Valid)
	assert.Equal(t, models.MetricBarrelPct, staged[0].Metric)
	assert.Equal(t, rating.MLBPrecision, staged[0].Domain)
	assert.Equal(t, asOf, staged[0].AsOf)

	assert.False(t, staged[1].EntityID.Valid)
	assert.Equal(t, models.MetricTempF, staged[1].Metric)
	assert.Equal(t, 71.0, staged[1].Value)

	assert.Len(t, skipped, 2)
}

func TestStagedFromTable_PlainExportStagesNothing(t *testing.T) {
	d, err := rating.Lookup(rating.MLBPrecision)
	require.NoError(t, err)

	identities := []models.Entity{{ID: "592450", Name: "Aaron Judge", Team: "NYY"}}
	table := merge.Merge(d, identities, nil, nil)
	require.Equal(t, 1, table.Len())

	var buf bytes.Buffer
	require.NoError(t, query.WriteCSV(&buf, table, false))

	parsed, err := query.ReadCSVAs(bytes.NewReader(buf.Bytes()), d.Layout(), models.ProvenanceImputed)
	require.NoError(t, err)
	require.NotEmpty(t, parsed.Rows[0].Metrics)

	staged, skipped := StagedFromTable(d, parsed, time.Now())
	assert.Empty(t, staged)
	assert.Empty(t, skipped)
}

func TestStagedFromTable_DebugExportKeepsObserved(t *testing.T) {
	d, err := rating.Lookup(rating.MLBPrecision)
	require.NoError(t, err)

	identities := []models.Entity{{ID: "592450", Name: "Aaron Judge", Team: "NYY"}}
	records := []models.SourceRecord{{
		EntityID:   "592450",
		EntityName: "Aaron Judge",
		Metric:     models.MetricBarrelPct,
		Value:      19.5,
		SourceID:   "statcast",
		Provenance: models.ProvenanceFetched,
	}}
	table := merge.Merge(d, identities, records, nil)

	var buf bytes.Buffer
	require.NoError(t, query.WriteCSV(&buf, table, true))

	parsed, err := query.ReadCSVAs(bytes.NewReader(buf.Bytes()), d.Layout(), models.ProvenanceImputed)
	require.NoError(t, err)

	staged, _ := StagedFromTable(d, parsed, time.Now())
	require.Len(t, staged, 1)
	assert.Equal(t, models.MetricBarrelPct, staged[0].Metric)
	assert.Equal(t, 19.5, staged[0].Value)
}
