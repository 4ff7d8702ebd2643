package merge

import (
	"math"
	"testing"

	"betedge/engine/internal/models"
	"betedge/engine/internal/rating"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRandom replays a fixed sequence of draws
type fixedRandom struct {
	values []float64
	i      int
}

func (f *fixedRandom) Float64() float64 {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

func hrDomain(t *testing.T) *rating.Domain {
	t.Helper()
	d, err := rating.Lookup(rating.MLBHomeRun)
	require.NoError(t, err)
	return d
}

func record(name, id, metric string, v float64, prov models.Provenance) models.SourceRecord {
	return models.SourceRecord{
		EntityID:   id,
		EntityName: name,
		Metric:     metric,
		Value:      v,
		SourceID:   "test",
		Provenance: prov,
	}
}

func TestMerge_JoinsByNameAndImputes(t *testing.T) {
	d := hrDomain(t)
	identities := []models.Entity{
		{Name: "Aaron Judge", Team: "New York Yankees"},
		{Name: "Pete Alonso", Team: "New York Mets"},
	}
	records := []models.SourceRecord{
		record("  aaron   JUDGE ", "", models.MetricBarrelPct, 21.456, models.ProvenanceFetched),
		record("Aaron Judge", "", models.MetricOdds, 280, models.ProvenanceScraped),
	}

	table, report := Reconcile(d, identities, records, &fixedRandom{values: []float64{0.5}})
	require.Equal(t, 2, table.Len())

	judge := table.Rows[0]
	assert.Equal(t, models.Cell{Value: 21.46, Provenance: models.ProvenanceFetched, SourceID: "test"}, judge.Metrics[models.MetricBarrelPct])
	odds, ok := judge.Metric(models.MetricOdds)
	require.True(t, ok)
	assert.Equal(t, 280.0, odds)

	// Exit velo drawn from the middle of [88, 94]
	velo := judge.Metrics[models.MetricExitVelo]
	assert.True(t, velo.Imputed())
	assert.Equal(t, 91.0, velo.Value)

	// Weather falls back to neutral constants
	assert.Equal(t, 0.0, judge.Metrics[models.MetricWindMPH].Value)
	assert.Equal(t, 70.0, judge.Metrics[models.MetricTempF].Value)

	// Odds are never imputed
	_, ok = table.Rows[1].Metric(models.MetricOdds)
	assert.False(t, ok)

	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, []string{models.MetricExitVelo, models.MetricHardHitPct, models.MetricHRFBPct, models.MetricWindMPH, models.MetricTempF},
		judge.ImputedMetrics(table.Layout))
}

func TestMerge_ImputedValuesWithinRange(t *testing.T) {
	d := hrDomain(t)
	identities := []models.Entity{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	table := Merge(d, identities, nil, &fixedRandom{values: []float64{0, 0.999999, 0.25}})

	for _, row := range table.Rows {
		for _, spec := range d.Metrics {
			cell, ok := row.Metrics[spec.Name]
			if spec.Impute.Range == nil {
				continue
			}
			require.True(t, ok)
			assert.True(t, spec.Impute.Range.Contains(cell.Value), "%s=%v", spec.Name, cell.Value)
		}
	}
}

func TestMerge_ProvenancePrecedence(t *testing.T) {
	d := hrDomain(t)
	identities := []models.Entity{{Name: "Mookie Betts"}}

	records := []models.SourceRecord{
		record("Mookie Betts", "", models.MetricBarrelPct, 10, models.ProvenanceFetched),
		record("Mookie Betts", "", models.MetricBarrelPct, 15, models.ProvenanceSimulated),
		record("Mookie Betts", "", models.MetricExitVelo, 90, models.ProvenanceFetched),
		record("Mookie Betts", "", models.MetricExitVelo, 92, models.ProvenanceFetched),
		record("Mookie Betts", "", models.MetricHardHitPct, 30, models.ProvenanceSimulated),
		record("Mookie Betts", "", models.MetricHardHitPct, 35, models.ProvenanceScraped),
	}

	table, report := Reconcile(d, identities, records, &fixedRandom{values: []float64{0.5}})
	row := table.Rows[0]
	assert.Equal(t, 10.0, row.Metrics[models.MetricBarrelPct].Value, "fetched beats simulated")
	assert.Equal(t, 92.0, row.Metrics[models.MetricExitVelo].Value, "last write wins")
	assert.Equal(t, 35.0, row.Metrics[models.MetricHardHitPct].Value, "scraped beats simulated")
	assert.Equal(t, 1, report.Superseded)
}

func TestMerge_JoinsByExternalID(t *testing.T) {
	d := hrDomain(t)
	identities := []models.Entity{
		{ID: "660271", Name: "Shohei Ohtani"},
		{ID: "999", Name: "Will Smith", Team: "Dodgers"},
		{ID: "998", Name: "Will Smith", Team: "Royals"},
	}
	records := []models.SourceRecord{
		// Name differs but the ID matches
		record("Ohtani, Shohei", "660271", models.MetricBarrelPct, 19.9, models.ProvenanceFetched),
		record("Will Smith", "998", models.MetricBarrelPct, 7.5, models.ProvenanceFetched),
		// No ID and two candidates: ambiguous
		record("Will Smith", "", models.MetricExitVelo, 99, models.ProvenanceFetched),
		// Different IDs never join by name
		record("Shohei Ohtani", "123", models.MetricHardHitPct, 60, models.ProvenanceFetched),
	}

	table, report := Reconcile(d, identities, records, &fixedRandom{values: []float64{0.5}})
	require.Equal(t, 3, table.Len())

	assert.Equal(t, 19.9, table.Rows[0].Metrics[models.MetricBarrelPct].Value)
	assert.True(t, table.Rows[0].Metrics[models.MetricHardHitPct].Imputed())
	assert.True(t, table.Rows[1].Metrics[models.MetricBarrelPct].Imputed())
	assert.Equal(t, 7.5, table.Rows[2].Metrics[models.MetricBarrelPct].Value)
	assert.True(t, table.Rows[1].Metrics[models.MetricExitVelo].Imputed())
	assert.True(t, table.Rows[2].Metrics[models.MetricExitVelo].Imputed())

	assert.Equal(t, []string{"will smith"}, report.Ambiguous)
	assert.Equal(t, 1, report.Unmatched)
}

func TestMerge_DiscardsMalformedValues(t *testing.T) {
	d := hrDomain(t)
	identities := []models.Entity{{Name: "Juan Soto"}}
	records := []models.SourceRecord{
		record("Juan Soto", "", models.MetricBarrelPct, math.NaN(), models.ProvenanceFetched),
		record("Juan Soto", "", models.MetricExitVelo, math.Inf(1), models.ProvenanceFetched),
		record("Juan Soto", "", models.MetricHardHitPct, -4, models.ProvenanceFetched),
		// Temperature may be negative, odds too
		record("Juan Soto", "", models.MetricTempF, -3, models.ProvenanceFetched),
		record("Juan Soto", "", models.MetricOdds, -120, models.ProvenanceScraped),
		record("Juan Soto", "", "Stolen Bases", 20, models.ProvenanceFetched),
	}

	table, report := Reconcile(d, identities, records, &fixedRandom{values: []float64{0.5}})
	row := table.Rows[0]
	assert.True(t, row.Metrics[models.MetricBarrelPct].Imputed())
	assert.True(t, row.Metrics[models.MetricExitVelo].Imputed())
	assert.True(t, row.Metrics[models.MetricHardHitPct].Imputed())
	assert.Equal(t, -3.0, row.Metrics[models.MetricTempF].Value)
	assert.Equal(t, -120.0, row.Metrics[models.MetricOdds].Value)
	assert.Equal(t, 3, report.Malformed)
	assert.Equal(t, 1, report.Unknown)
}

func TestMerge_DuplicateIdentitiesCollapse(t *testing.T) {
	d := hrDomain(t)
	identities := []models.Entity{
		{Name: "Pete Alonso", Team: "Mets", Attrs: map[string]string{models.AttrVenue: "Citi Field"}},
		{Name: "Francisco Lindor", Team: "Mets"},
		{Name: "pete alonso", Team: "Mets", Attrs: map[string]string{models.AttrVenue: "Citi Field (G2)"}},
	}
	table := Merge(d, identities, nil, &fixedRandom{values: []float64{0.5}})
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Pete Alonso", table.Rows[0].Entity.Name)
	assert.Equal(t, "Citi Field (G2)", table.Rows[0].Entity.Attr(models.AttrVenue))
}

func TestMerge_Idempotent(t *testing.T) {
	d := hrDomain(t)
	identities := []models.Entity{
		{ID: "1", Name: "Aaron Judge", Team: "Yankees", Attrs: map[string]string{models.AttrBatSide: "R"}},
		{Name: "Juan Soto", Team: "Yankees"},
	}
	records := []models.SourceRecord{
		record("Aaron Judge", "1", models.MetricBarrelPct, 20.123, models.ProvenanceFetched),
		record("Juan Soto", "", models.MetricOdds, 333, models.ProvenanceScraped),
	}

	first := Merge(d, identities, records, rating.NewRandom(42))
	second := Merge(d, Entities(first), Records(first), rating.NewRandom(7))
	assert.Equal(t, first, second)
}

func TestMerge_SeededIsReproducible(t *testing.T) {
	d := hrDomain(t)
	identities := []models.Entity{{Name: "A"}, {Name: "B"}}
	a := Merge(d, identities, nil, rating.NewRandom(42))
	b := Merge(d, identities, nil, rating.NewRandom(42))
	assert.Equal(t, a, b)
}

func TestMerge_NilRandomUsesMidpoint(t *testing.T) {
	d := hrDomain(t)
	table := Merge(d, []models.Entity{{Name: "A"}}, nil, nil)
	assert.Equal(t, 13.0, table.Rows[0].Metrics[models.MetricBarrelPct].Value)
}
