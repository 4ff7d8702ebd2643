package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"betedge/engine/internal/client"
	"betedge/engine/internal/config"
	"betedge/engine/internal/models"
	"betedge/engine/internal/query"
	"betedge/engine/internal/rating"
	"betedge/engine/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAdapter returns a canned batch or error
type stubAdapter struct {
	name  string
	batch models.Batch
	err   error
	calls int
	scope source.Scope
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(_ context.Context, scope source.Scope) (models.Batch, error) {
	s.calls++
	s.scope = scope
	if s.err != nil {
		return models.Batch{Source: s.name}, s.err
	}
	return s.batch, nil
}

func hrDomain(t *testing.T) *rating.Domain {
	t.Helper()
	d, err := rating.Lookup(rating.MLBHomeRun)
	require.NoError(t, err)
	return d
}

func fetched(name, metric string, v float64) models.SourceRecord {
	return models.SourceRecord{EntityName: name, Metric: metric, Value: v, SourceID: "stub", Provenance: models.ProvenanceFetched}
}

func roster(records ...models.SourceRecord) *stubAdapter {
	return &stubAdapter{
		name: "roster",
		batch: models.Batch{
			Source: "roster",
			Entities: []models.Entity{
				{ID: "1", Name: "Aaron Judge", Team: "NYY"},
				{ID: "2", Name: "Juan Soto", Team: "NYY"},
			},
			Records: records,
		},
	}
}

func testOptions(t *testing.T) Options {
	return Options{
		Domain: hrDomain(t),
		Date:   time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC),
		Season: 2024,
	}
}

func TestExecute_RatesRoster(t *testing.T) {
	r := roster(
		fetched("Aaron Judge", models.MetricBarrelPct, 12),
		fetched("Aaron Judge", models.MetricExitVelo, 90),
		fetched("Aaron Judge", models.MetricHardHitPct, 40),
		fetched("Aaron Judge", models.MetricHRFBPct, 15),
	)

	result, err := Execute(context.Background(), []source.Adapter{r}, testOptions(t), rating.NewRandom(1))
	require.NoError(t, err)

	require.Equal(t, 2, result.Rated.Len())
	assert.Equal(t, "Aaron Judge", result.Rated.Rows[0].Entity.Name)
	assert.InDelta(t, 3.38, result.Rated.Rows[0].Rating, 1e-9)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 4, result.Report.Applied)
	assert.Empty(t, result.Warnings)

	for _, row := range result.Rated.Rows {
		assert.GreaterOrEqual(t, row.Rating, 0.0)
		assert.LessOrEqual(t, row.Rating, 10.0)
	}
}

func TestExecute_LiveValueBeatsStagedValue(t *testing.T) {
	warehouse := &stubAdapter{
		name: source.Warehouse,
		batch: models.Batch{
			Source:  source.Warehouse,
			Records: []models.SourceRecord{fetched("Aaron Judge", models.MetricBarrelPct, 8)},
		},
	}
	statcast := &stubAdapter{
		name: source.Statcast,
		batch: models.Batch{
			Source:  source.Statcast,
			Records: []models.SourceRecord{fetched("Aaron Judge", models.MetricBarrelPct, 19.5)},
		},
	}

	names, err := source.Plan(hrDomain(t), false, true)
	require.NoError(t, err)
	require.Equal(t, source.Warehouse, names[1])

	adapters := []source.Adapter{roster(), warehouse, statcast}
	result, err := Execute(context.Background(), adapters, testOptions(t), rating.NewRandom(1))
	require.NoError(t, err)

	for _, row := range result.Rated.Rows {
		if row.Entity.Name == "Aaron Judge" {
			assert.Equal(t, 19.5, row.Metrics[models.MetricBarrelPct].Value)
			return
		}
	}
	t.Fatal("Aaron Judge not rated")
}

func TestExecute_FailedSourceIsImputed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := client.NewClient(client.Options{Timeout: time.Second, MaxRetries: 0})
	stats := source.NewStatsAdapter(c, server.URL)

	r := roster(
		fetched("Aaron Judge", models.MetricBarrelPct, 12),
		fetched("Aaron Judge", models.MetricExitVelo, 90),
	)

	result, err := Execute(context.Background(), []source.Adapter{r, stats}, testOptions(t), rating.NewRandom(1))
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], source.MLBStats)

	for _, row := range result.Rated.Rows {
		hardHit := row.Metrics[models.MetricHardHitPct]
		assert.True(t, hardHit.Imputed(), row.Entity.Name)
		assert.GreaterOrEqual(t, hardHit.Value, 25.0)
		assert.LessOrEqual(t, hardHit.Value, 45.0)
		assert.True(t, row.Metrics[models.MetricHRFBPct].Imputed())
	}
	assert.Equal(t, 2, result.Report.Imputed[models.MetricHardHitPct])
}

func TestExecute_EnrichmentSeesRoster(t *testing.T) {
	r := roster()
	enrich := &stubAdapter{name: "enrich", batch: models.Batch{Records: []models.SourceRecord{
		fetched("Juan Soto", models.MetricBarrelPct, 15),
	}}}

	result, err := Execute(context.Background(), []source.Adapter{r, enrich}, testOptions(t), rating.NewRandom(1))
	require.NoError(t, err)

	assert.Empty(t, r.scope.Entities)
	assert.Len(t, enrich.scope.Entities, 2)
	assert.Equal(t, 2024, enrich.scope.Season)

	cell := result.Rated.Rows[1].Metrics[models.MetricBarrelPct]
	assert.Equal(t, 15.0, cell.Value)
	assert.Equal(t, models.ProvenanceFetched, cell.Provenance)
}

func TestExecute_NoData(t *testing.T) {
	t.Run("roster error", func(t *testing.T) {
		r := &stubAdapter{name: "roster", err: errors.New("boom")}
		_, err := Execute(context.Background(), []source.Adapter{r}, testOptions(t), nil)
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("empty roster", func(t *testing.T) {
		r := &stubAdapter{name: "roster"}
		enrich := &stubAdapter{name: "enrich"}
		_, err := Execute(context.Background(), []source.Adapter{r, enrich}, testOptions(t), nil)
		assert.ErrorIs(t, err, ErrNoData)
		assert.Zero(t, enrich.calls)
	})

	t.Run("no adapters", func(t *testing.T) {
		_, err := Execute(context.Background(), nil, testOptions(t), nil)
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestExecute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enrich := &stubAdapter{name: "enrich"}
	_, err := Execute(ctx, []source.Adapter{roster(), enrich}, testOptions(t), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, enrich.calls)
}

func TestExecute_FilterAndLeaderboard(t *testing.T) {
	r := &stubAdapter{name: "roster", batch: models.Batch{
		Entities: []models.Entity{
			{Name: "Low", Team: "NYY"},
			{Name: "High", Team: "LAD"},
			{Name: "Mid", Team: "NYY"},
		},
		Records: []models.SourceRecord{
			fetched("Low", models.MetricBarrelPct, 5),
			fetched("High", models.MetricBarrelPct, 25),
			fetched("Mid", models.MetricBarrelPct, 15),
		},
	}}

	opts := testOptions(t)
	opts.Criteria = query.Criteria{Teams: []string{"nyy"}}
	opts.Top = 1

	// midpoint imputation keeps every other metric equal across rows
	result, err := Execute(context.Background(), []source.Adapter{r}, opts, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Rated.Len())
	require.Equal(t, 2, result.Filtered.Len())
	assert.Equal(t, "Low", result.Filtered.Rows[0].Entity.Name)
	require.Equal(t, 1, result.Leaderboard.Len())
	assert.Equal(t, "Mid", result.Leaderboard.Rows[0].Entity.Name)
}

func testConfig() *config.Config {
	return &config.Config{
		CacheBackend: config.CacheNone,
		HTTPTimeout:  time.Second,
		RandomSeed:   42,
	}
}

func TestRunner_SimulatedRunsAreReproducible(t *testing.T) {
	runner, err := NewRunner(context.Background(), testConfig())
	require.NoError(t, err)
	defer runner.Close()

	nba, err := rating.Lookup(rating.NBAShotMaker)
	require.NoError(t, err)
	opts := Options{Domain: nba, Simulate: true, Date: time.Now()}

	first, err := runner.Run(context.Background(), opts)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), opts)
	require.NoError(t, err)

	require.Equal(t, len(source.Fixtures[rating.NBAShotMaker]), first.Rated.Len())
	require.Equal(t, first.Rated.Len(), second.Rated.Len())
	for i := range first.Rated.Rows {
		assert.Equal(t, first.Rated.Rows[i].Rating, second.Rated.Rows[i].Rating)
		assert.GreaterOrEqual(t, first.Rated.Rows[i].Rating, 0.0)
		assert.LessOrEqual(t, first.Rated.Rows[i].Rating, 10.0)
	}
}

func TestRunner_LiveWithoutSourcesIsNoData(t *testing.T) {
	runner, err := NewRunner(context.Background(), testConfig())
	require.NoError(t, err)
	defer runner.Close()

	nba, err := rating.Lookup(rating.NBAShotMaker)
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), Options{Domain: nba, Date: time.Now()})
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorIs(t, err, source.ErrUnavailable)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Domain = rating.MLBPrecision
	cfg.RunDate = "2024-05-01"
	cfg.MinRating = 4.5
	cfg.Teams = []string{"NYY"}
	cfg.TopN = 3

	opts, err := OptionsFromConfig(cfg, time.Now())
	require.NoError(t, err)
	assert.Equal(t, rating.MLBPrecision, opts.Domain.Key)
	assert.Equal(t, "2024-05-01", opts.Date.Format(config.DateLayout))
	assert.Equal(t, 2024, opts.Season)
	assert.Equal(t, 4.5, opts.Criteria.MinRating)
	assert.Equal(t, 3, opts.Top)

	cfg.Domain = "nhl"
	_, err = OptionsFromConfig(cfg, time.Now())
	assert.ErrorIs(t, err, rating.ErrUnknownDomain)
}
