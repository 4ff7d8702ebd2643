// Package pipeline runs one rating pass: roster, enrichment, merge, rate, filter.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"betedge/engine/internal/merge"
	"betedge/engine/internal/metrics"
	"betedge/engine/internal/models"
	"betedge/engine/internal/query"
	"betedge/engine/internal/rating"
	"betedge/engine/internal/source"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNoData is returned when the scope has nothing to rate: no games, an empty
// roster, or a domain whose live feed is not connected
var ErrNoData = errors.New("no data for scope")

// Options describe one run
type Options struct {
	// RunID tags the logs of the run; one is generated when empty
	RunID        string
	Domain       *rating.Domain
	Simulate     bool
	Date         time.Time
	Season       int
	LookbackDays int
	Criteria     query.Criteria
	// Top limits the leaderboard; 0 keeps every filtered row
	Top int
}

// Result is the outcome of a run
type Result struct {
	RunID    string
	Domain   *rating.Domain
	Date     time.Time
	Simulate bool
	// Rated holds every row, rated, in roster order
	Rated *models.Table
	// Filtered holds the rows passing the criteria, in roster order
	Filtered *models.Table
	// Leaderboard is Filtered sorted by rating and cut to Options.Top
	Leaderboard *models.Table
	Warnings    []string
	Report      merge.Report
	Duration    time.Duration
}

// Execute runs the adapters in order and rates the result. The first adapter
// supplies the roster; its failure or an empty roster ends the run with ErrNoData.
// Failures of later adapters become warnings and their metrics are imputed.
func Execute(ctx context.Context, adapters []source.Adapter, opts Options, rng rating.RandomSource) (*Result, error) {
	if opts.Domain == nil {
		return nil, errors.New("domain is required")
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("%w: no sources configured", ErrNoData)
	}

	start := time.Now()
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	result := &Result{
		RunID:    runID,
		Domain:   opts.Domain,
		Date:     opts.Date,
		Simulate: opts.Simulate,
	}
	domainKey := opts.Domain.Key

	scope := source.Scope{
		Domain:       domainKey,
		Date:         opts.Date,
		LookbackDays: opts.LookbackDays,
		Season:       opts.Season,
	}

	log.Info().
		Str("run_id", result.RunID).
		Str("domain", domainKey).
		Str("date", opts.Date.Format("2006-01-02")).
		Bool("simulate", opts.Simulate).
		Int("sources", len(adapters)).
		Msg("Starting run")

	roster := adapters[0]
	batch, err := roster.Fetch(ctx, scope)
	if err != nil {
		metrics.RecordSourceFetch(roster.Name(), "error", 0)
		metrics.RecordRun(domainKey, "no_data", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: roster source %s failed: %w", ErrNoData, roster.Name(), err)
	}
	metrics.RecordSourceFetch(roster.Name(), "success", len(batch.Records))
	result.Warnings = append(result.Warnings, prefixed(roster.Name(), batch.Warnings)...)

	if len(batch.Entities) == 0 {
		metrics.RecordRun(domainKey, "no_data", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %s returned no entities for %s", ErrNoData, roster.Name(), opts.Date.Format("2006-01-02"))
	}

	entities := batch.Entities
	records := append([]models.SourceRecord(nil), batch.Records...)
	scope.Entities = entities

	log.Info().
		Str("source", roster.Name()).
		Int("entities", len(entities)).
		Int("records", len(batch.Records)).
		Msg("Roster loaded")

	// Adapters run one at a time; per-request pacing lives in the shared client
	for _, a := range adapters[1:] {
		if err := ctx.Err(); err != nil {
			metrics.RecordRun(domainKey, "cancelled", time.Since(start).Seconds())
			return nil, err
		}

		b, err := a.Fetch(ctx, scope)
		if err != nil {
			warning := fmt.Sprintf("%s: %v", a.Name(), err)
			result.Warnings = append(result.Warnings, warning)
			metrics.RecordSourceFetch(a.Name(), "error", 0)
			metrics.RecordError("source", a.Name())
			log.Warn().
				Err(err).
				Str("source", a.Name()).
				Msg("Source unavailable, its metrics will be imputed")
			continue
		}

		metrics.RecordSourceFetch(a.Name(), "success", len(b.Records))
		result.Warnings = append(result.Warnings, prefixed(a.Name(), b.Warnings)...)
		records = append(records, b.Records...)
		if len(b.Entities) > 0 {
			log.Debug().Str("source", a.Name()).Int("entities", len(b.Entities)).Msg("Ignoring entities from enrichment source")
		}

		log.Info().
			Str("source", a.Name()).
			Int("records", len(b.Records)).
			Msg("Source fetched")
	}

	for _, w := range result.Warnings {
		log.Warn().Str("run_id", result.RunID).Msg(w)
	}

	table, report := merge.Reconcile(opts.Domain, entities, records, rng)
	result.Report = report
	for metric, n := range report.Imputed {
		for i := 0; i < n; i++ {
			metrics.RecordImputation(domainKey, metric)
		}
	}

	result.Rated = opts.Domain.RateTable(table)
	result.Filtered = query.Filter(result.Rated, opts.Criteria.Predicates()...)
	result.Leaderboard = query.TopN(result.Filtered, opts.Top)
	result.Duration = time.Since(start)

	metrics.UpdateRowsRated(domainKey, result.Rated.Len())
	metrics.RecordRun(domainKey, "success", result.Duration.Seconds())

	log.Info().
		Str("run_id", result.RunID).
		Str("domain", domainKey).
		Int("rows", result.Rated.Len()).
		Int("filtered", result.Filtered.Len()).
		Int("applied", report.Applied).
		Int("imputed", report.ImputedTotal()).
		Int("warnings", len(result.Warnings)).
		Dur("duration", result.Duration).
		Msg("Run complete")

	return result, nil
}

func prefixed(name string, warnings []string) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, name+": "+w)
	}
	return out
}
