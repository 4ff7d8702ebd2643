package rating

import (
	"errors"
	"fmt"
	"sort"

	"betedge/engine/internal/models"
)

// Domain keys
const (
	MLBHomeRun   = "mlb-hr"
	MLBPrecision = "mlb-precision"
	NBAShotMaker = "nba-shot"
)

// ErrUnknownDomain is returned by Lookup for an unregistered key
var ErrUnknownDomain = errors.New("unknown domain")

func rng(lo, hi float64) *models.Range {
	return &models.Range{Lo: lo, Hi: hi}
}

func uniform(lo, hi float64) models.Imputation {
	return models.Imputation{Range: rng(lo, hi)}
}

func neutral(v float64) models.Imputation {
	return models.Imputation{Neutral: models.Float(v)}
}

var mlbAttrs = []string{
	models.AttrBatSide,
	models.AttrOppPitchHand,
	models.AttrOpponent,
	models.AttrOppPitcher,
	models.AttrVenue,
}

// weather metrics shared by the MLB domains; simulated venues draw from the
// range, real lookups that fail fall back to calm 70°F
var (
	windSpec = models.MetricSpec{
		Name:        models.MetricWindMPH,
		Precision:   1,
		NonNegative: true,
		Impute:      neutral(0),
		Simulate:    rng(2, 20),
	}
	tempSpec = models.MetricSpec{
		Name:      models.MetricTempF,
		Precision: 1,
		Impute:    neutral(70),
		Simulate:  rng(55, 95),
	}
)

// Domains is the registry of every rating domain, keyed by Domain.Key
var Domains = map[string]*Domain{
	MLBHomeRun: {
		Key:   MLBHomeRun,
		Title: "Home Run A.I.",
		Attrs: mlbAttrs,
		Metrics: []models.MetricSpec{
			{Name: models.MetricBarrelPct, Precision: 2, NonNegative: true, Impute: uniform(10, 16)},
			{Name: models.MetricExitVelo, Precision: 2, NonNegative: true, Impute: uniform(88, 94)},
			{Name: models.MetricHardHitPct, Precision: 2, NonNegative: true, Impute: uniform(25, 45)},
			{Name: models.MetricHRFBPct, Precision: 2, NonNegative: true, Impute: uniform(5, 18)},
			windSpec,
			tempSpec,
			{Name: models.MetricOdds, Precision: 0, Simulate: rng(200, 500)},
		},
		Stages: []Stage{
			{
				Name:   "power",
				Weight: 1,
				Terms: []Term{
					{Metric: models.MetricBarrelPct, Weight: 0.4},
					{Metric: models.MetricExitVelo, Weight: 0.2},
					{Metric: models.MetricHardHitPct, Weight: 0.2},
					{Metric: models.MetricHRFBPct, Weight: 0.2},
				},
			},
		},
		Divisor: 10,
		Boosts: []Boost{
			{Metric: models.MetricWindMPH, When: Above, Threshold: 10, Amount: 0.2},
			{Metric: models.MetricTempF, When: Above, Threshold: 80, Amount: 0.2},
			{Metric: models.MetricOdds, When: Below, Threshold: 350, Amount: 0.25},
		},
		Live:       true,
		Sources:    []string{"mlb-roster", "mlb-stats", "statcast", "weather", "odds"},
		Highlights: []string{models.MetricOdds, models.MetricBarrelPct},
	},
	MLBPrecision: {
		Key:   MLBPrecision,
		Title: "Precision HR A.I.",
		Attrs: mlbAttrs,
		Metrics: []models.MetricSpec{
			{Name: models.MetricBarrelPct, Precision: 2, NonNegative: true, Impute: uniform(8, 14)},
			{Name: models.MetricExitVelo, Precision: 2, NonNegative: true, Impute: uniform(87, 94)},
			windSpec,
			tempSpec,
		},
		Stages: []Stage{
			{
				Name:   "power",
				Weight: 1,
				Terms: []Term{
					{Metric: models.MetricBarrelPct, Weight: 0.5},
					{Metric: models.MetricExitVelo, Weight: 0.3},
				},
			},
		},
		Divisor: 10,
		Boosts: []Boost{
			{Metric: models.MetricWindMPH, When: Above, Threshold: 12, Amount: 0.3},
			{Metric: models.MetricTempF, When: Above, Threshold: 78, Amount: 0.3},
		},
		Live:       true,
		Sources:    []string{"mlb-roster", "statcast", "weather"},
		Highlights: []string{models.MetricBarrelPct, models.MetricExitVelo},
	},
	NBAShotMaker: {
		Key:   NBAShotMaker,
		Title: "Shot-Maker Index",
		Attrs: []string{models.AttrOpponent},
		Metrics: []models.MetricSpec{
			{Name: models.MetricUsagePct, Precision: 1, NonNegative: true, Impute: uniform(28, 36)},
			{Name: models.MetricOppDefRating, Precision: 0, NonNegative: true, Impute: uniform(105, 120)},
			{Name: models.MetricPPGLast3, Precision: 0, NonNegative: true, Impute: uniform(20, 42)},
			{Name: models.MetricMinutes, Precision: 0, NonNegative: true, Impute: uniform(28, 39)},
			{Name: models.MetricThreesPerGame, Precision: 1, NonNegative: true, Impute: uniform(2, 5)},
			{Name: models.MetricFGAPerGame, Precision: 1, NonNegative: true, Impute: uniform(15, 25)},
		},
		Stages: []Stage{
			{
				Name:   "scoring",
				Weight: 1,
				Terms: []Term{
					{Metric: models.MetricUsagePct, Weight: 0.3},
					{Metric: models.MetricPPGLast3, Weight: 0.2},
					{Metric: models.MetricMinutes, Weight: 0.1},
					{Metric: models.MetricThreesPerGame, Weight: 0.2},
				},
			},
			{
				Name:   "matchup",
				Weight: 1,
				Terms: []Term{
					{Metric: models.MetricOppDefRating, Weight: 0.2, Transform: Inverted, Pivot: 130},
				},
			},
		},
		Divisor:    10,
		Floor:      true,
		Highlights: []string{models.MetricUsagePct, models.MetricPPGLast3},
	},
}

// Lookup returns the domain registered under key
func Lookup(key string) (*Domain, error) {
	d, ok := Domains[key]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownDomain, key, Keys())
	}
	return d, nil
}

// Keys returns the registered domain keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(Domains))
	for k := range Domains {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
