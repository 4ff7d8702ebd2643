// Package rating holds the per-domain weighted formulas and applies them to
// reconciled tables.
package rating

import (
	"fmt"
	"math"

	"betedge/engine/internal/models"
)

// MaxRating is the top of the rating scale
const MaxRating = 10.0

// ratingPrecision is the number of decimals a rating is rounded to
const ratingPrecision = 2

// RandomSource yields uniform draws in [0, 1). *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// Transform maps a metric value before it is weighted
type Transform int

const (
	// Identity uses the value as is
	Identity Transform = iota
	// Inverted uses pivot - value, so lower inputs score higher
	Inverted
)

// Term is one weighted metric of a stage
type Term struct {
	Metric    string
	Weight    float64
	Transform Transform
	Pivot     float64
}

// Value returns the weighted contribution of the term. Missing metrics contribute 0.
func (t Term) Value(row models.Row) float64 {
	v, ok := row.Metric(t.Metric)
	if !ok {
		return 0
	}
	if t.Transform == Inverted {
		v = t.Pivot - v
	}
	return v * t.Weight
}

// Stage groups terms that are summed before the stage weight is applied
type Stage struct {
	Name   string
	Weight float64
	Terms  []Term
}

// Value returns the weighted stage sum
func (s Stage) Value(row models.Row) float64 {
	var sum float64
	for _, term := range s.Terms {
		sum += term.Value(row)
	}
	return sum * s.Weight
}

// Comparison decides when a boost applies
type Comparison int

const (
	Above Comparison = iota
	Below
)

func (c Comparison) String() string {
	if c == Below {
		return "<"
	}
	return ">"
}

// Boost adds a fixed amount when a context metric crosses a threshold.
// A missing metric never triggers a boost.
type Boost struct {
	Metric    string
	When      Comparison
	Threshold float64
	Amount    float64
}

// Applies reports whether the boost triggers for the row
func (b Boost) Applies(row models.Row) bool {
	v, ok := row.Metric(b.Metric)
	if !ok {
		return false
	}
	if b.When == Below {
		return v < b.Threshold
	}
	return v > b.Threshold
}

func (b Boost) String() string {
	return fmt.Sprintf("%s %s %g: +%g", b.Metric, b.When, b.Threshold, b.Amount)
}

// Domain is a complete rating configuration: columns, imputation policy and formula
type Domain struct {
	Key   string
	Title string
	// Attrs are the categorical columns exported for the domain
	Attrs []string
	// Metrics are every numeric column of the domain, formula inputs and context alike
	Metrics []models.MetricSpec
	Stages  []Stage
	Divisor float64
	Boosts  []Boost
	// Floor clamps negative ratings to 0
	Floor bool
	// Live reports whether live sources exist; otherwise only simulation works
	Live bool
	// Sources are the live adapter names of the domain, roster first
	Sources []string
	// Highlights are the metrics shown next to the rating in leaderboards
	Highlights []string
}

// Layout returns the table layout of the domain
func (d *Domain) Layout() models.Layout {
	metrics := make([]string, 0, len(d.Metrics))
	for _, m := range d.Metrics {
		metrics = append(metrics, m.Name)
	}
	return models.Layout{
		Domain:  d.Key,
		Attrs:   append([]string(nil), d.Attrs...),
		Metrics: metrics,
	}
}

// Metric returns the spec of a metric of the domain
func (d *Domain) Metric(name string) (models.MetricSpec, bool) {
	for _, m := range d.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return models.MetricSpec{}, false
}

// Raw returns the unclamped, unrounded formula value
func (d *Domain) Raw(row models.Row) float64 {
	var sum float64
	for _, stage := range d.Stages {
		sum += stage.Value(row)
	}
	divisor := d.Divisor
	if divisor == 0 {
		divisor = 1
	}
	raw := sum / divisor
	for _, boost := range d.Boosts {
		if boost.Applies(row) {
			raw += boost.Amount
		}
	}
	return raw
}

// Rate computes the rating of a row. It is pure: the same metrics always give the
// same rating.
func (d *Domain) Rate(row models.Row) float64 {
	raw := d.Raw(row)
	if math.IsNaN(raw) {
		return 0
	}
	score := math.Min(raw, MaxRating)
	if d.Floor {
		score = math.Max(score, 0)
	}
	return models.Round(score, ratingPrecision)
}

// RateTable returns a copy of the table with every row rated
func (d *Domain) RateTable(t *models.Table) *models.Table {
	out := t.Clone()
	for i := range out.Rows {
		out.Rows[i].Rating = d.Rate(out.Rows[i])
	}
	return out
}

// Validate checks the domain definition is usable
func (d *Domain) Validate() error {
	if d.Key == "" {
		return fmt.Errorf("domain key is required")
	}
	if d.Divisor <= 0 {
		return fmt.Errorf("domain %s: divisor must be positive", d.Key)
	}
	seen := make(map[string]bool, len(d.Metrics))
	for _, m := range d.Metrics {
		if seen[m.Name] {
			return fmt.Errorf("domain %s: duplicate metric %q", d.Key, m.Name)
		}
		seen[m.Name] = true
	}
	for _, stage := range d.Stages {
		for _, term := range stage.Terms {
			if !seen[term.Metric] {
				return fmt.Errorf("domain %s: term references unknown metric %q", d.Key, term.Metric)
			}
			if !d.Floor && !d.nonNegativeTerm(stage, term) {
				return fmt.Errorf("domain %s: term %q can go negative and requires a floor", d.Key, term.Metric)
			}
		}
	}
	for _, boost := range d.Boosts {
		if !seen[boost.Metric] {
			return fmt.Errorf("domain %s: boost references unknown metric %q", d.Key, boost.Metric)
		}
		if !d.Floor && boost.Amount < 0 {
			return fmt.Errorf("domain %s: negative boost on %q requires a floor", d.Key, boost.Metric)
		}
	}
	return nil
}

func (d *Domain) nonNegativeTerm(stage Stage, term Term) bool {
	if term.Transform == Inverted || term.Weight < 0 || stage.Weight < 0 {
		return false
	}
	spec, _ := d.Metric(term.Metric)
	return spec.NonNegative
}
