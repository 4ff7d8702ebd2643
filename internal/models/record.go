package models

import (
	"fmt"
	"math"
)

// Provenance ranks where a metric value came from. Higher values win at merge.
type Provenance int

const (
	ProvenanceImputed Provenance = iota
	ProvenanceSimulated
	ProvenanceScraped
	ProvenanceFetched
)

var provenanceNames = map[Provenance]string{
	ProvenanceImputed:   "imputed",
	ProvenanceSimulated: "simulated",
	ProvenanceScraped:   "scraped",
	ProvenanceFetched:   "fetched",
}

func (p Provenance) String() string {
	if name, ok := provenanceNames[p]; ok {
		return name
	}
	return fmt.Sprintf("provenance(%d)", int(p))
}

// ParseProvenance is the inverse of Provenance.String
func ParseProvenance(s string) (Provenance, error) {
	for p, name := range provenanceNames {
		if name == s {
			return p, nil
		}
	}
	return ProvenanceImputed, fmt.Errorf("unknown provenance %q", s)
}

// SourceRecord is one metric value reported by an adapter for one entity
type SourceRecord struct {
	EntityID   string
	EntityName string
	Metric     string
	Value      float64
	SourceID   string
	Provenance Provenance
}

// Key returns the normalized name key of the record
func (r SourceRecord) Key() string {
	return NormalizeName(r.EntityName)
}

// Batch is the output of a single adapter fetch
type Batch struct {
	Source   string
	Entities []Entity
	Records  []SourceRecord
	// Warnings are soft problems that did not fail the fetch, such as a missing
	// credential or one failed sub-request
	Warnings []string
}

// Empty reports whether the batch carries nothing
func (b Batch) Empty() bool {
	return len(b.Entities) == 0 && len(b.Records) == 0
}

// Range is an inclusive numeric interval
type Range struct {
	Lo float64
	Hi float64
}

// Contains reports whether v lies in the range
func (r Range) Contains(v float64) bool {
	return v >= r.Lo && v <= r.Hi
}

// Imputation describes how a missing metric is filled. A nil Range and nil Neutral
// leave the metric missing.
type Imputation struct {
	Range   *Range
	Neutral *float64
}

// Enabled reports whether the metric is imputed at all
func (i Imputation) Enabled() bool {
	return i.Range != nil || i.Neutral != nil
}

// MetricSpec describes one numeric column of a domain
type MetricSpec struct {
	Name        string
	Precision   int
	NonNegative bool
	Impute      Imputation
	// Simulate is the range used by simulation fixtures; falls back to Impute.Range
	Simulate *Range
}

// Accepts reports whether v is a well-formed value for the metric
func (m MetricSpec) Accepts(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if m.NonNegative && v < 0 {
		return false
	}
	return true
}

// SimulationRange returns the range fixtures draw from, if any
func (m MetricSpec) SimulationRange() (Range, bool) {
	if m.Simulate != nil {
		return *m.Simulate, true
	}
	if m.Impute.Range != nil {
		return *m.Impute.Range, true
	}
	return Range{}, false
}

// Round rounds v to the given number of decimal places
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// Float is a small helper for neutral imputation values
func Float(v float64) *float64 {
	return &v
}
