package models

import (
	"strconv"
	"strings"
)

// HittingStatsResponse is the MLB Stats API stats payload for group=hitting
type HittingStatsResponse struct {
	Stats []struct {
		Splits []HittingSplit `json:"splits"`
	} `json:"stats"`
}

// HittingSplit is one player's hitting line
type HittingSplit struct {
	Player PersonRef        `json:"player"`
	Team   TeamRef          `json:"team"`
	Stat   HittingStatInput `json:"stat"`
}

// HittingStatInput holds the counting stats used to derive power proxies
type HittingStatInput struct {
	AtBats   *int `json:"atBats,omitempty"`
	Doubles  *int `json:"doubles,omitempty"`
	Triples  *int `json:"triples,omitempty"`
	HomeRuns *int `json:"homeRuns,omitempty"`
}

// Splits flattens every stat group
func (r *HittingStatsResponse) Splits() []HittingSplit {
	var out []HittingSplit
	for _, group := range r.Stats {
		out = append(out, group.Splits...)
	}
	return out
}

// ToRecords converts a hitting split to source records.
//
// Hard Hit % is approximated by extra-base hits per at-bat and HR/FB % by home runs
// per at-bat. Players without at-bats produce no records and are left to imputation.
func (hs *HittingSplit) ToRecords(sourceID string) []SourceRecord {
	name := strings.TrimSpace(hs.Player.FullName)
	if name == "" || hs.Stat.AtBats == nil || *hs.Stat.AtBats <= 0 {
		return nil
	}

	ab := float64(*hs.Stat.AtBats)
	hr := intOrZero(hs.Stat.HomeRuns)
	xbh := intOrZero(hs.Stat.Doubles) + intOrZero(hs.Stat.Triples) + hr

	id := ""
	if hs.Player.ID != 0 {
		id = strconv.Itoa(hs.Player.ID)
	}

	return []SourceRecord{
		{
			EntityID:   id,
			EntityName: name,
			Metric:     MetricHardHitPct,
			Value:      float64(xbh) / ab * 100,
			SourceID:   sourceID,
			Provenance: ProvenanceFetched,
		},
		{
			EntityID:   id,
			EntityName: name,
			Metric:     MetricHRFBPct,
			Value:      float64(hr) / ab * 100,
			SourceID:   sourceID,
			Provenance: ProvenanceFetched,
		},
	}
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// StatcastRow is one row of the Baseball Savant exit velocity & barrels leaderboard
type StatcastRow struct {
	PlayerID    string
	Name        string
	AvgHitSpeed *float64
	BarrelPct   *float64
	HardHitPct  *float64
}

// ToRecords converts a leaderboard row to source records, skipping empty cells
func (sr *StatcastRow) ToRecords(sourceID string) []SourceRecord {
	if strings.TrimSpace(sr.Name) == "" {
		return nil
	}

	var records []SourceRecord
	add := func(metric string, v *float64) {
		if v == nil {
			return
		}
		records = append(records, SourceRecord{
			EntityID:   sr.PlayerID,
			EntityName: sr.Name,
			Metric:     metric,
			Value:      *v,
			SourceID:   sourceID,
			Provenance: ProvenanceFetched,
		})
	}

	add(MetricBarrelPct, sr.BarrelPct)
	add(MetricExitVelo, sr.AvgHitSpeed)
	add(MetricHardHitPct, sr.HardHitPct)
	return records
}

// SavantName converts "Last, First" into "First Last"
func SavantName(raw string) string {
	raw = strings.TrimSpace(raw)
	last, first, ok := strings.Cut(raw, ",")
	if !ok {
		return raw
	}
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
