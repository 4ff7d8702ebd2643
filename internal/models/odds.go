package models

import (
	"strconv"
	"strings"
)

// OddsLine is a single player price, e.g. an anytime home run prop
type OddsLine struct {
	Player string
	Price  float64
}

// ParseAmericanOdds parses prices such as "+280", "-115", "280" or "EVEN"
func ParseAmericanOdds(raw string) (float64, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "")
	switch s {
	case "":
		return 0, false
	case "EVEN", "EV", "EVS":
		return 100, true
	}

	s = strings.TrimPrefix(s, "+")
	// Unicode minus sign shows up on some pages
	s = strings.ReplaceAll(s, "−", "-")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	// American odds never sit strictly between -100 and +100
	if v > -100 && v < 100 {
		return 0, false
	}
	return v, true
}

// ToRecord converts the line to a source record
func (ol OddsLine) ToRecord(sourceID string, prov Provenance) SourceRecord {
	return SourceRecord{
		EntityName: ol.Player,
		Metric:     MetricOdds,
		Value:      ol.Price,
		SourceID:   sourceID,
		Provenance: prov,
	}
}
