package models

import (
	"strings"
)

// Categorical attribute names exported as columns
const (
	AttrBatSide      = "Bats"
	AttrOppPitchHand = "Opp P Hand"
	AttrOpponent     = "Opponent"
	AttrVenue        = "Venue"
	AttrOppPitcher   = "Opp Pitcher"
)

// Internal attributes used by adapters, never exported
const (
	AttrVenueCity = "venue_city"
	AttrVenueLat  = "venue_lat"
	AttrVenueLon  = "venue_lon"
	AttrGamePk    = "game_pk"
)

// HandSwitch marks a switch hitter; it never matches a pitcher hand
const HandSwitch = "S"

// Fixed export columns
const (
	NameColumn   = "Player"
	TeamColumn   = "Team"
	IDColumn     = "ID"
	RatingColumn = "Rating"
	sourceSuffix = " Source"
)

// Entity represents an athlete taking part in a run
type Entity struct {
	// ID is the upstream stable identifier, empty when the source has none
	ID    string
	Name  string
	Team  string
	Attrs map[string]string
}

// Key returns the normalized join key for the entity
func (e Entity) Key() string {
	return NormalizeName(e.Name)
}

// Attr returns a categorical attribute or "" when absent
func (e Entity) Attr(name string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[name]
}

// SetAttr sets a categorical attribute, ignoring empty values
func (e *Entity) SetAttr(name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[name] = value
}

// clone returns a deep copy so tables never share attribute maps
func (e Entity) clone() Entity {
	out := e
	if e.Attrs != nil {
		out.Attrs = make(map[string]string, len(e.Attrs))
		for k, v := range e.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

// NormalizeName case-folds a display name, trims it and collapses inner whitespace.
// Punctuation and suffixes are left untouched, so "J.D. Martinez" and "JD Martinez"
// do not match.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
