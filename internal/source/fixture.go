package source

import (
	"context"
	"fmt"

	"betedge/engine/internal/models"
	"betedge/engine/internal/rating"
)

// fixtureEntity is one simulated roster line
type fixtureEntity struct {
	Name     string
	Team     string
	Opponent string
	Venue    string
	Bats     string
	OppHand  string
}

// Fixtures are the simulated rosters per domain ("dev mode")
var Fixtures = map[string][]fixtureEntity{
	rating.MLBHomeRun: {
		{Name: "Aaron Judge", Team: "NYY", Opponent: "BOS", Venue: "Yankee Stadium", Bats: "R", OppHand: "L"},
		{Name: "Juan Soto", Team: "NYY", Opponent: "BOS", Venue: "Yankee Stadium", Bats: "L", OppHand: "L"},
		{Name: "Shohei Ohtani", Team: "LAD", Opponent: "SD", Venue: "Dodger Stadium", Bats: "L", OppHand: "R"},
		{Name: "Mookie Betts", Team: "LAD", Opponent: "SD", Venue: "Dodger Stadium", Bats: "R", OppHand: "R"},
		{Name: "Pete Alonso", Team: "NYM", Opponent: "PHI", Venue: "Citi Field", Bats: "R", OppHand: "R"},
		{Name: "Kyle Schwarber", Team: "PHI", Opponent: "NYM", Venue: "Citi Field", Bats: "L", OppHand: "R"},
		{Name: "Ozzie Albies", Team: "ATL", Opponent: "MIA", Venue: "Truist Park", Bats: "S", OppHand: "L"},
	},
	rating.MLBPrecision: {
		{Name: "Aaron Judge", Team: "NYY", Opponent: "BOS", Venue: "Yankee Stadium", Bats: "R", OppHand: "L"},
		{Name: "Shohei Ohtani", Team: "LAD", Opponent: "SD", Venue: "Dodger Stadium", Bats: "L", OppHand: "R"},
		{Name: "Pete Alonso", Team: "NYM", Opponent: "PHI", Venue: "Citi Field", Bats: "R", OppHand: "R"},
	},
	rating.NBAShotMaker: {
		{Name: "Luka Doncic", Team: "Mavericks", Opponent: "Lakers"},
		{Name: "Stephen Curry", Team: "Warriors", Opponent: "Kings"},
		{Name: "Jayson Tatum", Team: "Celtics", Opponent: "Knicks"},
		{Name: "Kevin Durant", Team: "Suns", Opponent: "Nuggets"},
		{Name: "Donovan Mitchell", Team: "Cavaliers", Opponent: "Bulls"},
	},
}

// FixtureAdapter serves a simulated roster with simulated metrics drawn from each
// metric's simulation range
type FixtureAdapter struct {
	random rating.RandomSource
}

// NewFixtureAdapter creates a new fixture adapter
func NewFixtureAdapter(random rating.RandomSource) *FixtureAdapter {
	if random == nil {
		random = rating.NewRandom(0)
	}
	return &FixtureAdapter{random: random}
}

func (a *FixtureAdapter) Name() string { return Fixture }

// Fetch implements Adapter
func (a *FixtureAdapter) Fetch(_ context.Context, scope Scope) (models.Batch, error) {
	domain, err := rating.Lookup(scope.Domain)
	if err != nil {
		return models.Batch{Source: Fixture}, err
	}
	roster, ok := Fixtures[domain.Key]
	if !ok {
		return models.Batch{Source: Fixture}, fmt.Errorf("%w: no fixture roster for %s", ErrUnavailable, domain.Key)
	}

	// Venue weather is drawn once and shared like a real lookup
	venueWeather := make(map[string]map[string]float64)

	batch := models.Batch{Source: Fixture}
	for _, f := range roster {
		e := models.Entity{Name: f.Name, Team: f.Team}
		e.SetAttr(models.AttrOpponent, f.Opponent)
		e.SetAttr(models.AttrVenue, f.Venue)
		e.SetAttr(models.AttrBatSide, f.Bats)
		e.SetAttr(models.AttrOppPitchHand, f.OppHand)
		batch.Entities = append(batch.Entities, e)

		for _, spec := range domain.Metrics {
			r, ok := spec.SimulationRange()
			if !ok {
				continue
			}

			var v float64
			if isVenueMetric(spec.Name) && f.Venue != "" {
				if venueWeather[f.Venue] == nil {
					venueWeather[f.Venue] = make(map[string]float64)
				}
				cached, ok := venueWeather[f.Venue][spec.Name]
				if !ok {
					cached = rating.Draw(a.random, r.Lo, r.Hi)
					venueWeather[f.Venue][spec.Name] = cached
				}
				v = cached
			} else {
				v = rating.Draw(a.random, r.Lo, r.Hi)
			}

			batch.Records = append(batch.Records, models.SourceRecord{
				EntityName: f.Name,
				Metric:     spec.Name,
				Value:      v,
				SourceID:   Fixture,
				Provenance: models.ProvenanceSimulated,
			})
		}
	}
	return batch, nil
}

func isVenueMetric(name string) bool {
	return name == models.MetricWindMPH || name == models.MetricTempF
}

func init() {
	Register(Fixture, func(deps Deps) (Adapter, error) {
		return NewFixtureAdapter(deps.Random), nil
	})
}
