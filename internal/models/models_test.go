package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "aaron judge", NormalizeName("  Aaron   JUDGE "))
	assert.Equal(t, "j.d. martinez", NormalizeName("J.D.\tMartinez"))
	assert.NotEqual(t, NormalizeName("JD Martinez"), NormalizeName("J.D. Martinez"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestEntity_SetAttrIgnoresEmpty(t *testing.T) {
	var e Entity
	e.SetAttr(AttrBatSide, "  ")
	assert.Nil(t, e.Attrs)
	e.SetAttr(AttrBatSide, " R ")
	assert.Equal(t, "R", e.Attr(AttrBatSide))
}

func TestMetricSpec_Accepts(t *testing.T) {
	spec := MetricSpec{Name: MetricBarrelPct, NonNegative: true}
	assert.True(t, spec.Accepts(0))
	assert.False(t, spec.Accepts(-0.1))
	assert.False(t, spec.Accepts(math.NaN()))
	assert.False(t, spec.Accepts(math.Inf(-1)))

	temp := MetricSpec{Name: MetricTempF}
	assert.True(t, temp.Accepts(-10))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.38, Round(3.3799999999999994, 2))
	assert.Equal(t, 12.0, Round(11.96, 0))
	assert.Equal(t, Round(21.456, 2), Round(Round(21.456, 2), 2))
}

func TestProvenance(t *testing.T) {
	assert.Greater(t, ProvenanceFetched, ProvenanceScraped)
	assert.Greater(t, ProvenanceScraped, ProvenanceSimulated)
	assert.Greater(t, ProvenanceSimulated, ProvenanceImputed)

	for _, p := range []Provenance{ProvenanceImputed, ProvenanceSimulated, ProvenanceScraped, ProvenanceFetched} {
		parsed, err := ParseProvenance(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	_, err := ParseProvenance("guessed")
	assert.Error(t, err)
}

func TestTable_Columns(t *testing.T) {
	table := NewTable(Layout{Attrs: []string{AttrBatSide}, Metrics: []string{MetricBarrelPct}})
	table.Rows = []Row{{Entity: Entity{Name: "A"}}}
	assert.Equal(t, []string{"Player", "Team", "Bats", "Barrel %", "Rating"}, table.Columns(false))

	table.Rows[0].Entity.ID = "1"
	assert.Equal(t, []string{"Player", "Team", "ID", "Bats", "Barrel %", "Rating", "Barrel % Source"}, table.Columns(true))

	m, ok := MetricOfSourceColumn("Barrel % Source")
	assert.True(t, ok)
	assert.Equal(t, MetricBarrelPct, m)
}

func TestTable_CloneIsDeep(t *testing.T) {
	table := NewTable(Layout{})
	table.Rows = []Row{{
		Entity:  Entity{Name: "A", Attrs: map[string]string{AttrBatSide: "R"}},
		Metrics: map[string]Cell{MetricBarrelPct: {Value: 1}},
	}}
	clone := table.Clone()
	clone.Rows[0].Entity.Attrs[AttrBatSide] = "L"
	clone.Rows[0].Metrics[MetricBarrelPct] = Cell{Value: 2}

	assert.Equal(t, "R", table.Rows[0].Entity.Attr(AttrBatSide))
	assert.Equal(t, 1.0, table.Rows[0].Metrics[MetricBarrelPct].Value)
}

func TestFlexInt(t *testing.T) {
	var v struct {
		A FlexInt `json:"a"`
		B FlexInt `json:"b"`
		C FlexInt `json:"c"`
		D FlexInt `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 300, "b": "200", "c": "abc", "d": null}`), &v))
	assert.Equal(t, FlexInt(300), v.A)
	assert.Equal(t, FlexInt(200), v.B)
	assert.Equal(t, FlexInt(0), v.C)
	assert.Equal(t, FlexInt(0), v.D)
}

func TestFlexFloat(t *testing.T) {
	var v struct {
		A FlexFloat `json:"a"`
		B FlexFloat `json:"b"`
		C FlexFloat `json:"c"`
		D FlexFloat `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.5, "b": ".287", "c": "-.--", "d": {}}`), &v))
	require.NotNil(t, v.A.Value)
	assert.Equal(t, 12.5, *v.A.Value)
	require.NotNil(t, v.B.Value)
	assert.Equal(t, 0.287, *v.B.Value)
	assert.Nil(t, v.C.Value)
	assert.Nil(t, v.D.Value)
}

func TestParseAmericanOdds(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"+280", 280, true},
		{"280", 280, true},
		{" -115 ", -115, true},
		{"−120", -120, true},
		{"EVEN", 100, true},
		{"ev", 100, true},
		{"+50", 0, false},
		{"", 0, false},
		{"OFF", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAmericanOdds(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestBoxscoreTeam_Lineup(t *testing.T) {
	var team BoxscoreTeam
	require.NoError(t, json.Unmarshal([]byte(`{
		"team": {"id": 1, "name": "Home"},
		"players": {
			"ID3": {"person": {"id": 3, "fullName": "Third"}, "position": {"code": "5"}, "battingOrder": "300"},
			"ID1": {"person": {"id": 1, "fullName": "First"}, "position": {"code": "8"}, "battingOrder": "100"},
			"ID9": {"person": {"id": 9, "fullName": "Pitcher"}, "position": {"code": "1", "abbreviation": "P"}, "battingOrder": "900"},
			"ID4": {"person": {"id": 4, "fullName": "Benched"}, "position": {"code": "3"}},
			"ID5": {"person": {"id": 5, "fullName": "No Position"}, "battingOrder": "400"},
			"ID6": {"person": {"id": 6, "fullName": "Sub"}, "position": {"code": "4"}, "battingOrder": "901"}
		}
	}`), &team))

	lineup := team.Lineup()
	require.Len(t, lineup, 2)
	assert.Equal(t, "First", lineup[0].Name)
	assert.Equal(t, "Third", lineup[1].Name)
}

func TestScheduleGame_ToGame(t *testing.T) {
	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal([]byte(`{"dates": [{"games": [
		{"gamePk": 1, "gameDate": "2024-06-01T23:05:00Z", "venue": {"name": "Fenway Park",
		 "location": {"city": "Boston", "defaultCoordinates": {"latitude": 42.3, "longitude": -71.1}}},
		 "teams": {"home": {"team": {"name": "Red Sox"}, "probablePitcher": {"id": 7, "fullName": "Ace"}},
		           "away": {"team": {"name": "Yankees"}}}},
		{"gamePk": 0}
	]}]}`), &resp))

	games := resp.Games()
	require.Len(t, games, 1)
	g := games[0]
	assert.Equal(t, "Boston", g.City)
	assert.Equal(t, 2024, g.Start.Year())
	assert.Equal(t, "Ace", g.Opponent("Yankees").ProbablePitcher)
	assert.Equal(t, "", g.Opponent("Red Sox").ProbablePitcher)

	attrs := g.VenueAttrs()
	assert.Equal(t, "Fenway Park", attrs[AttrVenue])
	assert.Equal(t, "42.3", attrs[AttrVenueLat])
	assert.Equal(t, "1", attrs[AttrGamePk])
}

func TestWeatherResponse_ToConditions(t *testing.T) {
	var resp WeatherResponse
	require.NoError(t, json.Unmarshal([]byte(`{"wind": {"speed": 8}, "weather": []}`), &resp))
	cond := resp.ToConditions()
	require.NotNil(t, cond.WindMPH)
	assert.Equal(t, 8.0, *cond.WindMPH)
	assert.Nil(t, cond.TempF)
	assert.Equal(t, "Unknown", cond.Summary)

	records := cond.ToRecords(Entity{Name: "A"}, "weather", ProvenanceFetched)
	require.Len(t, records, 1)
	assert.Equal(t, MetricWindMPH, records[0].Metric)
}

func TestSavantName(t *testing.T) {
	assert.Equal(t, "Aaron Judge", SavantName("Judge, Aaron"))
	assert.Equal(t, "Shohei Ohtani", SavantName(" Shohei Ohtani "))
}
