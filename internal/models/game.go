package models

import (
	"strconv"
	"time"
)

// ScheduleResponse is the MLB Stats API schedule payload
type ScheduleResponse struct {
	Dates []ScheduleDate `json:"dates"`
}

// ScheduleDate groups the games of one calendar day
type ScheduleDate struct {
	Date  string         `json:"date"`
	Games []ScheduleGame `json:"games"`
}

// ScheduleGame is a single scheduled game as returned by the API
type ScheduleGame struct {
	GamePk   int    `json:"gamePk"`
	GameDate string `json:"gameDate"`
	Status   struct {
		DetailedState string `json:"detailedState"`
	} `json:"status"`
	Venue VenueRef `json:"venue"`
	Teams struct {
		Home GameSide `json:"home"`
		Away GameSide `json:"away"`
	} `json:"teams"`
}

// VenueRef is the venue block of a scheduled game
type VenueRef struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Location *VenueLocation `json:"location,omitempty"`
}

// VenueLocation is only present when the schedule is hydrated with venue(location)
type VenueLocation struct {
	City               string       `json:"city"`
	DefaultCoordinates *Coordinates `json:"defaultCoordinates,omitempty"`
}

// Coordinates is a latitude/longitude pair
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GameSide is one team of a scheduled game
type GameSide struct {
	Team            TeamRef    `json:"team"`
	ProbablePitcher *PersonRef `json:"probablePitcher,omitempty"`
}

// TeamRef identifies a team
type TeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PersonRef identifies a person (player)
type PersonRef struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
}

// Game is the normalized view of a scheduled game used by the adapters
type Game struct {
	GamePk int
	Start  time.Time
	Status string
	Venue  string
	City   string
	Lat    *float64
	Lon    *float64
	Home   GameTeam
	Away   GameTeam
}

// GameTeam is one side of a normalized game
type GameTeam struct {
	Name              string
	ProbablePitcherID int
	ProbablePitcher   string
}

// Games flattens the schedule into normalized games, skipping entries without a gamePk
func (r *ScheduleResponse) Games() []*Game {
	var games []*Game
	for _, date := range r.Dates {
		for i := range date.Games {
			if date.Games[i].GamePk == 0 {
				continue
			}
			games = append(games, date.Games[i].ToGame())
		}
	}
	return games
}

// ToGame converts ScheduleGame (from API) to Game
func (sg *ScheduleGame) ToGame() *Game {
	game := &Game{
		GamePk: sg.GamePk,
		Status: sg.Status.DetailedState,
		Venue:  sg.Venue.Name,
		Home:   toGameTeam(sg.Teams.Home),
		Away:   toGameTeam(sg.Teams.Away),
	}

	if t, err := time.Parse(time.RFC3339, sg.GameDate); err == nil {
		game.Start = t
	}

	if loc := sg.Venue.Location; loc != nil {
		game.City = loc.City
		if c := loc.DefaultCoordinates; c != nil && (c.Latitude != 0 || c.Longitude != 0) {
			lat, lon := c.Latitude, c.Longitude
			game.Lat = &lat
			game.Lon = &lon
		}
	}

	return game
}

func toGameTeam(side GameSide) GameTeam {
	team := GameTeam{Name: side.Team.Name}
	if side.ProbablePitcher != nil {
		team.ProbablePitcherID = side.ProbablePitcher.ID
		team.ProbablePitcher = side.ProbablePitcher.FullName
	}
	return team
}

// Opponent returns the other side of the game for the given team name
func (g *Game) Opponent(team string) GameTeam {
	if team == g.Home.Name {
		return g.Away
	}
	return g.Home
}

// VenueAttrs returns the venue attributes shared by every entity of the game
func (g *Game) VenueAttrs() map[string]string {
	attrs := map[string]string{
		AttrVenue:  g.Venue,
		AttrGamePk: strconv.Itoa(g.GamePk),
	}
	if g.City != "" {
		attrs[AttrVenueCity] = g.City
	}
	if g.Lat != nil && g.Lon != nil {
		attrs[AttrVenueLat] = strconv.FormatFloat(*g.Lat, 'f', -1, 64)
		attrs[AttrVenueLon] = strconv.FormatFloat(*g.Lon, 'f', -1, 64)
	}
	return attrs
}
