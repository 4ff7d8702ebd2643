package models

import (
	"sort"
	"strconv"
)

// maxStartingOrder is the highest battingOrder of a starter (100..900); substitutes
// carry values like 101 or 902.
const maxStartingOrder = 900

// BoxscoreResponse is the MLB Stats API boxscore payload
type BoxscoreResponse struct {
	Teams struct {
		Home BoxscoreTeam `json:"home"`
		Away BoxscoreTeam `json:"away"`
	} `json:"teams"`
}

// BoxscoreTeam is one side of a boxscore
type BoxscoreTeam struct {
	Team    TeamRef                   `json:"team"`
	Players map[string]BoxscorePlayer `json:"players"`
}

// BoxscorePlayer is one player entry of a boxscore side
type BoxscorePlayer struct {
	Person   PersonRef `json:"person"`
	Position struct {
		Code         string `json:"code"`
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
	BattingOrder FlexInt `json:"battingOrder"`
}

// IsPitcher reports whether the player is listed at pitcher
func (p BoxscorePlayer) IsPitcher() bool {
	return p.Position.Code == "1" || p.Position.Code == "P" || p.Position.Abbreviation == "P"
}

// Hitter is a lineup entry
type Hitter struct {
	ID    int
	Name  string
	Order int
}

// Lineup returns the starting non-pitcher hitters ordered by batting order.
// Entries without a position or a batting order are skipped.
func (t BoxscoreTeam) Lineup() []Hitter {
	var hitters []Hitter
	for _, p := range t.Players {
		if p.Position.Code == "" && p.Position.Abbreviation == "" {
			continue
		}
		if p.IsPitcher() {
			continue
		}
		order := int(p.BattingOrder)
		if order <= 0 || order > maxStartingOrder {
			continue
		}
		if p.Person.FullName == "" {
			continue
		}
		hitters = append(hitters, Hitter{ID: p.Person.ID, Name: p.Person.FullName, Order: order})
	}

	sort.SliceStable(hitters, func(i, j int) bool {
		if hitters[i].Order != hitters[j].Order {
			return hitters[i].Order < hitters[j].Order
		}
		return hitters[i].ID < hitters[j].ID
	})
	return hitters
}

// PeopleResponse is the MLB Stats API people payload
type PeopleResponse struct {
	People []Person `json:"people"`
}

// Person carries the handedness of a player
type Person struct {
	ID        int    `json:"id"`
	FullName  string `json:"fullName"`
	BatSide   Code   `json:"batSide"`
	PitchHand Code   `json:"pitchHand"`
}

// Code is a coded value such as {"code":"R","description":"Right"}
type Code struct {
	Code string `json:"code"`
}

// Handedness indexes people by ID
func (r *PeopleResponse) Handedness() map[string]Person {
	out := make(map[string]Person, len(r.People))
	for _, p := range r.People {
		if p.ID == 0 {
			continue
		}
		out[strconv.Itoa(p.ID)] = p
	}
	return out
}
