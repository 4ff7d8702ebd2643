package source

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"betedge/engine/internal/client"
	"betedge/engine/internal/config"
	"betedge/engine/internal/models"

	"github.com/rs/zerolog/log"
)

// mlbAPI wraps the MLB Stats API endpoints used by the adapters
type mlbAPI struct {
	client  *client.Client
	baseURL string
}

func (a *mlbAPI) schedule(ctx context.Context, date string) (*models.ScheduleResponse, error) {
	params := url.Values{
		"sportId": {"1"},
		"date":    {date},
		"hydrate": {"probablePitcher,venue(location)"},
	}
	var resp models.ScheduleResponse
	if err := a.client.GetJSON(ctx, "mlb_schedule", a.baseURL+"/schedule", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	return &resp, nil
}

func (a *mlbAPI) boxscore(ctx context.Context, gamePk int) (*models.BoxscoreResponse, error) {
	var resp models.BoxscoreResponse
	path := fmt.Sprintf("%s/game/%d/boxscore", a.baseURL, gamePk)
	if err := a.client.GetJSON(ctx, "mlb_boxscore", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch boxscore %d: %w", gamePk, err)
	}
	return &resp, nil
}

func (a *mlbAPI) people(ctx context.Context, ids []int) (*models.PeopleResponse, error) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	params := url.Values{"personIds": {strings.Join(parts, ",")}}

	var resp models.PeopleResponse
	if err := a.client.GetJSON(ctx, "mlb_people", a.baseURL+"/people", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch people: %w", err)
	}
	return &resp, nil
}

func (a *mlbAPI) hitting(ctx context.Context, scope Scope) (*models.HittingStatsResponse, error) {
	params := url.Values{
		"group":      {"hitting"},
		"sportId":    {"1"},
		"playerPool": {"ALL"},
		"limit":      {"2000"},
		"season":     {strconv.Itoa(scope.Season)},
	}
	if scope.LookbackDays > 0 {
		start, end := scope.Window()
		params.Set("stats", "byDateRange")
		params.Set("startDate", start.Format(config.DateLayout))
		params.Set("endDate", end.Format(config.DateLayout))
	} else {
		params.Set("stats", "season")
	}

	var resp models.HittingStatsResponse
	if err := a.client.GetJSON(ctx, "mlb_stats", a.baseURL+"/stats", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch hitting stats: %w", err)
	}
	return &resp, nil
}

// RosterAdapter builds the day's entities from the schedule, the posted lineups and
// the players' handedness
type RosterAdapter struct {
	api *mlbAPI
}

// NewRosterAdapter creates a new roster adapter
func NewRosterAdapter(c *client.Client, baseURL string) *RosterAdapter {
	return &RosterAdapter{api: &mlbAPI{client: c, baseURL: strings.TrimRight(baseURL, "/")}}
}

func (a *RosterAdapter) Name() string { return MLBRoster }

// Fetch implements Adapter
func (a *RosterAdapter) Fetch(ctx context.Context, scope Scope) (models.Batch, error) {
	batch := models.Batch{Source: MLBRoster}

	sched, err := a.api.schedule(ctx, scope.Date.Format(config.DateLayout))
	if err != nil {
		return models.Batch{Source: MLBRoster}, err
	}

	games := sched.Games()
	log.Info().
		Str("date", scope.Date.Format(config.DateLayout)).
		Int("games", len(games)).
		Msg("Fetched schedule")

	// pitcher ID per entity, resolved to a hand after the people lookup
	oppPitcher := make(map[int]int)
	var personIDs []int
	seen := make(map[int]bool)

	for _, game := range games {
		box, err := a.api.boxscore(ctx, game.GamePk)
		if err != nil {
			batch.Warnings = append(batch.Warnings, fmt.Sprintf("lineup of game %d unavailable: %v", game.GamePk, err))
			log.Warn().Err(err).Int("game_pk", game.GamePk).Msg("Skipping game without boxscore")
			continue
		}

		for _, side := range []models.BoxscoreTeam{box.Teams.Home, box.Teams.Away} {
			team := side.Team.Name
			if team == "" {
				continue
			}
			opp := game.Opponent(team)

			for _, h := range side.Lineup() {
				e := models.Entity{ID: itoa(h.ID), Name: h.Name, Team: team}
				for k, v := range game.VenueAttrs() {
					e.SetAttr(k, v)
				}
				e.SetAttr(models.AttrOpponent, opp.Name)
				e.SetAttr(models.AttrOppPitcher, opp.ProbablePitcher)
				batch.Entities = append(batch.Entities, e)

				if opp.ProbablePitcherID != 0 {
					oppPitcher[len(batch.Entities)-1] = opp.ProbablePitcherID
				}
				for _, id := range []int{h.ID, opp.ProbablePitcherID} {
					if id != 0 && !seen[id] {
						seen[id] = true
						personIDs = append(personIDs, id)
					}
				}
			}
		}
	}

	if len(batch.Entities) == 0 || len(personIDs) == 0 {
		return batch, nil
	}

	sort.Ints(personIDs)
	people, err := a.api.people(ctx, personIDs)
	if err != nil {
		batch.Warnings = append(batch.Warnings, fmt.Sprintf("handedness unavailable: %v", err))
		log.Warn().Err(err).Msg("Continuing without handedness")
		return batch, nil
	}

	hands := people.Handedness()
	for i := range batch.Entities {
		e := &batch.Entities[i]
		if p, ok := hands[e.ID]; ok {
			e.SetAttr(models.AttrBatSide, p.BatSide.Code)
		}
		if pid, ok := oppPitcher[i]; ok {
			if p, ok := hands[strconv.Itoa(pid)]; ok {
				e.SetAttr(models.AttrOppPitchHand, p.PitchHand.Code)
			}
		}
	}

	return batch, nil
}

// StatsAdapter derives power proxies from season (or date range) hitting totals
type StatsAdapter struct {
	api *mlbAPI
}

// NewStatsAdapter creates a new hitting stats adapter
func NewStatsAdapter(c *client.Client, baseURL string) *StatsAdapter {
	return &StatsAdapter{api: &mlbAPI{client: c, baseURL: strings.TrimRight(baseURL, "/")}}
}

func (a *StatsAdapter) Name() string { return MLBStats }

// Fetch implements Adapter
func (a *StatsAdapter) Fetch(ctx context.Context, scope Scope) (models.Batch, error) {
	resp, err := a.api.hitting(ctx, scope)
	if err != nil {
		return models.Batch{Source: MLBStats}, err
	}

	var records []models.SourceRecord
	for _, split := range resp.Splits() {
		records = append(records, split.ToRecords(MLBStats)...)
	}

	return models.Batch{
		Source:  MLBStats,
		Records: newEntitySet(scope.Entities).keep(records),
	}, nil
}

func init() {
	Register(MLBRoster, func(deps Deps) (Adapter, error) {
		return NewRosterAdapter(deps.Client, deps.Config.MLBStatsBaseURL), nil
	})
	Register(MLBStats, func(deps Deps) (Adapter, error) {
		return NewStatsAdapter(deps.Client, deps.Config.MLBStatsBaseURL), nil
	})
}
