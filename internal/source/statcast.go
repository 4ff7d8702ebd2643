package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"betedge/engine/internal/cache"
	"betedge/engine/internal/client"
	"betedge/engine/internal/models"

	"github.com/rs/zerolog/log"
)

// StatcastAdapter reads the Baseball Savant exit velocity & barrels leaderboard.
// The parsed leaderboard is memoized in the run cache.
type StatcastAdapter struct {
	client  *client.Client
	cache   cache.Cache
	baseURL string
	minBBE  int
	ttl     time.Duration
}

// NewStatcastAdapter creates a new leaderboard adapter. A nil cache disables memoization.
func NewStatcastAdapter(c *client.Client, store cache.Cache, baseURL string, minBBE int, ttl time.Duration) *StatcastAdapter {
	if store == nil {
		store = cache.Noop{}
	}
	return &StatcastAdapter{
		client:  c,
		cache:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		minBBE:  minBBE,
		ttl:     ttl,
	}
}

func (a *StatcastAdapter) Name() string { return Statcast }

// Fetch implements Adapter
func (a *StatcastAdapter) Fetch(ctx context.Context, scope Scope) (models.Batch, error) {
	rows, err := a.leaderboard(ctx, scope.Season)
	if err != nil {
		return models.Batch{Source: Statcast}, err
	}

	var records []models.SourceRecord
	for i := range rows {
		records = append(records, rows[i].ToRecords(Statcast)...)
	}

	return models.Batch{
		Source:  Statcast,
		Records: newEntitySet(scope.Entities).keep(records),
	}, nil
}

func (a *StatcastAdapter) leaderboard(ctx context.Context, season int) ([]models.StatcastRow, error) {
	key := fmt.Sprintf("statcast:%d:%d", season, a.minBBE)

	var rows []models.StatcastRow
	ok, err := cache.GetJSON(ctx, a.cache, key, &rows)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Ignoring unreadable cache entry")
	}
	if ok {
		log.Debug().Str("key", key).Int("rows", len(rows)).Msg("Statcast leaderboard served from cache")
		return rows, nil
	}

	params := url.Values{
		"type":     {"batter"},
		"year":     {strconv.Itoa(season)},
		"position": {""},
		"team":     {""},
		"min":      {strconv.Itoa(a.minBBE)},
		"csv":      {"true"},
	}
	body, err := a.client.Get(ctx, "savant_leaderboard", a.baseURL+"/leaderboard/statcast", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statcast leaderboard: %w", err)
	}

	rows, err = ParseStatcastCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, a.cache, key, rows, a.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache statcast leaderboard")
	}
	return rows, nil
}

// ParseStatcastCSV parses the leaderboard CSV. Empty or malformed cells are left nil.
func ParseStatcastCSV(r io.Reader) ([]models.StatcastRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read statcast csv: %w", err)
	}
	// Savant prefixes the file with a UTF-8 byte order mark
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read statcast header: %w", err)
	}
	pos := make(map[string]int, len(header))
	for i, col := range header {
		pos[strings.TrimSpace(col)] = i
	}

	nameCol, hasCombined := pos["last_name, first_name"]
	_, hasLast := pos["last_name"]
	_, hasPlayer := pos["player_name"]
	if !hasCombined && !hasLast && !hasPlayer {
		return nil, fmt.Errorf("statcast csv has no player name column")
	}

	var rows []models.StatcastRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read statcast row: %w", err)
		}

		cell := func(col string) string {
			i, ok := pos[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		var name string
		switch {
		case hasCombined:
			name = models.SavantName(rec[nameCol])
		case hasLast:
			name = strings.TrimSpace(cell("first_name") + " " + cell("last_name"))
		default:
			name = models.SavantName(cell("player_name"))
		}
		if name == "" {
			continue
		}

		rows = append(rows, models.StatcastRow{
			PlayerID:    cell("player_id"),
			Name:        name,
			AvgHitSpeed: parseCell(cell("avg_hit_speed")),
			BarrelPct:   parseCell(cell("brl_percent")),
			HardHitPct:  parseCell(cell("ev95percent")),
		})
	}
	return rows, nil
}

func parseCell(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func init() {
	Register(Statcast, func(deps Deps) (Adapter, error) {
		return NewStatcastAdapter(deps.Client, deps.Cache, deps.Config.SavantBaseURL, deps.Config.StatcastMinBBE, deps.Config.CacheTTL), nil
	})
}
