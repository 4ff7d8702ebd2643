package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"betedge/engine/internal/client"
	"betedge/engine/internal/models"

	"github.com/rs/zerolog/log"
)

// WeatherAdapter looks up the current weather once per venue and shares it with
// every entity playing there
type WeatherAdapter struct {
	client  *client.Client
	baseURL string
	apiKey  string
}

// NewWeatherAdapter creates a new OpenWeatherMap adapter
func NewWeatherAdapter(c *client.Client, baseURL, apiKey string) *WeatherAdapter {
	return &WeatherAdapter{
		client:  c,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
	}
}

func (a *WeatherAdapter) Name() string { return Weather }

type venue struct {
	key      string
	params   url.Values
	entities []models.Entity
}

// Fetch implements Adapter. Without an API key it returns an empty batch and a
// warning so the merge falls back to neutral weather.
func (a *WeatherAdapter) Fetch(ctx context.Context, scope Scope) (models.Batch, error) {
	batch := models.Batch{Source: Weather}
	if a.apiKey == "" {
		batch.Warnings = append(batch.Warnings, "WEATHER_API_KEY not set, weather left neutral")
		return batch, nil
	}

	venues := groupVenues(scope.Entities)
	failed := 0
	for _, v := range venues {
		params := url.Values{"appid": {a.apiKey}, "units": {"imperial"}}
		for k, vals := range v.params {
			params[k] = vals
		}

		var resp models.WeatherResponse
		if err := a.client.GetJSON(ctx, "weather", a.baseURL+"/weather", params, &resp); err != nil {
			failed++
			batch.Warnings = append(batch.Warnings, fmt.Sprintf("weather for %s unavailable: %v", v.key, err))
			log.Warn().Err(err).Str("venue", v.key).Msg("Weather lookup failed")
			if ctx.Err() != nil {
				return models.Batch{Source: Weather}, ctx.Err()
			}
			continue
		}

		cond := resp.ToConditions()
		log.Debug().
			Str("venue", v.key).
			Str("conditions", cond.Summary).
			Msg("Fetched weather")
		for _, e := range v.entities {
			batch.Records = append(batch.Records, cond.ToRecords(e, Weather, models.ProvenanceFetched)...)
		}
	}

	if len(venues) > 0 && failed == len(venues) {
		return models.Batch{Source: Weather}, fmt.Errorf("weather lookups failed for all %d venues", failed)
	}
	return batch, nil
}

// groupVenues groups entities by venue in first-seen order. Coordinates are preferred,
// then the city, then the venue name.
func groupVenues(entities []models.Entity) []*venue {
	var order []*venue
	byKey := make(map[string]*venue)

	for _, e := range entities {
		v := venueOf(e)
		if v == nil {
			continue
		}
		if existing, ok := byKey[v.key]; ok {
			existing.entities = append(existing.entities, e)
			continue
		}
		v.entities = []models.Entity{e}
		byKey[v.key] = v
		order = append(order, v)
	}
	return order
}

func venueOf(e models.Entity) *venue {
	lat, lon := e.Attr(models.AttrVenueLat), e.Attr(models.AttrVenueLon)
	if lat != "" && lon != "" {
		return &venue{key: lat + "," + lon, params: url.Values{"lat": {lat}, "lon": {lon}}}
	}
	if city := e.Attr(models.AttrVenueCity); city != "" {
		return &venue{key: city, params: url.Values{"q": {city}}}
	}
	if name := e.Attr(models.AttrVenue); name != "" {
		return &venue{key: name, params: url.Values{"q": {name}}}
	}
	return nil
}

func init() {
	Register(Weather, func(deps Deps) (Adapter, error) {
		return NewWeatherAdapter(deps.Client, deps.Config.WeatherBaseURL, deps.Config.WeatherAPIKey), nil
	})
}
