// Package source holds the adapters that feed a run: rosters, statistics, weather,
// odds, simulation fixtures and the staged-metrics warehouse.
package source

import (
	"context"
	"errors"
	"strconv"
	"time"

	"betedge/engine/internal/models"
)

// ErrUnavailable is returned by adapters whose upstream is not configured or not
// connected for the requested scope
var ErrUnavailable = errors.New("source unavailable")

// Scope is what a run asks every adapter for
type Scope struct {
	Domain       string
	Date         time.Time
	LookbackDays int
	Season       int
	// Entities is empty for roster adapters and holds the roster for the rest
	Entities []models.Entity
}

// Window returns the inclusive date window ending the day before Date
func (s Scope) Window() (time.Time, time.Time) {
	end := s.Date.AddDate(0, 0, -1)
	return end.AddDate(0, 0, -(s.LookbackDays - 1)), end
}

// Adapter is one independent source of entities or metric records.
// Fetch never returns partial data from a failed call: on error the batch is empty.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, scope Scope) (models.Batch, error)
}

// entitySet answers whether a record belongs to the scope
type entitySet struct {
	ids   map[string]bool
	names map[string]bool
}

func newEntitySet(entities []models.Entity) entitySet {
	set := entitySet{ids: make(map[string]bool), names: make(map[string]bool)}
	for _, e := range entities {
		if e.ID != "" {
			set.ids[e.ID] = true
		}
		set.names[e.Key()] = true
	}
	return set
}

func (s entitySet) contains(id, name string) bool {
	if id != "" && s.ids[id] {
		return true
	}
	return s.names[models.NormalizeName(name)]
}

// keep drops records outside the scope; an empty scope keeps everything
func (s entitySet) keep(records []models.SourceRecord) []models.SourceRecord {
	if len(s.ids) == 0 && len(s.names) == 0 {
		return records
	}
	out := records[:0]
	for _, r := range records {
		if s.contains(r.EntityID, r.EntityName) {
			out = append(out, r)
		}
	}
	return out
}

func itoa(i int) string {
	if i == 0 {
		return ""
	}
	return strconv.Itoa(i)
}
