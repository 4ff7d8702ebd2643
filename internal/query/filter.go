// Package query filters, ranks and exports rated tables.
package query

import (
	"sort"
	"strings"

	"betedge/engine/internal/models"
)

// Predicate keeps a row when it returns true
type Predicate func(row models.Row) bool

// MinRating keeps rows rated at or above min
func MinRating(min float64) Predicate {
	return func(row models.Row) bool {
		return row.Rating >= min
	}
}

// Teams keeps rows whose team is in the set, compared case-insensitively
func Teams(teams ...string) Predicate {
	set := make(map[string]bool, len(teams))
	for _, t := range teams {
		if t = models.NormalizeName(t); t != "" {
			set[t] = true
		}
	}
	return func(row models.Row) bool {
		if len(set) == 0 {
			return true
		}
		return set[models.NormalizeName(row.Entity.Team)]
	}
}

// Favorable excludes rows where the two attributes are equal. Switch and unknown
// values never count as equal.
func Favorable(attr, against string) Predicate {
	return func(row models.Row) bool {
		a := strings.ToUpper(row.Entity.Attr(attr))
		b := strings.ToUpper(row.Entity.Attr(against))
		if a == "" || b == "" || a == models.HandSwitch || b == models.HandSwitch {
			return true
		}
		return a != b
	}
}

// Criteria is the user-facing predicate set of a run
type Criteria struct {
	MinRating     float64
	Teams         []string
	FavorableOnly bool
}

// Predicates turns the criteria into predicates. Zero criteria keep every row.
func (c Criteria) Predicates() []Predicate {
	var preds []Predicate
	if c.MinRating > 0 {
		preds = append(preds, MinRating(c.MinRating))
	}
	if len(c.Teams) > 0 {
		preds = append(preds, Teams(c.Teams...))
	}
	if c.FavorableOnly {
		preds = append(preds, Favorable(models.AttrBatSide, models.AttrOppPitchHand))
	}
	return preds
}

// Filter returns a table holding the rows that satisfy every predicate, in their
// original order
func Filter(t *models.Table, preds ...Predicate) *models.Table {
	rows := make([]models.Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if keep(row, preds) {
			rows = append(rows, row)
		}
	}
	return t.WithRows(rows)
}

func keep(row models.Row, preds []Predicate) bool {
	for _, p := range preds {
		if !p(row) {
			return false
		}
	}
	return true
}

// TopN returns at most n rows sorted by rating, highest first. Ties keep their
// original order. n <= 0 returns every row sorted.
func TopN(t *models.Table, n int) *models.Table {
	rows := make([]models.Row, len(t.Rows))
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Rating > rows[j].Rating
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return t.WithRows(rows)
}
