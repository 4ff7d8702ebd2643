package merge

import (
	"betedge/engine/internal/models"
)

type joinStatus int

const (
	joinMatched joinStatus = iota
	joinMissed
	joinAmbiguous
)

// index resolves records to row positions
type index struct {
	byID   map[string]int
	byName map[string][]int
	ids    []string
}

func newIndex() *index {
	return &index{
		byID:   make(map[string]int),
		byName: make(map[string][]int),
	}
}

func (x *index) add(e models.Entity, pos int) {
	if e.ID != "" {
		x.byID[e.ID] = pos
	}
	key := e.Key()
	x.byName[key] = append(x.byName[key], pos)
	x.ids = append(x.ids, e.ID)
}

// find returns the row of an identity that is already indexed. Identities with an
// ID only match on that ID; the rest match a single ID-less row of the same name.
func (x *index) find(e models.Entity) (int, bool) {
	if e.ID != "" {
		pos, ok := x.byID[e.ID]
		return pos, ok
	}
	var found []int
	for _, pos := range x.byName[e.Key()] {
		if x.ids[pos] == "" {
			found = append(found, pos)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return 0, false
}

func (x *index) resolve(rec models.SourceRecord) (int, joinStatus) {
	if rec.EntityID != "" {
		if pos, ok := x.byID[rec.EntityID]; ok {
			return pos, joinMatched
		}
	}

	var candidates []int
	for _, pos := range x.byName[rec.Key()] {
		// Both sides carry an ID and they differ: not the same entity
		if rec.EntityID != "" && x.ids[pos] != "" {
			continue
		}
		candidates = append(candidates, pos)
	}

	switch len(candidates) {
	case 0:
		return 0, joinMissed
	case 1:
		return candidates[0], joinMatched
	default:
		return 0, joinAmbiguous
	}
}
