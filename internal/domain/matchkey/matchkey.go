// Package matchkey identifies the same real-world game across duplicate
// fixture rows. A key is the unordered pair of normalized team names.
package matchkey

import (
	"strings"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
)

// Key is the sorted pair of lowercased, trimmed team names.
type Key struct {
	A string
	B string
}

func Normalize(team string) string {
	return strings.ToLower(strings.TrimSpace(team))
}

// Of is symmetric: Of(x, y) == Of(y, x).
func Of(home, away string) Key {
	a, b := Normalize(home), Normalize(away)
	if b < a {
		a, b = b, a
	}
	return Key{A: a, B: b}
}

func ForFixture(f fixture.Fixture) Key {
	return Of(f.HomeTeam, f.AwayTeam)
}

func (k Key) String() string {
	return k.A + "|" + k.B
}

func (k Key) IsZero() bool {
	return k.A == "" && k.B == ""
}

// Index groups fixtures by key and picks a canonical row per key: the
// earliest kickoff, ties broken by the smaller id.
type Index struct {
	byID      map[string]fixture.Fixture
	keyByID   map[string]Key
	members   map[Key][]string
	canonical map[Key]string
	keys      []Key
}

func NewIndex(items []fixture.Fixture) *Index {
	idx := &Index{
		byID:      make(map[string]fixture.Fixture, len(items)),
		keyByID:   make(map[string]Key, len(items)),
		members:   make(map[Key][]string),
		canonical: make(map[Key]string),
	}

	sorted := append([]fixture.Fixture(nil), items...)
	fixture.SortByKickoff(sorted)
	for _, item := range sorted {
		if _, seen := idx.byID[item.ID]; seen {
			continue
		}
		key := ForFixture(item)
		idx.byID[item.ID] = item
		idx.keyByID[item.ID] = key
		if _, ok := idx.canonical[key]; !ok {
			idx.canonical[key] = item.ID
			idx.keys = append(idx.keys, key)
		}
		idx.members[key] = append(idx.members[key], item.ID)
	}

	return idx
}

func (idx *Index) Fixture(id string) (fixture.Fixture, bool) {
	item, ok := idx.byID[id]
	return item, ok
}

func (idx *Index) KeyOf(fixtureID string) (Key, bool) {
	key, ok := idx.keyByID[fixtureID]
	return key, ok
}

func (idx *Index) Canonical(key Key) (fixture.Fixture, bool) {
	id, ok := idx.canonical[key]
	if !ok {
		return fixture.Fixture{}, false
	}
	return idx.byID[id], true
}

// IsCanonical reports whether fixtureID is the canonical row of its key.
func (idx *Index) IsCanonical(fixtureID string) bool {
	key, ok := idx.keyByID[fixtureID]
	return ok && idx.canonical[key] == fixtureID
}

// Members returns every fixture sharing key, in kickoff order.
func (idx *Index) Members(key Key) []fixture.Fixture {
	ids := idx.members[key]
	out := make([]fixture.Fixture, 0, len(ids))
	for _, id := range ids {
		out = append(out, idx.byID[id])
	}
	return out
}

// CanonicalFixtures returns one fixture per key in kickoff order.
func (idx *Index) CanonicalFixtures() []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(idx.keys))
	for _, key := range idx.keys {
		out = append(out, idx.byID[idx.canonical[key]])
	}
	return out
}

func (idx *Index) Len() int {
	return len(idx.byID)
}

// TeamOn returns the spelling target uses for the side matching team, so a
// pick made on a duplicate row can be recorded against the canonical row.
func TeamOn(target fixture.Fixture, team string) (string, bool) {
	switch Normalize(team) {
	case Normalize(target.HomeTeam):
		return target.HomeTeam, true
	case Normalize(target.AwayTeam):
		return target.AwayTeam, true
	}
	return "", false
}
