package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/nfl-pickem/internal/domain/publishedweek"
	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
)

// ResultRepository stores results and the published week behind one lock so
// SaveAndPublish is atomic.
type ResultRepository struct {
	mu        sync.RWMutex
	results   map[string]result.Result
	week      publishedweek.Week
	published bool
}

func NewResultRepository() *ResultRepository {
	return &ResultRepository{results: make(map[string]result.Result)}
}

func (r *ResultRepository) SaveAndPublish(_ context.Context, items []result.Result, week publishedweek.Week) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.results[item.FixtureID] = item
	}
	if len(items) > 0 {
		r.week = week
		r.published = true
	}
	return len(items), nil
}

func (r *ResultRepository) ListByFixtureIDs(_ context.Context, fixtureIDs []string) ([]result.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]result.Result, 0, len(fixtureIDs))
	for _, id := range uniqueStrings(fixtureIDs) {
		if item, ok := r.results[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *ResultRepository) ListAll(_ context.Context) ([]result.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]result.Result, 0, len(r.results))
	for _, item := range r.results {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FixtureID < out[j].FixtureID
	})
	return out, nil
}

// Get implements publishedweek.Repository.
func (r *ResultRepository) Get(_ context.Context) (publishedweek.Week, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.week, r.published, nil
}
