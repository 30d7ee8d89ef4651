package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	fixtures map[string]fixture.Fixture
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	byID := make(map[string]fixture.Fixture, len(fixtures))
	for _, item := range fixtures {
		byID[item.ID] = item
	}
	return &FixtureRepository{fixtures: byID}
}

func (r *FixtureRepository) UpsertMany(_ context.Context, items []fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		item.KickoffAt = item.KickoffAt.UTC()
		r.fixtures[item.ID] = item
	}
	return nil
}

func (r *FixtureRepository) ListByKickoffRange(_ context.Context, start, end time.Time) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0)
	for _, item := range r.fixtures {
		if !item.KickoffAt.Before(start) && item.KickoffAt.Before(end) {
			out = append(out, item)
		}
	}
	fixture.SortByKickoff(out)
	return out, nil
}

func (r *FixtureRepository) ListAll(_ context.Context) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, len(r.fixtures))
	for _, item := range r.fixtures {
		out = append(out, item)
	}
	fixture.SortByKickoff(out)
	return out, nil
}

func (r *FixtureRepository) GetByIDs(_ context.Context, ids []string) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, len(ids))
	for _, id := range uniqueStrings(ids) {
		if item, ok := r.fixtures[id]; ok {
			out = append(out, item)
		}
	}
	fixture.SortByKickoff(out)
	return out, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
