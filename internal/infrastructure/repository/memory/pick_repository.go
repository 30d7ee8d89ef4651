package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
)

type pickKey struct {
	playerID  string
	fixtureID string
}

// PickRepository keeps picks in insertion order. Append holds the write lock
// for the whole quota check and insert.
type PickRepository struct {
	mu    sync.RWMutex
	picks []pick.Pick
	index map[pickKey]struct{}
}

func NewPickRepository() *PickRepository {
	return &PickRepository{index: make(map[pickKey]struct{})}
}

func (r *PickRepository) Append(_ context.Context, req pick.AppendRequest) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	quotaFixtures := make(map[string]struct{}, len(req.QuotaFixtureIDs))
	for _, id := range req.QuotaFixtureIDs {
		quotaFixtures[id] = struct{}{}
	}
	existing := 0
	for _, item := range r.picks {
		if item.PlayerID != req.PlayerID {
			continue
		}
		if _, ok := quotaFixtures[item.FixtureID]; ok {
			existing++
		}
	}

	fresh := make([]pick.Pick, 0, len(req.Picks))
	batch := make(map[pickKey]struct{}, len(req.Picks))
	for _, item := range req.Picks {
		if item.PlayerID != req.PlayerID {
			return 0, fmt.Errorf("pick for player %s in append for player %s", item.PlayerID, req.PlayerID)
		}
		key := pickKey{playerID: item.PlayerID, fixtureID: item.FixtureID}
		if _, ok := r.index[key]; ok {
			continue
		}
		if _, ok := batch[key]; ok {
			continue
		}
		batch[key] = struct{}{}
		fresh = append(fresh, item)
	}

	if req.Limit > 0 && existing+len(fresh) > req.Limit {
		return 0, fmt.Errorf("%w: %d stored, %d new, limit %d", pick.ErrQuotaExceeded, existing, len(fresh), req.Limit)
	}

	for _, item := range fresh {
		r.index[pickKey{playerID: item.PlayerID, fixtureID: item.FixtureID}] = struct{}{}
		r.picks = append(r.picks, item)
	}
	return len(fresh), nil
}

func (r *PickRepository) ListByPlayer(_ context.Context, playerID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.picks {
		if item.PlayerID == playerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *PickRepository) ListByFixtureIDs(_ context.Context, fixtureIDs []string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(fixtureIDs))
	for _, id := range fixtureIDs {
		wanted[id] = struct{}{}
	}
	out := make([]pick.Pick, 0)
	for _, item := range r.picks {
		if _, ok := wanted[item.FixtureID]; ok {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}
