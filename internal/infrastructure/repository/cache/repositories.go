package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/publishedweek"
	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	basecache "github.com/riskibarqy/nfl-pickem/internal/platform/cache"
)

const (
	windowKey        = "window:active"
	publishedWeekKey = "published-week:current"
	fixturePrefix    = "fixture:"
)

// WindowRepository caches the active window, read on nearly every request.
type WindowRepository struct {
	next  window.Repository
	cache *basecache.Store
}

func NewWindowRepository(next window.Repository, cache *basecache.Store) *WindowRepository {
	return &WindowRepository{next: next, cache: cache}
}

type cachedWindow struct {
	value  window.Window
	exists bool
}

func (r *WindowRepository) Get(ctx context.Context) (window.Window, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, windowKey, func(ctx context.Context) (cachedWindow, error) {
		item, exists, err := r.next.Get(ctx)
		if err != nil {
			return cachedWindow{}, err
		}
		return cachedWindow{value: item, exists: exists}, nil
	})
	if err != nil {
		return window.Window{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *WindowRepository) Set(ctx context.Context, w window.Window) error {
	if err := r.next.Set(ctx, w); err != nil {
		return err
	}
	r.cache.Delete(ctx, windowKey)
	return nil
}

// ResultStore is a result repository that also owns the published week.
type ResultStore interface {
	result.Repository
	publishedweek.Repository
}

// ResultRepository caches the published week and drops it when results are
// saved.
type ResultRepository struct {
	next  ResultStore
	cache *basecache.Store
}

func NewResultRepository(next ResultStore, cache *basecache.Store) *ResultRepository {
	return &ResultRepository{next: next, cache: cache}
}

type cachedWeek struct {
	value  publishedweek.Week
	exists bool
}

func (r *ResultRepository) SaveAndPublish(ctx context.Context, items []result.Result, week publishedweek.Week) (int, error) {
	saved, err := r.next.SaveAndPublish(ctx, items, week)
	r.cache.Delete(ctx, publishedWeekKey)
	return saved, err
}

func (r *ResultRepository) ListByFixtureIDs(ctx context.Context, fixtureIDs []string) ([]result.Result, error) {
	return r.next.ListByFixtureIDs(ctx, fixtureIDs)
}

func (r *ResultRepository) ListAll(ctx context.Context) ([]result.Result, error) {
	return r.next.ListAll(ctx)
}

func (r *ResultRepository) Get(ctx context.Context) (publishedweek.Week, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, publishedWeekKey, func(ctx context.Context) (cachedWeek, error) {
		item, exists, err := r.next.Get(ctx)
		if err != nil {
			return cachedWeek{}, err
		}
		return cachedWeek{value: item, exists: exists}, nil
	})
	if err != nil {
		return publishedweek.Week{}, false, err
	}
	return cached.value, cached.exists, nil
}

// FixtureRepository caches kickoff range listings. Any upsert drops every
// cached range.
type FixtureRepository struct {
	next  fixture.Repository
	cache *basecache.Store
}

func NewFixtureRepository(next fixture.Repository, cache *basecache.Store) *FixtureRepository {
	return &FixtureRepository{next: next, cache: cache}
}

func (r *FixtureRepository) UpsertMany(ctx context.Context, items []fixture.Fixture) error {
	err := r.next.UpsertMany(ctx, items)
	r.cache.DeletePrefix(ctx, fixturePrefix)
	return err
}

func (r *FixtureRepository) ListByKickoffRange(ctx context.Context, start, end time.Time) ([]fixture.Fixture, error) {
	key := fixturePrefix + "range:" + start.UTC().Format(time.RFC3339) + "|" + end.UTC().Format(time.RFC3339)
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]fixture.Fixture, error) {
		return r.next.ListByKickoffRange(ctx, start, end)
	})
	if err != nil {
		return nil, err
	}
	return append([]fixture.Fixture(nil), items...), nil
}

func (r *FixtureRepository) ListAll(ctx context.Context) ([]fixture.Fixture, error) {
	return r.next.ListAll(ctx)
}

func (r *FixtureRepository) GetByIDs(ctx context.Context, fixtureIDs []string) ([]fixture.Fixture, error) {
	return r.next.GetByIDs(ctx, fixtureIDs)
}
