package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFixtureFeed struct {
	items []ExternalFixture
	err   error
}

func (f *fakeFixtureFeed) FetchFixtures(context.Context) ([]ExternalFixture, error) {
	return f.items, f.err
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.calls++
}

type sequenceIDs struct {
	next int
}

func (s *sequenceIDs) NewID() (string, error) {
	s.next++
	return "generated-" + strconv.Itoa(s.next), nil
}

func newFixtureService(t *testing.T, env *testEnv, provider FixtureProvider, invalidator CacheInvalidator) *FixtureService {
	t.Helper()
	return NewFixtureService(FixtureServiceDeps{
		FixtureRepo: env.fixtureRepo,
		Windows:     env.windows,
		Provider:    provider,
		IDGenerator: &sequenceIDs{},
		Invalidator: invalidator,
		Clock:       func() time.Time { return env.now },
		Logger:      logging.NewNop(),
	})
}

func TestFixtureService_ImportSkipsInvalidRows(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	feed := &fakeFixtureFeed{items: []ExternalFixture{
		{ID: "odds-1", HomeTeam: " Kansas City Chiefs ", AwayTeam: "Buffalo Bills", KickoffAt: sundayEarly.Add(250 * time.Millisecond), HomeSpread: spreadOf(-3.5), AwaySpread: spreadOf(3.5)},
		{HomeTeam: "Detroit Lions", AwayTeam: "Minnesota Vikings", KickoffAt: sundayEarly},
		{ID: "odds-bad-spread", HomeTeam: "New York Jets", AwayTeam: "New England Patriots", KickoffAt: sundayEarly, HomeSpread: spreadOf(-3), AwaySpread: spreadOf(2)},
		{ID: "odds-same-team", HomeTeam: "Dallas Cowboys", AwayTeam: "dallas cowboys", KickoffAt: sundayEarly},
		{ID: "odds-no-kickoff", HomeTeam: "Miami Dolphins", AwayTeam: "Buffalo Bills"},
	}}
	invalidator := &countingInvalidator{}
	service := newFixtureService(t, env, feed, invalidator)

	report, err := service.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Fetched)
	assert.Equal(t, 2, report.Saved)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, time.Date(2026, 10, 21, 23, 0, 0, 0, time.UTC), report.Window.Start)
	assert.Equal(t, 1, invalidator.calls)

	stored, err := env.fixtureRepo.GetByIDs(context.Background(), []string{"odds-1", "generated-1"})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	byID := map[string]fixture.Fixture{}
	for _, item := range stored {
		byID[item.ID] = item
	}
	assert.Equal(t, "Kansas City Chiefs", byID["odds-1"].HomeTeam)
	assert.Equal(t, sundayEarly, byID["odds-1"].KickoffAt)
	assert.Equal(t, "Detroit Lions", byID["generated-1"].HomeTeam)
}

func TestFixtureService_ImportResetsWindow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	ctx := context.Background()
	_, err := env.windows.Active(ctx)
	require.NoError(t, err)

	// A week later the stored window is stale until the next import.
	env.now = testNow.AddDate(0, 0, 7)
	before, err := env.windows.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 21, 23, 0, 0, 0, time.UTC), before.Start)

	service := newFixtureService(t, env, &fakeFixtureFeed{}, nil)
	report, err := service.Import(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Saved)
	assert.Equal(t, time.Date(2026, 10, 29, 0, 0, 0, 0, time.UTC), report.Window.Start)

	after, err := env.windows.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Window, after)
}

func TestFixtureService_ImportFailures(t *testing.T) {
	t.Parallel()

	t.Run("provider not configured", func(t *testing.T) {
		env := newTestEnv(t, nil)
		service := NewFixtureService(FixtureServiceDeps{FixtureRepo: env.fixtureRepo, Windows: env.windows})
		_, err := service.Import(context.Background())
		require.ErrorIs(t, err, ErrProviderNotConfigured)
	})

	t.Run("provider error", func(t *testing.T) {
		env := newTestEnv(t, nil)
		service := newFixtureService(t, env, &fakeFixtureFeed{err: errors.New("quota exhausted")}, nil)
		_, err := service.Import(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exhausted")
		_, ok, getErr := env.windowRepo.Get(context.Background())
		require.NoError(t, getErr)
		assert.False(t, ok)
	})
}

func TestFixtureService_UpsertManualRejectsWholeBatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	service := newFixtureService(t, env, nil, nil)
	ctx := context.Background()

	_, err := service.UpsertManual(ctx, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.UpsertManual(ctx, []ExternalFixture{
		{ID: "manual-1", HomeTeam: "Chicago Bears", AwayTeam: "Green Bay Packers", KickoffAt: sundayEarly},
		{ID: "manual-2", HomeTeam: "Chicago Bears", AwayTeam: "", KickoffAt: sundayEarly},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "fixtures[1]")

	all, err := env.fixtureRepo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	report, err := service.UpsertManual(ctx, []ExternalFixture{
		{ID: "manual-1", HomeTeam: "Chicago Bears", AwayTeam: "Green Bay Packers", KickoffAt: sundayEarly, AwaySpread: spreadOf(-6.5)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Saved)

	all, err = env.fixtureRepo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	home, away := all[0].Spreads()
	require.NotNil(t, home)
	require.NotNil(t, away)
	assert.InDelta(t, 6.5, *home, fixture.SpreadTolerance)
	assert.InDelta(t, -6.5, *away, fixture.SpreadTolerance)
}

func TestFixtureService_ListActiveFlags(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	env.now = sundayEarly.Add(-2 * time.Hour)
	service := newFixtureService(t, env, nil, nil)

	require.NoError(t, env.windowRepo.Set(context.Background(), window.Compute(testNow, env.rules.Location)))

	views, active, err := service.ListActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 21, 23, 0, 0, 0, time.UTC), active.Start)
	require.Len(t, views, 7)

	byID := map[string]FixtureView{}
	for _, view := range views {
		byID[view.Fixture.ID] = view
	}
	assert.True(t, byID["fx-1"].Canonical)
	assert.False(t, byID["fx-1-dup"].Canonical)
	assert.Equal(t, byID["fx-1"].Matchkey, byID["fx-1-dup"].Matchkey)
	assert.True(t, byID["fx-1"].Locked)
	assert.False(t, byID["fx-1-dup"].Locked)
	assert.False(t, byID["fx-6"].Locked)
	_, present := byID["fx-next-week"]
	assert.False(t, present)

	for i := 1; i < len(views); i++ {
		assert.False(t, views[i].Fixture.KickoffAt.Before(views[i-1].Fixture.KickoffAt))
	}
}
