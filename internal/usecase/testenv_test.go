package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	"github.com/riskibarqy/nfl-pickem/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nfl-pickem/internal/platform/cache"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

// Saturday before the week 43 window: Thu 22 Oct 2026 00:00 IST to Tue 27 Oct 00:00 GMT.
var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

var sundayEarly = time.Date(2026, 10, 25, 17, 0, 0, 0, time.UTC)

func spreadOf(v float64) *float64 { return &v }

func testFixtures() []fixture.Fixture {
	return []fixture.Fixture{
		{ID: "fx-1", HomeTeam: "Kansas City Chiefs", AwayTeam: "Buffalo Bills", KickoffAt: sundayEarly, HomeSpread: spreadOf(-3.5)},
		{ID: "fx-1-dup", HomeTeam: "Buffalo Bills", AwayTeam: "Kansas City Chiefs", KickoffAt: sundayEarly.Add(time.Hour), HomeSpread: spreadOf(3.5)},
		{ID: "fx-2", HomeTeam: "Philadelphia Eagles", AwayTeam: "Dallas Cowboys", KickoffAt: sundayEarly, HomeSpread: spreadOf(-2.5), AwaySpread: spreadOf(2.5)},
		{ID: "fx-3", HomeTeam: "San Francisco 49ers", AwayTeam: "Seattle Seahawks", KickoffAt: sundayEarly.Add(3 * time.Hour), AwaySpread: spreadOf(4)},
		{ID: "fx-4", HomeTeam: "New York Jets", AwayTeam: "New England Patriots", KickoffAt: sundayEarly, HomeSpread: spreadOf(1)},
		{ID: "fx-5", HomeTeam: "Baltimore Ravens", AwayTeam: "Pittsburgh Steelers", KickoffAt: sundayEarly.Add(7 * time.Hour)},
		{ID: "fx-6", HomeTeam: "Detroit Lions", AwayTeam: "Minnesota Vikings", KickoffAt: sundayEarly.Add(27 * time.Hour), HomeSpread: spreadOf(-3)},
		{ID: "fx-next-week", HomeTeam: "Green Bay Packers", AwayTeam: "Chicago Bears", KickoffAt: sundayEarly.AddDate(0, 0, 7)},
	}
}

type testEnv struct {
	now         time.Time
	rules       Rules
	fixtureRepo *memory.FixtureRepository
	pickRepo    *memory.PickRepository
	resultRepo  *memory.ResultRepository
	playerRepo  *memory.PlayerRepository
	windowRepo  *memory.WindowRepository

	windows     *WindowService
	submissions *SubmissionService
	leaderboard *LeaderboardService
}

func newTestEnv(t *testing.T, fixtures []fixture.Fixture) *testEnv {
	t.Helper()

	rules := DefaultRules()
	require.Equal(t, window.DefaultZone, rules.Location.String())

	env := &testEnv{
		now:         testNow,
		rules:       rules,
		fixtureRepo: memory.NewFixtureRepository(fixtures),
		pickRepo:    memory.NewPickRepository(),
		resultRepo:  memory.NewResultRepository(),
		playerRepo:  memory.NewPlayerRepository(nil),
		windowRepo:  memory.NewWindowRepository(),
	}
	clock := func() time.Time { return env.now }
	logger := logging.NewNop()

	env.windows = NewWindowService(env.windowRepo, rules, clock, logger)
	env.leaderboard = NewLeaderboardService(LeaderboardServiceDeps{
		Windows:     env.windows,
		FixtureRepo: env.fixtureRepo,
		PickRepo:    env.pickRepo,
		ResultRepo:  env.resultRepo,
		PlayerRepo:  env.playerRepo,
		WeekRepo:    env.resultRepo,
		Cache:       cache.NewStore(time.Minute),
		Clock:       clock,
		Logger:      logger,
	})
	env.submissions = NewSubmissionService(SubmissionServiceDeps{
		Windows:     env.windows,
		FixtureRepo: env.fixtureRepo,
		PickRepo:    env.pickRepo,
		Invalidator: env.leaderboard,
		Clock:       clock,
		Logger:      logger,
	})
	return env
}

func (e *testEnv) ingestion(provider ScoreboardProvider, publisher ResultsPublisher) *ResultIngestionService {
	return NewResultIngestionService(ResultIngestionServiceDeps{
		Windows:     e.windows,
		FixtureRepo: e.fixtureRepo,
		ResultRepo:  e.resultRepo,
		Provider:    provider,
		Publisher:   publisher,
		Invalidator: e.leaderboard,
		Workers:     2,
		Clock:       func() time.Time { return e.now },
		Logger:      logging.NewNop(),
	})
}

func (e *testEnv) submit(t *testing.T, playerID string, selections ...Selection) (SubmitPicksResult, error) {
	t.Helper()
	return e.submissions.Submit(context.Background(), SubmitPicksInput{PlayerID: playerID, Selections: selections})
}

// fakeScoreboard serves canned records keyed by UTC date.
type fakeScoreboard struct {
	mu      sync.Mutex
	records map[string][]result.External
	errs    map[string]error
	calls   []string
}

func (f *fakeScoreboard) FetchScoreboard(_ context.Context, date time.Time) ([]result.External, error) {
	key := date.Format("2006-01-02")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.records[key], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ResultsPublishedEvent
	err    error
}

func (p *recordingPublisher) PublishResults(_ context.Context, event ResultsPublishedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}
