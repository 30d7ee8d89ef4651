package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/publishedweek"
	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sundayScoreboard() *fakeScoreboard {
	return &fakeScoreboard{
		records: map[string][]result.External{
			"2026-10-25": {
				{HomeTeam: "Buffalo Bills", AwayTeam: "Kansas City Chiefs", HomeScore: 24, AwayScore: 20},
				{HomeTeam: "Philadelphia Eagles", AwayTeam: "Dallas Cowboys", HomeScore: 17, AwayScore: 17},
				{HomeTeam: "Tennessee Titans", AwayTeam: "Denver Broncos", HomeScore: 30, AwayScore: 3},
			},
		},
	}
}

func scoresByFixture(t *testing.T, repo result.Repository) map[string][2]int {
	t.Helper()
	rows, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	out := make(map[string][2]int, len(rows))
	for _, row := range rows {
		out[row.FixtureID] = [2]int{row.HomeScore, row.AwayScore}
	}
	return out
}

func TestResultIngestionService_WritesAllDuplicatesAndPublishes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	provider := sundayScoreboard()
	publisher := &recordingPublisher{}
	service := env.ingestion(provider, publisher)

	report, err := service.IngestActiveWindow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, report.Days)
	assert.Len(t, provider.calls, 6)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 3, report.Saved)
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, "Tennessee Titans", report.Unmatched[0].HomeTeam)

	scores := scoresByFixture(t, env.resultRepo)
	assert.Equal(t, [2]int{20, 24}, scores["fx-1"])
	assert.Equal(t, [2]int{24, 20}, scores["fx-1-dup"])
	assert.Equal(t, [2]int{17, 17}, scores["fx-2"])

	week, published, err := env.resultRepo.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, published)
	assert.Equal(t, publishedweek.Week{Year: 2026, Week: 43}, week)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, 3, publisher.events[0].Saved)
	assert.Equal(t, 1, publisher.events[0].Unmatched)
}

func TestResultIngestionService_Idempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	service := env.ingestion(sundayScoreboard(), nil)

	_, err := service.IngestActiveWindow(context.Background())
	require.NoError(t, err)
	first := scoresByFixture(t, env.resultRepo)
	firstWeek, _, err := env.resultRepo.Get(context.Background())
	require.NoError(t, err)

	env.now = env.now.Add(time.Hour)
	_, err = service.IngestActiveWindow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, scoresByFixture(t, env.resultRepo))
	secondWeek, _, err := env.resultRepo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, firstWeek, secondWeek)
}

func TestResultIngestionService_SkipsAmbiguousRecords(t *testing.T) {
	t.Parallel()

	items := append(testFixtures(), fixture.Fixture{
		ID:        "fx-7",
		HomeTeam:  "New York Giants",
		AwayTeam:  "New England Patriots",
		KickoffAt: sundayEarly.Add(3 * time.Hour),
	})
	env := newTestEnv(t, items)
	provider := &fakeScoreboard{records: map[string][]result.External{
		"2026-10-25": {
			{HomeTeam: "New York Giants", AwayTeam: "New England Patriots", HomeScore: 10, AwayScore: 13},
			{HomeTeam: "Detroit Lions", AwayTeam: "Minnesota Vikings", HomeScore: 27, AwayScore: 24},
		},
	}}

	report, err := env.ingestion(provider, nil).IngestActiveWindow(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Ambiguous, 1)
	assert.Equal(t, []string{"new england patriots|new york giants", "new england patriots|new york jets"}, report.Ambiguous[0].Matchkeys)
	assert.Equal(t, 1, report.Saved)

	scores := scoresByFixture(t, env.resultRepo)
	assert.NotContains(t, scores, "fx-4")
	assert.NotContains(t, scores, "fx-7")
	assert.Equal(t, [2]int{27, 24}, scores["fx-6"])
}

func TestResultIngestionService_SkipsNegativeScores(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	provider := sundayScoreboard()
	provider.records["2026-10-25"][1] = result.External{HomeTeam: "Philadelphia Eagles", AwayTeam: "Dallas Cowboys", HomeScore: -1, AwayScore: 17}

	report, err := env.ingestion(provider, nil).IngestActiveWindow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 2, report.Saved)

	scores := scoresByFixture(t, env.resultRepo)
	assert.NotContains(t, scores, "fx-2")
	assert.Equal(t, [2]int{20, 24}, scores["fx-1"])
}

func TestResultIngestionService_FailedDayIsSkipped(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	provider := sundayScoreboard()
	provider.errs = map[string]error{"2026-10-21": errors.New("upstream timeout")}

	report, err := env.ingestion(provider, nil).IngestActiveWindow(context.Background())
	require.NoError(t, err)

	require.Len(t, report.FailedDays, 1)
	assert.Equal(t, "2026-10-21", report.FailedDays[0].Date)
	assert.Equal(t, 3, report.Saved)
}

func TestResultIngestionService_NoMatchLeavesWeekUnset(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	provider := &fakeScoreboard{records: map[string][]result.External{
		"2026-10-25": {{HomeTeam: "Tennessee Titans", AwayTeam: "Denver Broncos", HomeScore: 30, AwayScore: 3}},
	}}
	publisher := &recordingPublisher{}

	_, err := env.ingestion(provider, publisher).IngestActiveWindow(context.Background())
	require.ErrorIs(t, err, ErrNoResultsMatched)

	_, published, err := env.resultRepo.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, published)
	assert.Empty(t, publisher.events)
}

func TestResultIngestionService_NoFixturesInWindow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	_, err := env.ingestion(sundayScoreboard(), nil).IngestActiveWindow(context.Background())
	require.ErrorIs(t, err, ErrNoFixturesInWindow)
}

func TestResultIngestionService_PublisherFailureDoesNotFailIngestion(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	publisher := &recordingPublisher{err: errors.New("redis down")}

	report, err := env.ingestion(sundayScoreboard(), publisher).IngestActiveWindow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Saved)
}

func TestResultIngestionService_ProviderNotConfigured(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	_, err := env.ingestion(nil, nil).IngestActiveWindow(context.Background())
	require.ErrorIs(t, err, ErrProviderNotConfigured)
}
