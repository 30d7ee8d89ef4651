package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	"github.com/riskibarqy/nfl-pickem/internal/infrastructure/repository/memory"
	fixturemock "github.com/riskibarqy/nfl-pickem/internal/mocks/domain/fixture"
	pickmock "github.com/riskibarqy/nfl-pickem/internal/mocks/domain/pick"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubmissionService_PartialQuotaAcceptance(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	_, err := env.submit(t, "p1",
		Selection{FixtureID: "fx-1", Team: "Buffalo Bills"},
		Selection{FixtureID: "fx-2", Team: "Dallas Cowboys"},
		Selection{FixtureID: "fx-3", Team: "Seattle Seahawks"},
		Selection{FixtureID: "fx-4", Team: "New York Jets"},
	)
	require.NoError(t, err)

	got, err := env.submit(t, "p1",
		Selection{FixtureID: "fx-5", Team: "Baltimore Ravens"},
		Selection{FixtureID: "fx-6", Team: "Detroit Lions"},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Accepted)
	assert.Equal(t, 1, got.QuotaRejected)
	assert.Equal(t, 4, got.ConfirmedBefore)
	assert.Equal(t, 5, got.ConfirmedAfter)
	assert.Equal(t, 5, got.Limit)

	stored, err := env.pickRepo.ListByPlayer(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, stored, 5)
	assert.Equal(t, "fx-5", stored[4].FixtureID)
}

func TestSubmissionService_QuotaFullRejectsWithoutMutation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	_, err := env.submit(t, "p1",
		Selection{FixtureID: "fx-1", Team: "Buffalo Bills"},
		Selection{FixtureID: "fx-2", Team: "Dallas Cowboys"},
		Selection{FixtureID: "fx-3", Team: "Seattle Seahawks"},
		Selection{FixtureID: "fx-4", Team: "New York Jets"},
		Selection{FixtureID: "fx-5", Team: "Baltimore Ravens"},
	)
	require.NoError(t, err)

	_, err = env.submit(t, "p1", Selection{FixtureID: "fx-6", Team: "Detroit Lions"})
	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 5, quotaErr.Confirmed)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	// Re-sending an already confirmed game is not novel, so it is not a quota error.
	got, err := env.submit(t, "p1", Selection{FixtureID: "fx-1", Team: "Kansas City Chiefs"})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Accepted)
	assert.Equal(t, 1, got.AlreadyConfirmed)

	stored, err := env.pickRepo.ListByPlayer(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, stored, 5)
	assert.Equal(t, "Buffalo Bills", stored[0].Team)
}

func TestSubmissionService_DuplicateFixtureResolvesToCanonical(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	got, err := env.submit(t, "p1",
		Selection{FixtureID: "fx-1-dup", Team: "Buffalo Bills"},
		Selection{FixtureID: "fx-1", Team: "Kansas City Chiefs"},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Accepted)
	assert.Equal(t, 1, got.DuplicateDropped)

	stored, err := env.pickRepo.ListByPlayer(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "fx-1", stored[0].FixtureID)
	assert.Equal(t, "Buffalo Bills", stored[0].Team)

	got, err = env.submit(t, "p1", Selection{FixtureID: "fx-1-dup", Team: "Kansas City Chiefs"})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Accepted)
	assert.Equal(t, 1, got.AlreadyConfirmed)
}

func TestSubmissionService_InvalidSelectionFailsWholeCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bad  Selection
	}{
		{name: "unknown fixture", bad: Selection{FixtureID: "missing", Team: "Buffalo Bills"}},
		{name: "outside window", bad: Selection{FixtureID: "fx-next-week", Team: "Chicago Bears"}},
		{name: "team not in fixture", bad: Selection{FixtureID: "fx-2", Team: "Buffalo Bills"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, testFixtures())
			_, err := env.submit(t, "p1", Selection{FixtureID: "fx-3", Team: "Seattle Seahawks"}, tc.bad)
			require.ErrorIs(t, err, ErrInvalidInput)

			stored, err := env.pickRepo.ListByPlayer(context.Background(), "p1")
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestSubmissionService_LockLead(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	require.NoError(t, env.windowRepo.Set(context.Background(), window.Compute(testNow, env.rules.Location)))

	env.now = sundayEarly.Add(-2 * time.Hour)
	_, err := env.submit(t, "p1", Selection{FixtureID: "fx-2", Team: "Dallas Cowboys"})
	require.ErrorIs(t, err, ErrFixtureLocked)
	require.ErrorIs(t, err, ErrInvalidInput)

	env.now = sundayEarly.Add(-2*time.Hour - time.Second)
	got, err := env.submit(t, "p1", Selection{FixtureID: "fx-2", Team: "Dallas Cowboys"})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Accepted)
}

func TestSubmissionService_LockedConfirmedGameIsDroppedNotRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	require.NoError(t, env.windowRepo.Set(context.Background(), window.Compute(testNow, env.rules.Location)))

	_, err := env.submit(t, "p1", Selection{FixtureID: "fx-2", Team: "Dallas Cowboys"})
	require.NoError(t, err)

	env.now = sundayEarly.Add(-time.Hour)
	got, err := env.submit(t, "p1",
		Selection{FixtureID: "fx-2", Team: "Dallas Cowboys"},
		Selection{FixtureID: "fx-6", Team: "Detroit Lions"},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Accepted)
	assert.Equal(t, 1, got.AlreadyConfirmed)
	assert.Equal(t, 2, got.ConfirmedAfter)

	// A locked game the player never picked still fails the call.
	_, err = env.submit(t, "p1", Selection{FixtureID: "fx-4", Team: "New York Jets"})
	require.ErrorIs(t, err, ErrFixtureLocked)
}

func TestSubmissionService_LockFollowsCanonicalFixture(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	require.NoError(t, env.windowRepo.Set(context.Background(), window.Compute(testNow, env.rules.Location)))

	// The duplicate kicks off an hour later but the canonical row is already locked.
	env.now = sundayEarly.Add(-90 * time.Minute)
	_, err := env.submit(t, "p1", Selection{FixtureID: "fx-1-dup", Team: "Buffalo Bills"})
	require.ErrorIs(t, err, ErrFixtureLocked)
}

func TestSubmissionService_PickOptions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	options, err := env.submissions.PickOptions(context.Background())
	require.NoError(t, err)

	require.Len(t, options, 12)
	assert.Equal(t, "Baltimore Ravens", options[0].Team)
	for i := 1; i < len(options); i++ {
		assert.LessOrEqual(t, options[i-1].Team, options[i].Team)
		assert.NotEqual(t, "fx-1-dup", options[i].FixtureID)
	}

	for _, option := range options {
		if option.Team == "Buffalo Bills" {
			require.NotNil(t, option.Spread)
			assert.Equal(t, 3.5, *option.Spread)
		}
	}
}

func TestSubmissionService_MyPicksInKickoffOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testFixtures())
	_, err := env.submit(t, "p1",
		Selection{FixtureID: "fx-6", Team: "Detroit Lions"},
		Selection{FixtureID: "fx-3", Team: "Seattle Seahawks"},
		Selection{FixtureID: "fx-2", Team: "Dallas Cowboys"},
	)
	require.NoError(t, err)

	got, err := env.submissions.MyPicks(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"fx-2", "fx-3", "fx-6"}, []string{got[0].Fixture.ID, got[1].Fixture.ID, got[2].Fixture.ID})
	assert.Equal(t, "dallas cowboys|philadelphia eagles", got[0].Matchkey)
}

func TestSubmissionService_ConcurrentQuotaRaceUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fixtureRepo := fixturemock.NewRepository(t)
	pickRepo := pickmock.NewRepository(t)
	windowRepo := memory.NewWindowRepository()
	rules := DefaultRules()
	clock := func() time.Time { return testNow }
	active := window.Compute(testNow, rules.Location)
	require.NoError(t, windowRepo.Set(ctx, active))

	items := testFixtures()[:3]
	fixtureRepo.
		On("ListByKickoffRange", mock.Anything, active.Start, active.End).
		Return(append([]fixture.Fixture(nil), items...), nil).
		Once()
	pickRepo.
		On("ListByPlayer", mock.Anything, "p1").
		Return([]pick.Pick{}, nil).
		Once()
	pickRepo.
		On("Append", mock.Anything, mock.MatchedBy(func(req pick.AppendRequest) bool {
			return req.PlayerID == "p1" && req.Limit == 5 && len(req.Picks) == 1 && len(req.QuotaFixtureIDs) == 3
		})).
		Return(0, pick.ErrQuotaExceeded).
		Once()

	service := NewSubmissionService(SubmissionServiceDeps{
		Windows:     NewWindowService(windowRepo, rules, clock, logging.NewNop()),
		FixtureRepo: fixtureRepo,
		PickRepo:    pickRepo,
		Clock:       clock,
	})

	_, err := service.Submit(ctx, SubmitPicksInput{
		PlayerID:   "p1",
		Selections: []Selection{{FixtureID: "fx-2", Team: "Philadelphia Eagles"}},
	})
	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 5, quotaErr.Limit)
}
