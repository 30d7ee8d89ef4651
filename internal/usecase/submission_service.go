package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/matchkey"
	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

type SubmissionService struct {
	windows     *WindowService
	fixtureRepo fixture.Repository
	pickRepo    pick.Repository
	invalidator CacheInvalidator
	rules       Rules
	clock       Clock
	logger      *logging.Logger
}

type SubmissionServiceDeps struct {
	Windows     *WindowService
	FixtureRepo fixture.Repository
	PickRepo    pick.Repository
	Invalidator CacheInvalidator
	Clock       Clock
	Logger      *logging.Logger
}

func NewSubmissionService(deps SubmissionServiceDeps) *SubmissionService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &SubmissionService{
		windows:     deps.Windows,
		fixtureRepo: deps.FixtureRepo,
		pickRepo:    deps.PickRepo,
		invalidator: deps.Invalidator,
		rules:       deps.Windows.Rules(),
		clock:       deps.Clock,
		logger:      logger,
	}
}

type Selection struct {
	FixtureID string `json:"fixture_id" validate:"required"`
	Team      string `json:"team" validate:"required"`
}

type SubmitPicksInput struct {
	PlayerID   string
	Selections []Selection
}

type SubmitPicksResult struct {
	Accepted         int `json:"accepted"`
	DuplicateDropped int `json:"duplicate_dropped"`
	AlreadyConfirmed int `json:"already_confirmed"`
	QuotaRejected    int `json:"quota_rejected"`
	ConfirmedBefore  int `json:"confirmed_before"`
	ConfirmedAfter   int `json:"confirmed_after"`
	Limit            int `json:"limit"`
}

// PickOption is one selectable side of an open canonical fixture.
type PickOption struct {
	Team      string
	Opponent  string
	FixtureID string
	Matchkey  string
	Fixture   fixture.Fixture
	Spread    *float64
}

// ConfirmedPick is a stored pick joined with its fixture.
type ConfirmedPick struct {
	Pick     pick.Pick
	Fixture  fixture.Fixture
	Matchkey string
	Locked   bool
}

// windowSnapshot is the state every submission decision is made against.
type windowSnapshot struct {
	active    window.Window
	index     *matchkey.Index
	confirmed map[matchkey.Key]struct{}
	picks     []pick.Pick
}

func (s *SubmissionService) loadSnapshot(ctx context.Context, playerID string) (windowSnapshot, error) {
	active, err := s.windows.Active(ctx)
	if err != nil {
		return windowSnapshot{}, err
	}
	items, err := s.fixtureRepo.ListByKickoffRange(ctx, active.Start, active.End)
	if err != nil {
		return windowSnapshot{}, fmt.Errorf("list fixtures in window: %w", err)
	}
	idx := matchkey.NewIndex(items)

	snapshot := windowSnapshot{
		active:    active,
		index:     idx,
		confirmed: make(map[matchkey.Key]struct{}),
	}
	if playerID == "" {
		return snapshot, nil
	}

	stored, err := s.pickRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return windowSnapshot{}, fmt.Errorf("list player picks: %w", err)
	}
	for _, item := range stored {
		key, ok := idx.KeyOf(item.FixtureID)
		if !ok {
			continue
		}
		snapshot.confirmed[key] = struct{}{}
		snapshot.picks = append(snapshot.picks, item)
	}
	return snapshot, nil
}

// Submit records new picks for the active window. Selections are resolved to
// the canonical fixture of their game; games already picked or repeated in the
// request are dropped, and novel games beyond the quota are rejected.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitPicksInput) (SubmitPicksResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.Submit")
	defer span.End()

	playerID := strings.TrimSpace(input.PlayerID)
	if playerID == "" {
		return SubmitPicksResult{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if len(input.Selections) == 0 {
		return SubmitPicksResult{}, fmt.Errorf("%w: at least one selection is required", ErrInvalidInput)
	}

	snapshot, err := s.loadSnapshot(ctx, playerID)
	if err != nil {
		return SubmitPicksResult{}, err
	}

	now := s.clock.now()
	type resolved struct {
		key   matchkey.Key
		entry pick.Pick
	}
	resolvedSelections := make([]resolved, 0, len(input.Selections))
	for i, sel := range input.Selections {
		item, ok := snapshot.index.Fixture(strings.TrimSpace(sel.FixtureID))
		if !ok {
			return SubmitPicksResult{}, fmt.Errorf("%w: selections[%d]: fixture %s is not in the active window", ErrInvalidInput, i, sel.FixtureID)
		}
		if !item.HasTeam(sel.Team) {
			return SubmitPicksResult{}, fmt.Errorf("%w: selections[%d]: team %q does not play in fixture %s", ErrInvalidInput, i, sel.Team, item.ID)
		}

		key, _ := snapshot.index.KeyOf(item.ID)
		if _, ok := snapshot.confirmed[key]; ok {
			// Re-sending a confirmed game is a no-op even after it locks.
			resolvedSelections = append(resolvedSelections, resolved{key: key})
			continue
		}
		canonical, _ := snapshot.index.Canonical(key)
		if canonical.LockedAt(now, s.rules.LockLead) {
			return SubmitPicksResult{}, fmt.Errorf("%w: selections[%d]: %s kicks off at %s", ErrFixtureLocked, i, canonical.Label(), canonical.KickoffAt.Format("2006-01-02T15:04Z07:00"))
		}
		team, ok := matchkey.TeamOn(canonical, sel.Team)
		if !ok {
			return SubmitPicksResult{}, fmt.Errorf("%w: selections[%d]: team %q not found on canonical fixture %s", ErrInvalidInput, i, sel.Team, canonical.ID)
		}

		resolvedSelections = append(resolvedSelections, resolved{
			key: key,
			entry: pick.Pick{
				PlayerID:  playerID,
				FixtureID: canonical.ID,
				Team:      team,
				CreatedAt: now,
			},
		})
	}

	out := SubmitPicksResult{
		ConfirmedBefore: len(snapshot.confirmed),
		Limit:           s.rules.MaxPicks,
	}
	seen := make(map[matchkey.Key]struct{}, len(resolvedSelections))
	novel := make([]pick.Pick, 0, len(resolvedSelections))
	for _, sel := range resolvedSelections {
		if _, ok := snapshot.confirmed[sel.key]; ok {
			out.AlreadyConfirmed++
			continue
		}
		if _, ok := seen[sel.key]; ok {
			out.DuplicateDropped++
			continue
		}
		seen[sel.key] = struct{}{}
		novel = append(novel, sel.entry)
	}

	if len(novel) > 0 && out.ConfirmedBefore >= s.rules.MaxPicks {
		return SubmitPicksResult{}, &QuotaExceededError{Limit: s.rules.MaxPicks, Confirmed: out.ConfirmedBefore}
	}
	if remaining := s.rules.MaxPicks - out.ConfirmedBefore; len(novel) > remaining {
		out.QuotaRejected = len(novel) - remaining
		novel = novel[:remaining]
	}

	out.ConfirmedAfter = out.ConfirmedBefore
	if len(novel) == 0 {
		return out, nil
	}

	quotaFixtureIDs := make([]string, 0, snapshot.index.Len())
	for _, item := range snapshot.index.CanonicalFixtures() {
		for _, member := range snapshot.index.Members(matchkey.ForFixture(item)) {
			quotaFixtureIDs = append(quotaFixtureIDs, member.ID)
		}
	}

	inserted, err := s.pickRepo.Append(ctx, pick.AppendRequest{
		PlayerID:        playerID,
		Picks:           novel,
		QuotaFixtureIDs: quotaFixtureIDs,
		Limit:           s.rules.MaxPicks,
	})
	if err != nil {
		if errors.Is(err, pick.ErrQuotaExceeded) {
			return SubmitPicksResult{}, &QuotaExceededError{Limit: s.rules.MaxPicks, Confirmed: out.ConfirmedBefore}
		}
		return SubmitPicksResult{}, fmt.Errorf("append picks: %w", err)
	}

	out.Accepted = inserted
	out.ConfirmedAfter = out.ConfirmedBefore + inserted
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}

	s.logger.InfoContext(ctx, "picks submitted",
		"player_id", playerID,
		"accepted", out.Accepted,
		"already_confirmed", out.AlreadyConfirmed,
		"duplicate_dropped", out.DuplicateDropped,
		"quota_rejected", out.QuotaRejected,
		"confirmed_after", out.ConfirmedAfter,
	)
	return out, nil
}

// PickOptions lists both sides of every open canonical fixture in the active
// window, ordered by team.
func (s *SubmissionService) PickOptions(ctx context.Context) ([]PickOption, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.PickOptions")
	defer span.End()

	snapshot, err := s.loadSnapshot(ctx, "")
	if err != nil {
		return nil, err
	}

	now := s.clock.now()
	var out []PickOption
	for _, item := range snapshot.index.CanonicalFixtures() {
		if item.LockedAt(now, s.rules.LockLead) {
			continue
		}
		key := matchkey.ForFixture(item).String()
		home, away := item.Spreads()
		out = append(out,
			PickOption{Team: item.HomeTeam, Opponent: item.AwayTeam, FixtureID: item.ID, Matchkey: key, Fixture: item, Spread: home},
			PickOption{Team: item.AwayTeam, Opponent: item.HomeTeam, FixtureID: item.ID, Matchkey: key, Fixture: item, Spread: away},
		)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		return out[i].FixtureID < out[j].FixtureID
	})
	return out, nil
}

// MyPicks returns the player's picks in the active window in kickoff order.
func (s *SubmissionService) MyPicks(ctx context.Context, playerID string) ([]ConfirmedPick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.MyPicks")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	snapshot, err := s.loadSnapshot(ctx, playerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.now()
	out := make([]ConfirmedPick, 0, len(snapshot.picks))
	for _, item := range snapshot.picks {
		f, _ := snapshot.index.Fixture(item.FixtureID)
		key, _ := snapshot.index.KeyOf(item.FixtureID)
		out = append(out, ConfirmedPick{
			Pick:     item,
			Fixture:  f,
			Matchkey: key.String(),
			Locked:   f.LockedAt(now, s.rules.LockLead),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Fixture.KickoffAt.Equal(out[j].Fixture.KickoffAt) {
			return out[i].Fixture.KickoffAt.Before(out[j].Fixture.KickoffAt)
		}
		return out[i].Fixture.ID < out[j].Fixture.ID
	})
	return out, nil
}
