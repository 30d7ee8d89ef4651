package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nfl-pickem/internal/domain/player"
	"github.com/riskibarqy/nfl-pickem/internal/domain/publishedweek"
	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
	"github.com/riskibarqy/nfl-pickem/internal/domain/scoring"
	"github.com/riskibarqy/nfl-pickem/internal/platform/cache"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const leaderboardCacheKey = "leaderboard:all"

type LeaderboardService struct {
	windows     *WindowService
	fixtureRepo fixture.Repository
	pickRepo    pick.Repository
	resultRepo  result.Repository
	playerRepo  player.Repository
	weekRepo    publishedweek.Repository
	cache       *cache.Store
	rules       Rules
	clock       Clock
	logger      *logging.Logger
}

type LeaderboardServiceDeps struct {
	Windows     *WindowService
	FixtureRepo fixture.Repository
	PickRepo    pick.Repository
	ResultRepo  result.Repository
	PlayerRepo  player.Repository
	WeekRepo    publishedweek.Repository
	// Cache is optional; nil disables leaderboard caching.
	Cache  *cache.Store
	Clock  Clock
	Logger *logging.Logger
}

func NewLeaderboardService(deps LeaderboardServiceDeps) *LeaderboardService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		windows:     deps.Windows,
		fixtureRepo: deps.FixtureRepo,
		pickRepo:    deps.PickRepo,
		resultRepo:  deps.ResultRepo,
		playerRepo:  deps.PlayerRepo,
		weekRepo:    deps.WeekRepo,
		cache:       deps.Cache,
		rules:       deps.Windows.Rules(),
		clock:       deps.Clock,
		logger:      logger,
	}
}

type LeaderboardRow struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Points      int    `json:"points"`
	Played      int    `json:"played"`
	Wins        int    `json:"wins"`
	Pushes      int    `json:"pushes"`
	Losses      int    `json:"losses"`
}

type Viewer struct {
	PlayerID   string
	Privileged bool
}

type ResultCell struct {
	Team      string          `json:"team"`
	FixtureID string          `json:"fixture_id"`
	Opponent  string          `json:"opponent"`
	KickoffAt time.Time       `json:"kickoff_at"`
	Outcome   scoring.Outcome `json:"outcome"`
}

type ResultsBoardRow struct {
	PlayerID    string       `json:"player_id"`
	DisplayName string       `json:"display_name"`
	Points      int          `json:"points"`
	Cells       []ResultCell `json:"cells"`
}

// ResultsBoard is the per-player pick table for one week.
type ResultsBoard struct {
	Published    bool               `json:"published"`
	Preview      bool               `json:"preview"`
	Week         publishedweek.Week `json:"-"`
	PreviousWeek publishedweek.Week `json:"-"`
	HasResults   bool               `json:"has_results"`
	Rows         []ResultsBoardRow  `json:"rows"`
}

type SelectionCount struct {
	Team       string `json:"team"`
	Selections int    `json:"selections"`
}

// Invalidate drops the cached leaderboard.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	s.cache.DeletePrefix(ctx, "leaderboard:")
}

// Leaderboard ranks non-privileged players by points over every graded pick.
// Ties keep the player listing order.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Leaderboard")
	defer span.End()

	rows, err := cache.Load(ctx, s.cache, leaderboardCacheKey, s.computeLeaderboard)
	if err != nil {
		return nil, err
	}
	return append([]LeaderboardRow(nil), rows...), nil
}

type gradingSnapshot struct {
	players  []player.Player
	fixtures map[string]fixture.Fixture
	results  map[string]result.Result
	picks    []pick.Pick
}

// loadGradingSnapshot loads players and results, then the picks and fixtures
// that have a result.
func (s *LeaderboardService) loadGradingSnapshot(ctx context.Context) (gradingSnapshot, error) {
	var snapshot gradingSnapshot
	var resultRows []result.Result

	first := pool.New().WithContext(ctx).WithCancelOnError()
	first.Go(func(ctx context.Context) error {
		items, err := s.playerRepo.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		snapshot.players = items
		return nil
	})
	first.Go(func(ctx context.Context) error {
		items, err := s.resultRepo.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		resultRows = items
		return nil
	})
	if err := first.Wait(); err != nil {
		return gradingSnapshot{}, err
	}

	snapshot.results = make(map[string]result.Result, len(resultRows))
	fixtureIDs := make([]string, 0, len(resultRows))
	for _, row := range resultRows {
		snapshot.results[row.FixtureID] = row
		fixtureIDs = append(fixtureIDs, row.FixtureID)
	}
	if len(fixtureIDs) == 0 {
		snapshot.fixtures = map[string]fixture.Fixture{}
		return snapshot, nil
	}

	var fixtureRows []fixture.Fixture
	second := pool.New().WithContext(ctx).WithCancelOnError()
	second.Go(func(ctx context.Context) error {
		items, err := s.fixtureRepo.GetByIDs(ctx, fixtureIDs)
		if err != nil {
			return fmt.Errorf("get graded fixtures: %w", err)
		}
		fixtureRows = items
		return nil
	})
	second.Go(func(ctx context.Context) error {
		items, err := s.pickRepo.ListByFixtureIDs(ctx, fixtureIDs)
		if err != nil {
			return fmt.Errorf("list graded picks: %w", err)
		}
		snapshot.picks = items
		return nil
	})
	if err := second.Wait(); err != nil {
		return gradingSnapshot{}, err
	}

	snapshot.fixtures = make(map[string]fixture.Fixture, len(fixtureRows))
	for _, item := range fixtureRows {
		snapshot.fixtures[item.ID] = item
	}
	return snapshot, nil
}

func (s *LeaderboardService) computeLeaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	snapshot, err := s.loadGradingSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]LeaderboardRow, 0, len(snapshot.players))
	rowIndex := make(map[string]int, len(snapshot.players))
	for _, item := range snapshot.players {
		if item.Privileged {
			continue
		}
		rowIndex[item.ID] = len(rows)
		rows = append(rows, LeaderboardRow{PlayerID: item.ID, DisplayName: item.DisplayName})
	}

	for _, item := range snapshot.picks {
		i, ok := rowIndex[item.PlayerID]
		if !ok {
			continue
		}
		f, ok := snapshot.fixtures[item.FixtureID]
		if !ok {
			continue
		}
		r, ok := snapshot.results[item.FixtureID]
		if !ok {
			continue
		}

		outcome := scoring.Grade(f, r, item.Team)
		rows[i].Points += outcome.Points()
		rows[i].Played++
		switch outcome {
		case scoring.OutcomeWin:
			rows[i].Wins++
		case scoring.OutcomePush:
			rows[i].Pushes++
		default:
			rows[i].Losses++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Points > rows[j].Points
	})
	return rows, nil
}

// ResultsBoard renders the published week's graded pick table. Privileged
// viewers see an ungraded preview of the active window before anything is
// published, or whenever they ask for one.
func (s *LeaderboardService) ResultsBoard(ctx context.Context, viewer Viewer, preview bool) (ResultsBoard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.ResultsBoard")
	defer span.End()

	week, published, err := s.weekRepo.Get(ctx)
	if err != nil {
		return ResultsBoard{}, fmt.Errorf("get published week: %w", err)
	}

	if viewer.Privileged && (preview || !published) {
		board, err := s.previewBoard(ctx)
		if err != nil {
			return ResultsBoard{}, err
		}
		board.Published = published
		board.Week = week
		return board, nil
	}
	if !published {
		return ResultsBoard{}, ErrResultsNotPublished
	}

	weekWindow := week.Window(s.rules.Location)
	items, err := s.fixtureRepo.ListByKickoffRange(ctx, weekWindow.Start, weekWindow.End)
	if err != nil {
		return ResultsBoard{}, fmt.Errorf("list fixtures for published week: %w", err)
	}
	ids := fixtureIDs(items)

	var resultRows []result.Result
	var pickRows []pick.Pick
	var players []player.Player
	loaders := pool.New().WithContext(ctx).WithCancelOnError()
	loaders.Go(func(ctx context.Context) error {
		rows, err := s.resultRepo.ListByFixtureIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("list results for published week: %w", err)
		}
		resultRows = rows
		return nil
	})
	loaders.Go(func(ctx context.Context) error {
		rows, err := s.pickRepo.ListByFixtureIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("list picks for published week: %w", err)
		}
		pickRows = rows
		return nil
	})
	loaders.Go(func(ctx context.Context) error {
		rows, err := s.playerRepo.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		players = rows
		return nil
	})
	if err := loaders.Wait(); err != nil {
		return ResultsBoard{}, err
	}

	results := make(map[string]result.Result, len(resultRows))
	for _, row := range resultRows {
		results[row.FixtureID] = row
	}

	board := ResultsBoard{
		Published:    true,
		Week:         week,
		PreviousWeek: publishedweek.Previous(week),
		HasResults:   len(resultRows) > 0,
		Rows:         s.buildRows(players, items, pickRows, results, true),
	}
	return board, nil
}

func (s *LeaderboardService) previewBoard(ctx context.Context) (ResultsBoard, error) {
	active, err := s.windows.Active(ctx)
	if err != nil {
		return ResultsBoard{}, err
	}
	items, err := s.fixtureRepo.ListByKickoffRange(ctx, active.Start, active.End)
	if err != nil {
		return ResultsBoard{}, fmt.Errorf("list fixtures in window: %w", err)
	}
	pickRows, err := s.pickRepo.ListByFixtureIDs(ctx, fixtureIDs(items))
	if err != nil {
		return ResultsBoard{}, fmt.Errorf("list picks in window: %w", err)
	}
	players, err := s.playerRepo.ListAll(ctx)
	if err != nil {
		return ResultsBoard{}, fmt.Errorf("list players: %w", err)
	}

	return ResultsBoard{
		Preview: true,
		Rows:    s.buildRows(players, items, pickRows, nil, false),
	}, nil
}

func (s *LeaderboardService) buildRows(
	players []player.Player,
	items []fixture.Fixture,
	picks []pick.Pick,
	results map[string]result.Result,
	graded bool,
) []ResultsBoardRow {
	byID := make(map[string]fixture.Fixture, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	picksByPlayer := make(map[string][]pick.Pick)
	for _, item := range picks {
		if _, ok := byID[item.FixtureID]; ok {
			picksByPlayer[item.PlayerID] = append(picksByPlayer[item.PlayerID], item)
		}
	}

	now := s.clock.now()
	rows := make([]ResultsBoardRow, 0, len(players))
	for _, p := range players {
		if p.Privileged {
			continue
		}
		playerPicks := picksByPlayer[p.ID]
		sort.SliceStable(playerPicks, func(i, j int) bool {
			return byID[playerPicks[i].FixtureID].KickoffAt.Before(byID[playerPicks[j].FixtureID].KickoffAt)
		})
		if len(playerPicks) > s.rules.MaxPicks {
			playerPicks = playerPicks[:s.rules.MaxPicks]
		}

		row := ResultsBoardRow{PlayerID: p.ID, DisplayName: p.DisplayName, Cells: make([]ResultCell, 0, len(playerPicks))}
		for _, item := range playerPicks {
			f := byID[item.FixtureID]
			outcome := scoring.OutcomeUnknown
			if graded {
				r, ok := results[item.FixtureID]
				outcome = scoring.DisplayOutcome(f, r, ok, item.Team, now)
			}
			if outcome.Graded() {
				row.Points += outcome.Points()
			}
			row.Cells = append(row.Cells, ResultCell{
				Team:      item.Team,
				FixtureID: item.FixtureID,
				Opponent:  f.Opponent(item.Team),
				KickoffAt: f.KickoffAt,
				Outcome:   outcome,
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// SelectionsSummary counts picks per team over the active window's fixtures.
func (s *LeaderboardService) SelectionsSummary(ctx context.Context) ([]SelectionCount, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.SelectionsSummary")
	defer span.End()

	active, err := s.windows.Active(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.fixtureRepo.ListByKickoffRange(ctx, active.Start, active.End)
	if err != nil {
		return nil, fmt.Errorf("list fixtures in window: %w", err)
	}
	if len(items) == 0 {
		return []SelectionCount{}, nil
	}
	pickRows, err := s.pickRepo.ListByFixtureIDs(ctx, fixtureIDs(items))
	if err != nil {
		return nil, fmt.Errorf("list picks in window: %w", err)
	}

	counts := make(map[string]int)
	for _, item := range pickRows {
		counts[item.Team]++
	}
	out := make([]SelectionCount, 0, len(counts))
	for team, n := range counts {
		out = append(out, SelectionCount{Team: team, Selections: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Selections != out[j].Selections {
			return out[i].Selections > out[j].Selections
		}
		return out[i].Team < out[j].Team
	})
	return out, nil
}

func fixtureIDs(items []fixture.Fixture) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
