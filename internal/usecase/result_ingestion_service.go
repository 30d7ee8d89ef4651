package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/matchkey"
	"github.com/riskibarqy/nfl-pickem/internal/domain/publishedweek"
	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

const defaultScoreboardWorkers = 2

type ResultIngestionService struct {
	windows     *WindowService
	fixtureRepo fixture.Repository
	resultRepo  result.Repository
	provider    ScoreboardProvider
	publisher   ResultsPublisher
	invalidator CacheInvalidator
	comparator  result.TeamComparator
	workers     int
	clock       Clock
	logger      *logging.Logger
}

type ResultIngestionServiceDeps struct {
	Windows     *WindowService
	FixtureRepo fixture.Repository
	ResultRepo  result.Repository
	Provider    ScoreboardProvider
	Publisher   ResultsPublisher
	Invalidator CacheInvalidator
	// Comparator defaults to result.TeamMatch.
	Comparator result.TeamComparator
	Workers    int
	Clock      Clock
	Logger     *logging.Logger
}

func NewResultIngestionService(deps ResultIngestionServiceDeps) *ResultIngestionService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = NoopResultsPublisher{}
	}
	comparator := deps.Comparator
	if comparator == nil {
		comparator = result.TeamMatch
	}
	workers := deps.Workers
	if workers < 1 {
		workers = defaultScoreboardWorkers
	}
	return &ResultIngestionService{
		windows:     deps.Windows,
		fixtureRepo: deps.FixtureRepo,
		resultRepo:  deps.ResultRepo,
		provider:    deps.Provider,
		publisher:   publisher,
		invalidator: deps.Invalidator,
		comparator:  comparator,
		workers:     workers,
		clock:       deps.Clock,
		logger:      logger,
	}
}

type AmbiguousRecord struct {
	Date      string   `json:"date"`
	HomeTeam  string   `json:"home_team"`
	AwayTeam  string   `json:"away_team"`
	Matchkeys []string `json:"matchkeys"`
}

type UnmatchedRecord struct {
	Date     string `json:"date"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

type FailedDay struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

type IngestReport struct {
	Week       publishedweek.Week `json:"-"`
	Days       int                `json:"days"`
	Fetched    int                `json:"fetched"`
	Saved      int                `json:"saved"`
	Invalid    int                `json:"invalid,omitempty"`
	FailedDays []FailedDay        `json:"failed_days,omitempty"`
	Ambiguous  []AmbiguousRecord  `json:"ambiguous,omitempty"`
	Unmatched  []UnmatchedRecord  `json:"unmatched,omitempty"`
}

type scoreboardDay struct {
	date    time.Time
	records []result.External
	err     error
}

// IngestActiveWindow fetches final scores for each UTC date of the active
// window, matches them onto stored fixtures and publishes the window's ISO
// week when at least one result is saved.
func (s *ResultIngestionService) IngestActiveWindow(ctx context.Context) (IngestReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultIngestionService.IngestActiveWindow")
	defer span.End()

	if s.provider == nil {
		return IngestReport{}, fmt.Errorf("%w: scoreboard provider is not configured", ErrProviderNotConfigured)
	}

	active, err := s.windows.Active(ctx)
	if err != nil {
		return IngestReport{}, err
	}
	items, err := s.fixtureRepo.ListByKickoffRange(ctx, active.Start, active.End)
	if err != nil {
		return IngestReport{}, fmt.Errorf("list fixtures in window: %w", err)
	}
	if len(items) == 0 {
		return IngestReport{}, fmt.Errorf("%w: %s to %s", ErrNoFixturesInWindow, active.Start.Format(time.RFC3339), active.End.Format(time.RFC3339))
	}
	fixture.SortByKickoff(items)

	dates := active.UTCDates()
	days, err := s.fetchDays(ctx, dates)
	if err != nil {
		return IngestReport{}, err
	}

	year, week := active.ISOWeek(s.windows.Rules().Location)
	report := IngestReport{
		Week: publishedweek.Week{Year: year, Week: week},
		Days: len(dates),
	}

	latest := make(map[string]result.Result)
	order := make([]string, 0)
	for _, day := range days {
		dateLabel := day.date.Format("2006-01-02")
		if day.err != nil {
			report.FailedDays = append(report.FailedDays, FailedDay{Date: dateLabel, Error: day.err.Error()})
			s.logger.WarnContext(ctx, "scoreboard day failed", "date", dateLabel, "error", day.err)
			continue
		}

		report.Fetched += len(day.records)
		for _, ext := range day.records {
			matched := s.matchRecord(ext, items)
			switch len(matched) {
			case 0:
				report.Unmatched = append(report.Unmatched, UnmatchedRecord{Date: dateLabel, HomeTeam: ext.HomeTeam, AwayTeam: ext.AwayTeam})
				continue
			case 1:
			default:
				keys := make([]string, 0, len(matched))
				for key := range matched {
					keys = append(keys, key.String())
				}
				sort.Strings(keys)
				report.Ambiguous = append(report.Ambiguous, AmbiguousRecord{Date: dateLabel, HomeTeam: ext.HomeTeam, AwayTeam: ext.AwayTeam, Matchkeys: keys})
				s.logger.WarnContext(ctx, "ambiguous scoreboard record skipped",
					"date", dateLabel,
					"home_team", ext.HomeTeam,
					"away_team", ext.AwayTeam,
					"matchkeys", keys,
				)
				continue
			}

			for _, rows := range matched {
				for _, row := range rows {
					if !row.Validate() {
						report.Invalid++
						s.logger.WarnContext(ctx, "invalid scoreboard record skipped",
							"date", dateLabel,
							"fixture_id", row.FixtureID,
							"home_score", row.HomeScore,
							"away_score", row.AwayScore,
						)
						continue
					}
					if _, ok := latest[row.FixtureID]; !ok {
						order = append(order, row.FixtureID)
					}
					latest[row.FixtureID] = row
				}
			}
		}
	}

	if len(latest) == 0 {
		return report, fmt.Errorf("%w: %d records fetched for %d days", ErrNoResultsMatched, report.Fetched, report.Days)
	}

	now := s.clock.now()
	rows := make([]result.Result, 0, len(order))
	for _, fixtureID := range order {
		row := latest[fixtureID]
		row.UpdatedAt = now
		rows = append(rows, row)
	}

	saved, err := s.resultRepo.SaveAndPublish(ctx, rows, report.Week)
	if err != nil {
		return IngestReport{}, fmt.Errorf("save results: %w", err)
	}
	report.Saved = saved

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
	if err := s.publisher.PublishResults(ctx, ResultsPublishedEvent{
		Week:      report.Week,
		Saved:     report.Saved,
		Ambiguous: len(report.Ambiguous),
		Unmatched: len(report.Unmatched),
		At:        now,
	}); err != nil {
		s.logger.WarnContext(ctx, "publish results event failed", "week", report.Week.String(), "error", err)
	}

	s.logger.InfoContext(ctx, "results ingested",
		"week", report.Week.String(),
		"days", report.Days,
		"fetched", report.Fetched,
		"invalid", report.Invalid,
		"saved", report.Saved,
		"failed_days", len(report.FailedDays),
		"ambiguous", len(report.Ambiguous),
		"unmatched", len(report.Unmatched),
	)
	return report, nil
}

// matchRecord returns the oriented results for every fixture ext matches,
// grouped by matchkey. One group means every duplicate row of that game
// receives the score.
func (s *ResultIngestionService) matchRecord(ext result.External, items []fixture.Fixture) map[matchkey.Key][]result.Result {
	out := make(map[matchkey.Key][]result.Result)
	for _, item := range items {
		row, ok := result.Match(ext, item, s.comparator)
		if !ok {
			continue
		}
		key := matchkey.ForFixture(item)
		out[key] = append(out[key], row)
	}
	return out
}

func (s *ResultIngestionService) fetchDays(ctx context.Context, dates []time.Time) ([]scoreboardDay, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	workerCount := s.workers
	if workerCount > len(dates) {
		workerCount = len(dates)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan scoreboardDay, len(dates))
	var workers sync.WaitGroup
	for _, date := range dates {
		date := date
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			records, fetchErr := s.provider.FetchScoreboard(ctx, date)
			results <- scoreboardDay{date: date, records: records, err: fetchErr}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit scoreboard fetch to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	out := make([]scoreboardDay, 0, len(dates))
	for day := range results {
		out = append(out, day)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].date.Before(out[j].date)
	})
	return out, nil
}
