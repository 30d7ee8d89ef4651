package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/matchkey"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	"github.com/riskibarqy/nfl-pickem/internal/platform/id"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

// CacheInvalidator drops derived views after their inputs change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

type FixtureService struct {
	fixtureRepo fixture.Repository
	windows     *WindowService
	provider    FixtureProvider
	idGen       id.Generator
	invalidator CacheInvalidator
	clock       Clock
	logger      *logging.Logger
}

type FixtureServiceDeps struct {
	FixtureRepo fixture.Repository
	Windows     *WindowService
	Provider    FixtureProvider
	IDGenerator id.Generator
	Invalidator CacheInvalidator
	Clock       Clock
	Logger      *logging.Logger
}

func NewFixtureService(deps FixtureServiceDeps) *FixtureService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	return &FixtureService{
		fixtureRepo: deps.FixtureRepo,
		windows:     deps.Windows,
		provider:    deps.Provider,
		idGen:       idGen,
		invalidator: deps.Invalidator,
		clock:       deps.Clock,
		logger:      logger,
	}
}

type ImportReport struct {
	Fetched int           `json:"fetched"`
	Saved   int           `json:"saved"`
	Skipped int           `json:"skipped"`
	Window  window.Window `json:"-"`
}

// FixtureView is a fixture decorated for the pick screen.
type FixtureView struct {
	Fixture   fixture.Fixture
	Matchkey  string
	Canonical bool
	Locked    bool
}

// Import pulls the provider slate, stores the valid games and resets the
// active window. Invalid provider rows are skipped and logged.
func (s *FixtureService) Import(ctx context.Context) (ImportReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Import")
	defer span.End()

	if s.provider == nil {
		return ImportReport{}, fmt.Errorf("%w: fixture provider is not configured", ErrProviderNotConfigured)
	}

	external, err := s.provider.FetchFixtures(ctx)
	if err != nil {
		return ImportReport{}, fmt.Errorf("fetch fixtures: %w", err)
	}

	report := ImportReport{Fetched: len(external)}
	items := make([]fixture.Fixture, 0, len(external))
	for _, ext := range external {
		item, err := s.toFixture(ext)
		if err == nil {
			err = item.Validate()
		}
		if err != nil {
			report.Skipped++
			s.logger.WarnContext(ctx, "skip invalid provider fixture", "fixture_id", ext.ID, "error", err)
			continue
		}
		items = append(items, item)
	}

	saved, current, err := s.store(ctx, items)
	if err != nil {
		return ImportReport{}, err
	}
	report.Saved = saved
	report.Window = current

	s.logger.InfoContext(ctx, "fixtures imported",
		"fetched", report.Fetched,
		"saved", report.Saved,
		"skipped", report.Skipped,
	)
	return report, nil
}

// UpsertManual stores administrator-entered fixtures. Any invalid row fails
// the whole call.
func (s *FixtureService) UpsertManual(ctx context.Context, input []ExternalFixture) (ImportReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.UpsertManual")
	defer span.End()

	if len(input) == 0 {
		return ImportReport{}, fmt.Errorf("%w: at least one fixture is required", ErrInvalidInput)
	}

	items := make([]fixture.Fixture, 0, len(input))
	for i, ext := range input {
		item, err := s.toFixture(ext)
		if err != nil {
			return ImportReport{}, err
		}
		if err := item.Validate(); err != nil {
			return ImportReport{}, fmt.Errorf("%w: fixtures[%d]: %v", ErrInvalidInput, i, err)
		}
		items = append(items, item)
	}

	saved, current, err := s.store(ctx, items)
	if err != nil {
		return ImportReport{}, err
	}
	return ImportReport{Fetched: len(input), Saved: saved, Window: current}, nil
}

// ListActive returns the fixtures of the active window in kickoff order.
func (s *FixtureService) ListActive(ctx context.Context) ([]FixtureView, window.Window, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.ListActive")
	defer span.End()

	active, err := s.windows.Active(ctx)
	if err != nil {
		return nil, window.Window{}, err
	}
	items, err := s.fixtureRepo.ListByKickoffRange(ctx, active.Start, active.End)
	if err != nil {
		return nil, window.Window{}, fmt.Errorf("list fixtures in window: %w", err)
	}

	idx := matchkey.NewIndex(items)
	now := s.clock.now()
	lead := s.windows.Rules().LockLead

	fixture.SortByKickoff(items)
	out := make([]FixtureView, 0, len(items))
	for _, item := range items {
		key, _ := idx.KeyOf(item.ID)
		out = append(out, FixtureView{
			Fixture:   item,
			Matchkey:  key.String(),
			Canonical: idx.IsCanonical(item.ID),
			Locked:    item.LockedAt(now, lead),
		})
	}
	return out, active, nil
}

func (s *FixtureService) store(ctx context.Context, items []fixture.Fixture) (int, window.Window, error) {
	if len(items) > 0 {
		if err := s.fixtureRepo.UpsertMany(ctx, items); err != nil {
			return 0, window.Window{}, fmt.Errorf("upsert fixtures: %w", err)
		}
	}

	current, err := s.windows.Reset(ctx)
	if err != nil {
		return 0, window.Window{}, err
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
	return len(items), current, nil
}

func (s *FixtureService) toFixture(ext ExternalFixture) (fixture.Fixture, error) {
	fixtureID := strings.TrimSpace(ext.ID)
	if fixtureID == "" {
		generated, err := s.idGen.NewID()
		if err != nil {
			return fixture.Fixture{}, fmt.Errorf("generate fixture id: %w", err)
		}
		fixtureID = generated
	}
	return fixture.Fixture{
		ID:         fixtureID,
		HomeTeam:   strings.TrimSpace(ext.HomeTeam),
		AwayTeam:   strings.TrimSpace(ext.AwayTeam),
		KickoffAt:  ext.KickoffAt.UTC().Truncate(time.Second),
		HomeSpread: ext.HomeSpread,
		AwaySpread: ext.AwaySpread,
	}, nil
}
