package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

type WindowService struct {
	repo   window.Repository
	rules  Rules
	clock  Clock
	logger *logging.Logger
}

func NewWindowService(repo window.Repository, rules Rules, clock Clock, logger *logging.Logger) *WindowService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WindowService{
		repo:   repo,
		rules:  rules.normalize(),
		clock:  clock,
		logger: logger,
	}
}

// Active returns the stored window, computing and storing one if none exists.
func (s *WindowService) Active(ctx context.Context) (window.Window, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WindowService.Active")
	defer span.End()

	stored, ok, err := s.repo.Get(ctx)
	if err != nil {
		return window.Window{}, fmt.Errorf("get active window: %w", err)
	}
	if ok {
		return stored, nil
	}

	return s.Reset(ctx)
}

// Reset recomputes the window from the clock and stores it.
func (s *WindowService) Reset(ctx context.Context) (window.Window, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WindowService.Reset")
	defer span.End()

	next := window.Compute(s.clock.now(), s.rules.Location)
	if err := s.repo.Set(ctx, next); err != nil {
		return window.Window{}, fmt.Errorf("set active window: %w", err)
	}

	s.logger.InfoContext(ctx, "active window set",
		"start", next.Start,
		"end", next.End,
		"zone", s.rules.Location.String(),
	)
	return next, nil
}

func (s *WindowService) Rules() Rules {
	return s.rules
}
