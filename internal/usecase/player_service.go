package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/nfl-pickem/internal/domain/player"
	"github.com/riskibarqy/nfl-pickem/internal/platform/cache"
)

type PlayerService struct {
	playerRepo  player.Repository
	seen        *cache.Store
	invalidator CacheInvalidator
	clock       Clock
}

// NewPlayerService builds the player directory. seen suppresses repeated
// upserts for the same principal within its TTL; nil upserts every time.
func NewPlayerService(playerRepo player.Repository, seen *cache.Store, invalidator CacheInvalidator, clock Clock) *PlayerService {
	return &PlayerService{
		playerRepo:  playerRepo,
		seen:        seen,
		invalidator: invalidator,
		clock:       clock,
	}
}

// Register records that principal made an authenticated request.
func (s *PlayerService) Register(ctx context.Context, principal player.Principal) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Register")
	defer span.End()

	playerID := strings.TrimSpace(principal.PlayerID)
	if playerID == "" {
		return fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	key := "player:" + playerID + "|" + principal.Name() + "|" + strconv.FormatBool(principal.Privileged)
	if _, ok := s.seen.Get(ctx, key); ok {
		return nil
	}

	now := s.clock.now()
	if err := s.playerRepo.Upsert(ctx, player.Player{
		ID:          playerID,
		DisplayName: principal.Name(),
		Privileged:  principal.Privileged,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}); err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}

	s.seen.Set(ctx, key, struct{}{})
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
	return nil
}
