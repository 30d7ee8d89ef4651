package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nfl-pickem/internal/domain/player"
	"github.com/riskibarqy/nfl-pickem/internal/domain/publishedweek"
	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	cacherepo "github.com/riskibarqy/nfl-pickem/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/nfl-pickem/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nfl-pickem/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/nfl-pickem/internal/platform/cache"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

type stores struct {
	windows  window.Repository
	fixtures fixture.Repository
	picks    pick.Repository
	results  result.Repository
	weeks    publishedweek.Repository
	players  player.Repository

	db     *sqlx.DB
	logger *logging.Logger
}

func openStores(ctx context.Context, cfg config.Config, logger *logging.Logger) (*stores, error) {
	var (
		st          = &stores{logger: logger}
		windowRepo  window.Repository
		fixtureRepo fixture.Repository
		resultRepo  cacherepo.ResultStore
	)

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		windowRepo = memory.NewWindowRepository()
		fixtureRepo = memory.NewFixtureRepository(nil)
		resultRepo = memory.NewResultRepository()
		st.picks = memory.NewPickRepository()
		st.players = memory.NewPlayerRepository(nil)
	case config.StoreDriverPostgres:
		db, err := openDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		st.db = db
		windowRepo = postgres.NewWindowRepository(db)
		fixtureRepo = postgres.NewFixtureRepository(db)
		resultRepo = postgres.NewResultRepository(db)
		st.picks = postgres.NewPickRepository(db)
		st.players = postgres.NewPlayerRepository(db)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if cfg.CacheEnabled {
		store := cache.NewStore(cfg.CacheTTL)
		windowRepo = cacherepo.NewWindowRepository(windowRepo, store)
		fixtureRepo = cacherepo.NewFixtureRepository(fixtureRepo, store)
		resultRepo = cacherepo.NewResultRepository(resultRepo, store)
	}

	st.windows = windowRepo
	st.fixtures = fixtureRepo
	st.results = resultRepo
	st.weeks = resultRepo
	return st, nil
}

// seed loads the sample slate for the current window when no fixtures are
// stored yet.
func (s *stores) seed(ctx context.Context, loc *time.Location) error {
	w := window.Compute(time.Now(), loc)
	if s.db != nil {
		if err := postgres.BootstrapSeed(ctx, s.db, w); err != nil {
			return err
		}
		s.logger.Info("fixture bootstrap seed checked", "window_start", w.Start)
		return nil
	}

	existing, err := s.fixtures.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list fixtures for seed: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	items := memory.SeedFixtures(w)
	if err := s.fixtures.UpsertMany(ctx, items); err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}
	s.logger.Info("seeded sample fixtures", "count", len(items), "window_start", w.Start)
	return nil
}

func (s *stores) close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
