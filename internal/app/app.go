package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/nfl-pickem/external/espn"
	"github.com/riskibarqy/nfl-pickem/external/oddsapi"
	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/interfaces/httpapi"
	"github.com/riskibarqy/nfl-pickem/internal/platform/cache"
	idgen "github.com/riskibarqy/nfl-pickem/internal/platform/id"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

// Container owns the wired services and the resources behind them.
type Container struct {
	Config      config.Config
	Logger      *logging.Logger
	Windows     *usecase.WindowService
	Fixtures    *usecase.FixtureService
	Submissions *usecase.SubmissionService
	Leaderboard *usecase.LeaderboardService
	Ingestion   *usecase.ResultIngestionService
	Players     *usecase.PlayerService
	Verifier    httpapi.TokenVerifier

	closers []func() error
}

// New wires the stores, providers and services described by cfg.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Container{Config: cfg, Logger: logger}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, st.close)

	rules := usecase.Rules{
		Location: cfg.Location,
		LockLead: cfg.LockLead,
		MaxPicks: cfg.MaxPicks,
	}
	serviceLogger := logger.Named("usecase")

	c.Windows = usecase.NewWindowService(st.windows, rules, nil, serviceLogger)

	var leaderboardCache *cache.Store
	if cfg.CacheEnabled {
		leaderboardCache = cache.NewStore(cfg.CacheTTL)
	}
	c.Leaderboard = usecase.NewLeaderboardService(usecase.LeaderboardServiceDeps{
		Windows:     c.Windows,
		FixtureRepo: st.fixtures,
		PickRepo:    st.picks,
		ResultRepo:  st.results,
		PlayerRepo:  st.players,
		WeekRepo:    st.weeks,
		Cache:       leaderboardCache,
		Logger:      serviceLogger,
	})

	c.Fixtures = usecase.NewFixtureService(usecase.FixtureServiceDeps{
		FixtureRepo: st.fixtures,
		Windows:     c.Windows,
		Provider:    newFixtureProvider(cfg, logger),
		IDGenerator: idgen.NewUUIDGenerator(),
		Invalidator: c.Leaderboard,
		Logger:      serviceLogger,
	})

	c.Submissions = usecase.NewSubmissionService(usecase.SubmissionServiceDeps{
		Windows:     c.Windows,
		FixtureRepo: st.fixtures,
		PickRepo:    st.picks,
		Invalidator: c.Leaderboard,
		Logger:      serviceLogger,
	})

	publisher, closePublisher, err := newResultsPublisher(cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.closers = append(c.closers, closePublisher)

	c.Ingestion = usecase.NewResultIngestionService(usecase.ResultIngestionServiceDeps{
		Windows:     c.Windows,
		FixtureRepo: st.fixtures,
		ResultRepo:  st.results,
		Provider: espn.NewClient(espn.ClientConfig{
			BaseURL:           cfg.ESPNBaseURL,
			Timeout:           cfg.ESPNTimeout,
			RequestsPerSecond: cfg.ESPNRequestsPerSecond,
			CircuitBreaker:    cfg.ESPNCircuit,
			Logger:            logger.Named("espn"),
		}),
		Publisher:   publisher,
		Invalidator: c.Leaderboard,
		Workers:     cfg.ScoreboardWorkers,
		Logger:      serviceLogger,
	})

	var seen *cache.Store
	if cfg.CacheEnabled {
		seen = cache.NewStore(cfg.CacheTTL)
	}
	c.Players = usecase.NewPlayerService(st.players, seen, c.Leaderboard, nil)

	if c.Verifier, err = newTokenVerifier(cfg, logger); err != nil {
		c.Close()
		return nil, err
	}

	if cfg.SeedFixtures {
		if err := st.seed(ctx, c.Windows.Rules().Location); err != nil {
			c.Close()
			return nil, err
		}
	}

	logger.Info("app container ready",
		"store_driver", cfg.StoreDriver,
		"auth_mode", cfg.AuthMode,
		"timezone", cfg.Timezone,
		"lock_lead", cfg.LockLead,
		"max_picks", cfg.MaxPicks,
		"cache_enabled", cfg.CacheEnabled,
		"redis_enabled", cfg.RedisEnabled,
	)
	return c, nil
}

// Close releases the resources in reverse order of acquisition.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

// NewHTTPServer builds the API server around the container's services.
func (c *Container) NewHTTPServer() (*http.Server, error) {
	handler := httpapi.NewHandler(httpapi.HandlerDeps{
		Windows:     c.Windows,
		Fixtures:    c.Fixtures,
		Submissions: c.Submissions,
		Leaderboard: c.Leaderboard,
		Ingestion:   c.Ingestion,
		Logger:      c.Logger.Named("httpapi"),
	})
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		Verifier:           c.Verifier,
		Registrar:          c.Players,
		Logger:             c.Logger,
		SwaggerEnabled:     c.Config.SwaggerEnabled,
		CORSAllowedOrigins: c.Config.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:              c.Config.HTTPAddr,
		Handler:           router,
		ReadTimeout:       c.Config.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      c.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// newFixtureProvider returns nil without an API key so imports fail with
// ErrProviderNotConfigured instead of calling the provider.
func newFixtureProvider(cfg config.Config, logger *logging.Logger) usecase.FixtureProvider {
	if cfg.OddsAPIKey == "" {
		logger.Warn("odds api key not set, fixture import disabled")
		return nil
	}
	return oddsapi.NewClient(oddsapi.ClientConfig{
		BaseURL:        cfg.OddsAPIBaseURL,
		APIKey:         cfg.OddsAPIKey,
		Regions:        cfg.OddsAPIRegions,
		Timeout:        cfg.OddsAPITimeout,
		IDGenerator:    idgen.NewUUIDGenerator(),
		CircuitBreaker: cfg.OddsAPICircuit,
		Logger:         logger.Named("oddsapi"),
	})
}
