package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/nfl-pickem/external/eventstream"
	"github.com/riskibarqy/nfl-pickem/internal/config"
	"github.com/riskibarqy/nfl-pickem/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/nfl-pickem/internal/interfaces/httpapi"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
)

const redisPingTimeout = 3 * time.Second

func noopClose() error { return nil }

// newResultsPublisher connects the results stream. Without redis the
// ingestion service falls back to a no-op publisher.
func newResultsPublisher(cfg config.Config, logger *logging.Logger) (usecase.ResultsPublisher, func() error, error) {
	if !cfg.RedisEnabled {
		return usecase.NoopResultsPublisher{}, noopClose, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("results stream enabled", "stream", cfg.RedisResultsStream, "max_len", cfg.RedisStreamMaxLen)
	publisher := eventstream.NewPublisher(client, eventstream.PublisherConfig{
		Stream: cfg.RedisResultsStream,
		MaxLen: cfg.RedisStreamMaxLen,
		Logger: logger.Named("eventstream"),
	})
	return publisher, client.Close, nil
}

func newTokenVerifier(cfg config.Config, logger *logging.Logger) (httpapi.TokenVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeStatic:
		logger.Warn("static token verifier enabled, do not use outside local development")
		return anubis.NewStaticVerifier(), nil
	case config.AuthModeAnubis:
		return anubis.NewClient(anubis.ClientConfig{
			BaseURL:        cfg.AnubisBaseURL,
			IntrospectPath: cfg.AnubisIntrospectPath,
			AdminKey:       cfg.AnubisAdminKey,
			Timeout:        cfg.AnubisTimeout,
			CacheTTL:       cfg.AnubisCacheTTL,
			CircuitBreaker: cfg.AnubisCircuit,
			Logger:         logger.Named("anubis"),
		}), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.AuthMode)
	}
}
