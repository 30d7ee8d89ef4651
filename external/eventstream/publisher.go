package eventstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultResultsStream = "pickem.results.published"
	DefaultMaxLen        = 1000
	eventType            = "results.published"
)

// StreamAdder is the slice of the redis client the publisher needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type PublisherConfig struct {
	Stream string
	MaxLen int64
	Logger *logging.Logger
}

// Publisher appends results events to a redis stream.
type Publisher struct {
	client StreamAdder
	stream string
	maxLen int64
	logger *logging.Logger
}

var _ usecase.ResultsPublisher = (*Publisher)(nil)

func NewPublisher(client StreamAdder, cfg PublisherConfig) *Publisher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = DefaultResultsStream
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	return &Publisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger,
	}
}

type resultsPayload struct {
	Type      string    `json:"type"`
	Week      string    `json:"week"`
	Saved     int       `json:"saved"`
	Ambiguous int       `json:"ambiguous"`
	Unmatched int       `json:"unmatched"`
	At        time.Time `json:"at"`
}

func (p *Publisher) PublishResults(ctx context.Context, event usecase.ResultsPublishedEvent) error {
	if p == nil || p.client == nil {
		return nil
	}

	data, err := sonic.Marshal(resultsPayload{
		Type:      eventType,
		Week:      event.Week.String(),
		Saved:     event.Saved,
		Ambiguous: event.Ambiguous,
		Unmatched: event.Unmatched,
		At:        event.At.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal results event: %w", err)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("redis.stream", p.stream),
			attribute.String("pickem.week", event.Week.String()),
			attribute.Int("pickem.saved", event.Saved),
		)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"type":  eventType,
			"year":  event.Week.Year,
			"week":  event.Week.Week,
			"saved": event.Saved,
			"data":  string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}

	p.logger.DebugContext(ctx, "results event published", "stream", p.stream, "entry_id", id, "week", event.Week.String())
	return nil
}
