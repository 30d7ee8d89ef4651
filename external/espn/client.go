package espn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/platform/resilience"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL         = "https://site.api.espn.com"
	defaultTimeout         = 10 * time.Second
	defaultRequestsPerSec  = 4
	scoreboardPath         = "/apis/site/v2/sports/football/nfl/scoreboard"
	maxResponseBodyBytes   = 8 << 20
	scoreboardDateLayout   = "20060102"
	competitorHome         = "home"
	competitorAway         = "away"
	minCompetitorsPerEvent = 2
)

var errESPNTransient = crerr.New("espn transient failure")

type ClientConfig struct {
	HTTPClient        *fasthttp.Client
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	CircuitBreaker    resilience.CircuitBreakerConfig
	Logger            *logging.Logger
}

// Client reads final scores from the public ESPN NFL scoreboard.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	timeout    time.Duration
	limiter    *rate.Limiter
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "nfl-pickem",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBodyBytes,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSec
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		logger:     logger,
	}
}

// FetchScoreboard returns every event listed for the UTC calendar date.
func (c *Client) FetchScoreboard(ctx context.Context, date time.Time) ([]result.External, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	dateParam := date.UTC().Format(scoreboardDateLayout)
	var raw []byte
	err := c.breaker.Execute(func() error {
		var reqErr error
		raw, reqErr = c.get(ctx, dateParam)
		return reqErr
	}, isCircuitFailure)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: scoreboard provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		if isCircuitFailure(err) {
			return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return nil, err
	}

	var payload scoreboardEnvelope
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode scoreboard payload date=%s: %w", dateParam, err)
	}
	return payload.records(), nil
}

func (c *Client) get(ctx context.Context, dateParam string) ([]byte, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ctx.Err()
		}
		timeout = min(timeout, remaining)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + scoreboardPath)
	req.URI().QueryArgs().Set("dates", dateParam)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
		err = crerr.Wrapf(errESPNTransient, "send request date=%s: %v", dateParam, err)
		c.logger.WarnContext(ctx, "espn request failed", "date", dateParam, "error", err)
		return nil, err
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	if status >= 200 && status < 300 {
		return body, nil
	}

	c.logger.WarnContext(ctx, "espn non-2xx", "date", dateParam, "status_code", status)
	if status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError {
		return nil, crerr.Wrapf(errESPNTransient, "scoreboard status=%d date=%s", status, dateParam)
	}
	return nil, fmt.Errorf("scoreboard status=%d date=%s", status, dateParam)
}

func isCircuitFailure(err error) bool {
	return errors.Is(err, errESPNTransient)
}
