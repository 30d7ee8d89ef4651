package oddsapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-pickem/internal/platform/id"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nfl-pickem/internal/platform/resilience"
	"github.com/riskibarqy/nfl-pickem/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL   = "https://api.the-odds-api.com"
	defaultRegions   = "us"
	defaultTimeout   = 10 * time.Second
	oddsPath         = "/v4/sports/americanfootball_nfl/odds/"
	spreadsMarket    = "spreads"
	maxResponseBytes = 4 << 20
)

var (
	errOddsTransient = crerr.New("odds api transient failure")
	apiKeyParamRegex = regexp.MustCompile(`apiKey=[^&\s"']+`)
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Regions        string
	Timeout        time.Duration
	IDGenerator    id.Generator
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client lists upcoming NFL games with point spreads from The Odds API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	regions    string
	idGen      id.Generator
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	regions := strings.TrimSpace(cfg.Regions)
	if regions == "" {
		regions = defaultRegions
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		regions:    regions,
		idGen:      idGen,
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		logger:     logger,
	}
}

func (c *Client) FetchFixtures(ctx context.Context) ([]usecase.ExternalFixture, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: odds api key is not set", usecase.ErrProviderNotConfigured)
	}

	var raw []byte
	err := c.breaker.Execute(func() error {
		var reqErr error
		raw, reqErr = c.get(ctx)
		return reqErr
	}, isCircuitFailure)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "odds api circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: odds provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		if isCircuitFailure(err) {
			return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return nil, err
	}

	var events []event
	if err := sonic.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("decode odds payload: %w", err)
	}

	out := make([]usecase.ExternalFixture, 0, len(events))
	for _, item := range events {
		fixture, err := c.toExternalFixture(item)
		if err != nil {
			return nil, err
		}
		out = append(out, fixture)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	values := url.Values{}
	values.Set("apiKey", c.apiKey)
	values.Set("regions", c.regions)
	values.Set("markets", spreadsMarket)
	values.Set("oddsFormat", "decimal")
	fullURL := c.baseURL + oddsPath + "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = crerr.Wrap(errOddsTransient, "send request: "+c.redact(err.Error()))
		c.logger.WarnContext(ctx, "odds api request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, crerr.Wrap(errOddsTransient, "read response body: "+err.Error())
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	c.logger.WarnContext(ctx, "odds api non-2xx", "status_code", resp.StatusCode, "remaining", resp.Header.Get("x-requests-remaining"))
	if isRetryableStatus(resp.StatusCode) {
		return nil, crerr.Wrapf(errOddsTransient, "provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}
	return nil, fmt.Errorf("odds provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
}

func (c *Client) toExternalFixture(item event) (usecase.ExternalFixture, error) {
	fixtureID := strings.TrimSpace(item.ID)
	if fixtureID == "" {
		generated, err := c.idGen.NewID()
		if err != nil {
			return usecase.ExternalFixture{}, fmt.Errorf("generate fixture id: %w", err)
		}
		fixtureID = generated
	}

	out := usecase.ExternalFixture{
		ID:       fixtureID,
		HomeTeam: strings.TrimSpace(item.HomeTeam),
		AwayTeam: strings.TrimSpace(item.AwayTeam),
	}
	if kickoff, err := time.Parse(time.RFC3339, strings.TrimSpace(item.CommenceTime)); err == nil {
		out.KickoffAt = kickoff.UTC()
	}
	out.HomeSpread, out.AwaySpread = spreadsFor(item)
	return out, nil
}

// spreadsFor reads the first bookmaker market keyed "spreads".
func spreadsFor(item event) (home, away *float64) {
	for _, bookmaker := range item.Bookmakers {
		for _, market := range bookmaker.Markets {
			if market.Key != spreadsMarket {
				continue
			}
			for _, outcome := range market.Outcomes {
				if outcome.Point == nil {
					continue
				}
				point := *outcome.Point
				switch strings.TrimSpace(outcome.Name) {
				case strings.TrimSpace(item.HomeTeam):
					home = &point
				case strings.TrimSpace(item.AwayTeam):
					away = &point
				}
			}
			return home, away
		}
	}
	return nil, nil
}

func (c *Client) redact(value string) string {
	if c.apiKey != "" {
		value = strings.ReplaceAll(value, c.apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "apiKey=REDACTED")
}

func isCircuitFailure(err error) bool {
	return errors.Is(err, errOddsTransient)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
