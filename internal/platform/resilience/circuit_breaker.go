// Package resilience guards calls to upstream providers.
package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// withDefaults fills zero or negative fields from DefaultCircuitBreakerConfig.
func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	d := DefaultCircuitBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = d.HalfOpenMaxReq
	}
	return c
}

// CircuitBreaker opens after FailureThreshold consecutive failures, rejects
// calls for OpenTimeout, then lets HalfOpenMaxReq probes through. The
// breaker closes once every probe succeeds; any probe failure reopens it.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	probes   int // admitted in the current half-open round
	passed   int // probes of the current round that succeeded
}

// NewCircuitBreakerFromConfig returns nil when the breaker is disabled.
func NewCircuitBreakerFromConfig(cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return &CircuitBreaker{
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		state: CircuitStateClosed,
	}
}

// State reports the current state; an open breaker whose timeout elapsed
// reports half-open even before the next call moves it there.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.cooledDown() {
		return CircuitStateHalfOpen
	}
	return b.state
}

// Execute runs fn behind the breaker. A nil breaker always runs fn.
// Errors for which countsAsFailure returns false pass through without
// tripping the breaker; a nil countsAsFailure counts every error.
func (b *CircuitBreaker) Execute(fn func() error, countsAsFailure func(error) bool) error {
	if b == nil {
		return fn()
	}

	done, err := b.admit()
	if err != nil {
		return err
	}
	err = fn()
	done(err == nil || (countsAsFailure != nil && !countsAsFailure(err)))
	return err
}

// admit reserves a slot for one call and returns the callback that records
// its outcome.
func (b *CircuitBreaker) admit() (func(ok bool), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateOpen:
		if !b.cooledDown() {
			return nil, ErrCircuitOpen
		}
		b.reset(CircuitStateHalfOpen)
		fallthrough
	case CircuitStateHalfOpen:
		if b.probes >= b.cfg.HalfOpenMaxReq {
			return nil, ErrCircuitOpen
		}
		b.probes++
		return b.finishProbe, nil
	default:
		return b.finishClosed, nil
	}
}

func (b *CircuitBreaker) finishClosed(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.state != CircuitStateClosed:
		// Another call tripped the breaker while this one ran.
	case ok:
		b.failures = 0
	default:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
	}
}

func (b *CircuitBreaker) finishProbe(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != CircuitStateHalfOpen {
		return
	}
	if !ok {
		b.trip()
		return
	}
	b.passed++
	if b.passed >= b.cfg.HalfOpenMaxReq {
		b.reset(CircuitStateClosed)
	}
}

func (b *CircuitBreaker) cooledDown() bool {
	return b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout
}

func (b *CircuitBreaker) trip() {
	b.reset(CircuitStateOpen)
	b.openedAt = b.now()
}

func (b *CircuitBreaker) reset(state CircuitState) {
	b.state = state
	b.failures = 0
	b.probes = 0
	b.passed = 0
	if state != CircuitStateOpen {
		b.openedAt = time.Time{}
	}
}
