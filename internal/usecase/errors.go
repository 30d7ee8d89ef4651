package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrProviderNotConfigured = errors.New("provider not configured")

	ErrQuotaExceeded = fmt.Errorf("%w: weekly pick quota exceeded", ErrInvalidInput)
	ErrFixtureLocked = fmt.Errorf("%w: fixture is locked", ErrInvalidInput)

	ErrNoFixturesInWindow  = errors.New("no fixtures in active window")
	ErrNoResultsMatched    = errors.New("no results matched")
	ErrResultsNotPublished = errors.New("results not published")
)

// QuotaExceededError reports a submission made after the weekly quota was
// already used up.
type QuotaExceededError struct {
	Limit     int
	Confirmed int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: %d of %d picks already confirmed", ErrQuotaExceeded.Error(), e.Confirmed, e.Limit)
}

func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}
