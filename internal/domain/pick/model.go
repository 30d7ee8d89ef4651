package pick

import (
	"context"
	"errors"
	"time"
)

// ErrQuotaExceeded is returned by Repository.Append when the stored picks
// already fill the quota at insert time.
var ErrQuotaExceeded = errors.New("pick quota exceeded")

// Pick is an immutable selection of one team on one fixture.
type Pick struct {
	PlayerID  string
	FixtureID string
	Team      string
	CreatedAt time.Time
}

// AppendRequest inserts picks for one player. Quota is checked under the
// player's lock against picks on QuotaFixtureIDs.
type AppendRequest struct {
	PlayerID        string
	Picks           []Pick
	QuotaFixtureIDs []string
	Limit           int
}

type Repository interface {
	// Append inserts picks in one transaction, ignoring pairs already stored,
	// and returns how many rows were inserted.
	Append(ctx context.Context, req AppendRequest) (int, error)
	ListByPlayer(ctx context.Context, playerID string) ([]Pick, error)
	ListByFixtureIDs(ctx context.Context, fixtureIDs []string) ([]Pick, error)
}
