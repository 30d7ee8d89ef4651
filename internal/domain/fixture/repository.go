package fixture

import (
	"context"
	"time"
)

// Repository persists fixtures. Rows are never merged or deleted.
type Repository interface {
	UpsertMany(ctx context.Context, items []Fixture) error
	// ListByKickoffRange returns fixtures with start <= kickoff < end.
	ListByKickoffRange(ctx context.Context, start, end time.Time) ([]Fixture, error)
	ListAll(ctx context.Context) ([]Fixture, error)
	GetByIDs(ctx context.Context, ids []string) ([]Fixture, error)
}
