package player

import "context"

type Repository interface {
	// Upsert records a sighting. FirstSeenAt is kept from the first insert.
	Upsert(ctx context.Context, item Player) error
	// ListAll returns players ordered by first sighting then id.
	ListAll(ctx context.Context) ([]Player, error)
}
