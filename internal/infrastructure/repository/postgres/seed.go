package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	"github.com/riskibarqy/nfl-pickem/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the sample slate for w when the fixtures table is empty.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, w window.Window) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM fixtures`); err != nil {
		return fmt.Errorf("count fixtures for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := NewFixtureRepository(db).UpsertMany(ctx, memory.SeedFixtures(w)); err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}
	return nil
}
