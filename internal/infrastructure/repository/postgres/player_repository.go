package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/player"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Upsert keeps the stored first_seen_at of an existing player.
func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) error {
	query, args, err := qb.InsertModel("players", playerTableModel{
		ID:          item.ID,
		DisplayName: item.DisplayName,
		Privileged:  item.Privileged,
		FirstSeenAt: item.FirstSeenAt.UTC(),
		LastSeenAt:  item.LastSeenAt.UTC(),
	}, `ON CONFLICT (id) DO UPDATE SET
    display_name = EXCLUDED.display_name,
    privileged = EXCLUDED.privileged,
    last_seen_at = EXCLUDED.last_seen_at`)
	if err != nil {
		return fmt.Errorf("build upsert player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) ListAll(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select("id", "display_name", "privileged", "first_seen_at", "last_seen_at").
		From("players").
		OrderBy("first_seen_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:          row.ID,
			DisplayName: row.DisplayName,
			Privileged:  row.Privileged,
			FirstSeenAt: row.FirstSeenAt.UTC(),
			LastSeenAt:  row.LastSeenAt.UTC(),
		})
	}
	return out, nil
}
