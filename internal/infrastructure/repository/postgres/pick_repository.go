package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

var pickSelectColumns = []string{
	"player_id",
	"fixture_id",
	"team",
	"created_at",
}

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

// Append inserts the new picks of one player. Submissions for the same
// player are serialized on a transaction-scoped advisory lock so the quota
// count and the insert see the same rows.
func (r *PickRepository) Append(ctx context.Context, req pick.AppendRequest) (int, error) {
	if len(req.Picks) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx for pick append: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, req.PlayerID); err != nil {
		return 0, fmt.Errorf("lock player picks: %w", err)
	}

	candidateIDs := make([]string, 0, len(req.Picks))
	for _, item := range req.Picks {
		if item.PlayerID != req.PlayerID {
			return 0, fmt.Errorf("pick for player %s in append for player %s", item.PlayerID, req.PlayerID)
		}
		candidateIDs = append(candidateIDs, item.FixtureID)
	}

	existingQuery, existingArgs, err := qb.Select("fixture_id").From("picks").
		Where(
			qb.Eq("player_id", req.PlayerID),
			qb.Any("fixture_id", pq.Array(uniqueStrings(candidateIDs))),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build select existing picks query: %w", err)
	}
	var existing []string
	if err := tx.SelectContext(ctx, &existing, existingQuery, existingArgs...); err != nil {
		return 0, fmt.Errorf("select existing picks: %w", err)
	}
	stored := make(map[string]struct{}, len(existing))
	for _, fixtureID := range existing {
		stored[fixtureID] = struct{}{}
	}

	fresh := make([]pickTableModel, 0, len(req.Picks))
	for _, item := range req.Picks {
		if _, ok := stored[item.FixtureID]; ok {
			continue
		}
		stored[item.FixtureID] = struct{}{}
		fresh = append(fresh, pickTableModel{
			PlayerID:  item.PlayerID,
			FixtureID: item.FixtureID,
			Team:      item.Team,
			CreatedAt: item.CreatedAt.UTC(),
		})
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if req.Limit > 0 {
		quotaIDs := uniqueStrings(req.QuotaFixtureIDs)
		confirmed := 0
		if len(quotaIDs) > 0 {
			countQuery, countArgs, err := qb.Select("COUNT(1)").From("picks").
				Where(
					qb.Eq("player_id", req.PlayerID),
					qb.Any("fixture_id", pq.Array(quotaIDs)),
				).
				ToSQL()
			if err != nil {
				return 0, fmt.Errorf("build count quota picks query: %w", err)
			}
			if err := tx.GetContext(ctx, &confirmed, countQuery, countArgs...); err != nil {
				return 0, fmt.Errorf("count quota picks: %w", err)
			}
		}
		if confirmed+len(fresh) > req.Limit {
			return 0, fmt.Errorf("%w: %d stored, %d new, limit %d", pick.ErrQuotaExceeded, confirmed, len(fresh), req.Limit)
		}
	}

	insertQuery, insertArgs, err := qb.InsertModels("picks", fresh, "ON CONFLICT (player_id, fixture_id) DO NOTHING")
	if err != nil {
		return 0, fmt.Errorf("build insert picks query: %w", err)
	}
	res, err := tx.ExecContext(ctx, insertQuery, insertArgs...)
	if err != nil {
		return 0, fmt.Errorf("insert picks: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read inserted pick count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit pick append: %w", err)
	}
	return int(inserted), nil
}

func (r *PickRepository) ListByPlayer(ctx context.Context, playerID string) ([]pick.Pick, error) {
	query, args, err := qb.Select(pickSelectColumns...).From("picks").
		Where(qb.Eq("player_id", playerID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks by player query: %w", err)
	}

	var rows []pickTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks by player: %w", err)
	}
	return picksFromRows(rows), nil
}

func (r *PickRepository) ListByFixtureIDs(ctx context.Context, fixtureIDs []string) ([]pick.Pick, error) {
	ids := uniqueStrings(fixtureIDs)
	if len(ids) == 0 {
		return []pick.Pick{}, nil
	}

	query, args, err := qb.Select(pickSelectColumns...).From("picks").
		Where(qb.Any("fixture_id", pq.Array(ids))).
		OrderBy("player_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks by fixtures query: %w", err)
	}

	var rows []pickTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks by fixtures: %w", err)
	}
	return picksFromRows(rows), nil
}

func picksFromRows(rows []pickTableModel) []pick.Pick {
	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pick.Pick{
			PlayerID:  row.PlayerID,
			FixtureID: row.FixtureID,
			Team:      row.Team,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return out
}
