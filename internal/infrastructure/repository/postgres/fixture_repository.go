package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/nfl-pickem/internal/domain/fixture"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

// fixtureUpsertBatchSize keeps a multi-row upsert well under the 65535
// bind parameter limit.
const fixtureUpsertBatchSize = 500

const fixtureUpsertSuffix = `ON CONFLICT (id) DO UPDATE SET
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    kickoff_at = EXCLUDED.kickoff_at,
    home_spread = EXCLUDED.home_spread,
    away_spread = EXCLUDED.away_spread,
    updated_at = NOW()`

var fixtureSelectColumns = []string{
	"id",
	"home_team",
	"away_team",
	"kickoff_at",
	"home_spread",
	"away_spread",
}

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) UpsertMany(ctx context.Context, items []fixture.Fixture) error {
	rows := fixtureInsertRows(items)
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for fixture upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for start := 0; start < len(rows); start += fixtureUpsertBatchSize {
		end := min(start+fixtureUpsertBatchSize, len(rows))
		query, args, err := qb.InsertModels("fixtures", rows[start:end], fixtureUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert fixtures query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert fixtures: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fixture upsert: %w", err)
	}
	return nil
}

func (r *FixtureRepository) ListByKickoffRange(ctx context.Context, start, end time.Time) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureSelectColumns...).From("fixtures").
		Where(qb.Within("kickoff_at", start.UTC(), end.UTC())).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures by kickoff range query: %w", err)
	}

	var rows []fixtureTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures by kickoff range: %w", err)
	}
	return fixturesFromRows(rows), nil
}

func (r *FixtureRepository) ListAll(ctx context.Context) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureSelectColumns...).From("fixtures").
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures: %w", err)
	}
	return fixturesFromRows(rows), nil
}

func (r *FixtureRepository) GetByIDs(ctx context.Context, fixtureIDs []string) ([]fixture.Fixture, error) {
	ids := uniqueStrings(fixtureIDs)
	if len(ids) == 0 {
		return []fixture.Fixture{}, nil
	}

	query, args, err := qb.Select(fixtureSelectColumns...).From("fixtures").
		Where(qb.Any("id", pq.Array(ids))).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures by ids query: %w", err)
	}

	var rows []fixtureTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures by ids: %w", err)
	}
	return fixturesFromRows(rows), nil
}

// fixtureInsertRows keeps the last row per id; one upsert statement cannot
// touch the same row twice.
func fixtureInsertRows(items []fixture.Fixture) []fixtureInsertModel {
	position := make(map[string]int, len(items))
	out := make([]fixtureInsertModel, 0, len(items))
	for _, item := range items {
		row := fixtureInsertModel{
			ID:         item.ID,
			HomeTeam:   item.HomeTeam,
			AwayTeam:   item.AwayTeam,
			KickoffAt:  item.KickoffAt.UTC(),
			HomeSpread: item.HomeSpread,
			AwaySpread: item.AwaySpread,
		}
		if i, ok := position[item.ID]; ok {
			out[i] = row
			continue
		}
		position[item.ID] = len(out)
		out = append(out, row)
	}
	return out
}

func fixturesFromRows(rows []fixtureTableModel) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixture.Fixture{
			ID:         row.ID,
			HomeTeam:   row.HomeTeam,
			AwayTeam:   row.AwayTeam,
			KickoffAt:  row.KickoffAt.UTC(),
			HomeSpread: nullFloat64ToPtr(row.HomeSpread),
			AwaySpread: nullFloat64ToPtr(row.AwaySpread),
		})
	}
	return out
}
