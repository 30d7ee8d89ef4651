package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/nfl-pickem/internal/domain/publishedweek"
	"github.com/riskibarqy/nfl-pickem/internal/domain/result"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

const resultUpsertSuffix = `ON CONFLICT (fixture_id) DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    updated_at = EXCLUDED.updated_at`

var resultSelectColumns = []string{
	"fixture_id",
	"home_score",
	"away_score",
	"updated_at",
}

// ResultRepository owns results and the published week. Both are written in
// one transaction.
type ResultRepository struct {
	db *sqlx.DB
}

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) SaveAndPublish(ctx context.Context, items []result.Result, week publishedweek.Week) (int, error) {
	rows := resultInsertRows(items)
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx for result save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModels("results", rows, resultUpsertSuffix)
	if err != nil {
		return 0, fmt.Errorf("build upsert results query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("upsert results: %w", err)
	}

	weekQuery, weekArgs, err := qb.InsertInto("published_week").
		Columns("singleton", "iso_year", "iso_week").
		Values(true, week.Year, week.Week).
		Suffix("ON CONFLICT (singleton) DO UPDATE SET iso_year = EXCLUDED.iso_year, iso_week = EXCLUDED.iso_week, updated_at = NOW()").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build upsert published week query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, weekQuery, weekArgs...); err != nil {
		return 0, fmt.Errorf("upsert published week: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit result save: %w", err)
	}
	return len(rows), nil
}

func (r *ResultRepository) ListByFixtureIDs(ctx context.Context, fixtureIDs []string) ([]result.Result, error) {
	ids := uniqueStrings(fixtureIDs)
	if len(ids) == 0 {
		return []result.Result{}, nil
	}

	query, args, err := qb.Select(resultSelectColumns...).From("results").
		Where(qb.Any("fixture_id", pq.Array(ids))).
		OrderBy("fixture_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select results by fixtures query: %w", err)
	}

	var rows []resultTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select results by fixtures: %w", err)
	}
	return resultsFromRows(rows), nil
}

func (r *ResultRepository) ListAll(ctx context.Context) ([]result.Result, error) {
	query, args, err := qb.Select(resultSelectColumns...).From("results").
		OrderBy("fixture_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select results query: %w", err)
	}

	var rows []resultTableModel
	if err := selectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select results: %w", err)
	}
	return resultsFromRows(rows), nil
}

// Get implements publishedweek.Repository.
func (r *ResultRepository) Get(ctx context.Context) (publishedweek.Week, bool, error) {
	query, args, err := qb.Select("iso_year", "iso_week").From("published_week").
		Where(qb.Eq("singleton", true)).
		ToSQL()
	if err != nil {
		return publishedweek.Week{}, false, fmt.Errorf("build select published week query: %w", err)
	}

	var row struct {
		Year int `db:"iso_year"`
		Week int `db:"iso_week"`
	}
	if err := getContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return publishedweek.Week{}, false, nil
		}
		return publishedweek.Week{}, false, fmt.Errorf("select published week: %w", err)
	}
	return publishedweek.Week{Year: row.Year, Week: row.Week}, true, nil
}

func resultInsertRows(items []result.Result) []resultTableModel {
	position := make(map[string]int, len(items))
	out := make([]resultTableModel, 0, len(items))
	for _, item := range items {
		row := resultTableModel{
			FixtureID: item.FixtureID,
			HomeScore: item.HomeScore,
			AwayScore: item.AwayScore,
			UpdatedAt: item.UpdatedAt.UTC(),
		}
		if i, ok := position[item.FixtureID]; ok {
			out[i] = row
			continue
		}
		position[item.FixtureID] = len(out)
		out = append(out, row)
	}
	return out
}

func resultsFromRows(rows []resultTableModel) []result.Result {
	out := make([]result.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, result.Result{
			FixtureID: row.FixtureID,
			HomeScore: row.HomeScore,
			AwayScore: row.AwayScore,
			UpdatedAt: row.UpdatedAt.UTC(),
		})
	}
	return out
}
