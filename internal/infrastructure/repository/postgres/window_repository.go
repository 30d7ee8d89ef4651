package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nfl-pickem/internal/domain/window"
	qb "github.com/riskibarqy/nfl-pickem/internal/platform/querybuilder"
)

// WindowRepository stores the active window as a single row.
type WindowRepository struct {
	db *sqlx.DB
}

func NewWindowRepository(db *sqlx.DB) *WindowRepository {
	return &WindowRepository{db: db}
}

func (r *WindowRepository) Get(ctx context.Context) (window.Window, bool, error) {
	query, args, err := qb.Select("start_at", "end_at").From("active_window").
		Where(qb.Eq("singleton", true)).
		ToSQL()
	if err != nil {
		return window.Window{}, false, fmt.Errorf("build select active window query: %w", err)
	}

	var row struct {
		StartAt time.Time `db:"start_at"`
		EndAt   time.Time `db:"end_at"`
	}
	if err := getContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return window.Window{}, false, nil
		}
		return window.Window{}, false, fmt.Errorf("select active window: %w", err)
	}
	return window.Window{Start: row.StartAt.UTC(), End: row.EndAt.UTC()}, true, nil
}

func (r *WindowRepository) Set(ctx context.Context, w window.Window) error {
	query, args, err := qb.InsertInto("active_window").
		Columns("singleton", "start_at", "end_at").
		Values(true, w.Start.UTC(), w.End.UTC()).
		Suffix("ON CONFLICT (singleton) DO UPDATE SET start_at = EXCLUDED.start_at, end_at = EXCLUDED.end_at, updated_at = NOW()").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert active window query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert active window: %w", err)
	}
	return nil
}
