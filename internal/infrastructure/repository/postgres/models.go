package postgres

import (
	"database/sql"
	"time"
)

type fixtureTableModel struct {
	ID         string          `db:"id"`
	HomeTeam   string          `db:"home_team"`
	AwayTeam   string          `db:"away_team"`
	KickoffAt  time.Time       `db:"kickoff_at"`
	HomeSpread sql.NullFloat64 `db:"home_spread"`
	AwaySpread sql.NullFloat64 `db:"away_spread"`
}

type fixtureInsertModel struct {
	ID         string    `db:"id"`
	HomeTeam   string    `db:"home_team"`
	AwayTeam   string    `db:"away_team"`
	KickoffAt  time.Time `db:"kickoff_at"`
	HomeSpread *float64  `db:"home_spread"`
	AwaySpread *float64  `db:"away_spread"`
}

type pickTableModel struct {
	PlayerID  string    `db:"player_id"`
	FixtureID string    `db:"fixture_id"`
	Team      string    `db:"team"`
	CreatedAt time.Time `db:"created_at"`
}

type resultTableModel struct {
	FixtureID string    `db:"fixture_id"`
	HomeScore int       `db:"home_score"`
	AwayScore int       `db:"away_score"`
	UpdatedAt time.Time `db:"updated_at"`
}

type playerTableModel struct {
	ID          string    `db:"id"`
	DisplayName string    `db:"display_name"`
	Privileged  bool      `db:"privileged"`
	FirstSeenAt time.Time `db:"first_seen_at"`
	LastSeenAt  time.Time `db:"last_seen_at"`
}
