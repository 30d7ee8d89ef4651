package querybuilder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuilder_WindowRange(t *testing.T) {
	start := time.Date(2026, 10, 21, 23, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 27, 0, 0, 0, 0, time.UTC)

	query, args, err := Select("id", "home_team").
		From("fixtures").
		Where(Within("kickoff_at", start, end)).
		OrderBy("kickoff_at", "id").
		Limit(50).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, home_team FROM fixtures WHERE kickoff_at >= $1 AND kickoff_at < $2 ORDER BY kickoff_at, id LIMIT 50", query)
	assert.Equal(t, []any{start, end}, args)
}

func TestSelectBuilder_AnyAndEmptyIn(t *testing.T) {
	ids := []string{"fx-1", "fx-2"}
	query, args, err := Select("fixture_id").
		From("picks").
		Where(Eq("player_id", "p1"), Any("fixture_id", ids), In("team", nil)).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT fixture_id FROM picks WHERE player_id = $1 AND fixture_id = ANY($2) AND 1=0", query)
	require.Len(t, args, 2)
	assert.Equal(t, "p1", args[0])
}

func TestSelectBuilder_InNumbersAfterEarlierArgs(t *testing.T) {
	query, args, err := Select("id").
		From("picks").
		Where(Eq("player_id", "p1"), In("team", []any{"Bills", "Chiefs"})).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM picks WHERE player_id = $1 AND team IN ($2, $3)", query)
	assert.Equal(t, []any{"p1", "Bills", "Chiefs"}, args)
}

func TestSelectBuilder_RequiresTableAndColumns(t *testing.T) {
	_, _, err := Select().From("fixtures").ToSQL()
	assert.Error(t, err)

	_, _, err = Select("id").ToSQL()
	assert.Error(t, err)
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("results").
		Columns("fixture_id", "home_score").
		Values("fx-1", 24).
		Suffix("ON CONFLICT (fixture_id) DO UPDATE SET home_score = EXCLUDED.home_score").
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO results (fixture_id, home_score) VALUES ($1, $2) ON CONFLICT (fixture_id) DO UPDATE SET home_score = EXCLUDED.home_score", query)
	assert.Equal(t, []any{"fx-1", 24}, args)
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("results").Columns("fixture_id", "home_score").Values("fx-1").ToSQL()
	assert.Error(t, err)
}

func TestInsertModels_MultiRow(t *testing.T) {
	type row struct {
		PlayerID  string `db:"player_id"`
		FixtureID string `db:"fixture_id"`
		Skipped   string `db:"-"`
		internal  string
	}

	query, args, err := InsertModels("picks", []row{
		{PlayerID: "p1", FixtureID: "fx-1"},
		{PlayerID: "p1", FixtureID: "fx-2"},
	}, "ON CONFLICT (player_id, fixture_id) DO NOTHING")
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO picks (player_id, fixture_id) VALUES ($1, $2), ($3, $4) ON CONFLICT (player_id, fixture_id) DO NOTHING", query)
	require.Len(t, args, 4)
	assert.Equal(t, "fx-2", args[3])
}

func TestInsertModel_Pointer(t *testing.T) {
	type player struct {
		ID   string `db:"id"`
		Name string `db:"display_name,omitempty"`
	}

	query, args, err := InsertModel("players", &player{ID: "p1", Name: "Casey"}, "")
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO players (id, display_name) VALUES ($1, $2)", query)
	assert.Equal(t, []any{"p1", "Casey"}, args)

	var missing *player
	_, _, err = InsertModel("players", missing, "")
	assert.Error(t, err)
}

func TestInsertModels_Empty(t *testing.T) {
	_, _, err := InsertModels[struct{}]("picks", nil, "")
	assert.Error(t, err)
}
