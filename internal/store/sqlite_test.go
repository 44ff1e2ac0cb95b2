package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/usfl-stats/internal/stats"
)

func TestSQLiteReplaceSeason(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, ReplaceSeason(ctx, db, SeasonStats, 2023, seasonRows()))
	n, err := db.CountSeason(ctx, SeasonStats, 2023)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// replacing keeps other seasons and drops the old rows of this one
	other := seasonRows()[:1]
	other[0].Season = 2022
	require.NoError(t, ReplaceSeason(ctx, db, SeasonStats, 2022, other))
	require.NoError(t, ReplaceSeason(ctx, db, SeasonStats, 2023, seasonRows()[1:]))

	n, err = db.CountSeason(ctx, SeasonStats, 2023)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = db.CountSeason(ctx, SeasonStats, 2022)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var (
		avg  *float64
		yds  int
		comp *float64
	)
	err = db.DB().QueryRowContext(ctx,
		`SELECT "rush_avg", "rush_yds", "comp_pct" FROM "usfl_player_stats" WHERE "season" = 2022`).Scan(&avg, &yds, &comp)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 5.125, *avg)
	assert.Equal(t, 410, yds)
	assert.Nil(t, comp)
}

func TestSQLiteGameStatsTable(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ten := 10
	rows := []stats.GameRow{{Season: 2023, GameID: 1, Team: "NJ", PlayerID: "1024", PlayerName: "Luis Perez", Rush: &ten}}
	require.NoError(t, ReplaceSeason(ctx, db, GameStats, 2023, rows))
	n, err := db.CountSeason(ctx, GameStats, 2023)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
