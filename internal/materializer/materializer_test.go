package materializer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/usfl-stats/internal/stats"
)

type sample struct {
	Season int      `parquet:"season"`
	Team   string   `parquet:"team"`
	Pct    *float64 `parquet:"COMP%,optional"`
	Ratio  float64  `parquet:"REC_YDS/TARGET"`
	TBA    bool     `parquet:"is_tba"`
}

func TestBuildExternal(t *testing.T) {
	ddl, err := BuildExternal[sample]("usfl", "player_stats", "s3://curated/usfl/player_stats/season_stats/parquet")
	require.NoError(t, err)
	assert.Equal(t, "CREATE EXTERNAL TABLE IF NOT EXISTS `usfl`.`player_stats` (\n"+
		"  `season` bigint,\n"+
		"  `team` string,\n"+
		"  `comp_pct` double,\n"+
		"  `rec_yds_per_target` double,\n"+
		"  `is_tba` boolean\n"+
		")\nSTORED AS PARQUET\nLOCATION 's3://curated/usfl/player_stats/season_stats/parquet/'\n"+
		"TBLPROPERTIES ('parquet.column.index.access'='true', 'parquet.compression'='SNAPPY')", ddl)
}

func TestBuildExternalSeasonRow(t *testing.T) {
	ddl, err := BuildExternal[stats.SeasonRow]("usfl", "player_stats", "s3://b/p/")
	require.NoError(t, err)
	assert.Contains(t, ddl, "`pass_ay_per_a` double")
	assert.Contains(t, ddl, "`sacks` double")
	assert.Contains(t, ddl, "`rush_long` bigint")
	assert.NotContains(t, ddl, "%")
	assert.Equal(t, 1, strings.Count(ddl, "`G` ")+strings.Count(ddl, "`g` "))
}

func TestBuildExternalRejectsNonStruct(t *testing.T) {
	_, err := BuildExternal[int]("usfl", "x", "s3://b/")
	assert.Error(t, err)
}

func TestBuildQueries(t *testing.T) {
	assert.Equal(t, "DROP TABLE IF EXISTS `usfl`.`player_stats`", BuildDrop("usfl", "player_stats"))
	q := BuildPerTeamCounts("usfl", "player_stats", 2023)
	assert.Contains(t, q, `FROM "usfl"."player_stats"`)
	assert.Contains(t, q, "WHERE season=2023")
}
