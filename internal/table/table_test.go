package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Season int      `parquet:"season"`
	Player string   `parquet:"player_name"`
	Yds    *int     `parquet:"PASS_YDS,optional"`
	Pct    *float64 `parquet:"COMP%,optional"`
	Sacks  float64  `parquet:"SACKS"`
	Avg    *float64 `parquet:"GROSS_PUNT_AVG,optional"`
}

func iv(n int) *int { return &n }

func fv(f float64) *float64 { return &f }

func samples() []sample {
	return []sample{
		{Season: 2023, Player: "Alex Mccarron", Yds: iv(250), Pct: fv(66.667), Sacks: 1.5},
		{Season: 2023, Player: "Case Cookus", Sacks: 0},
	}
}

func TestColumnsFollowFieldOrder(t *testing.T) {
	names, err := Names[sample]()
	require.NoError(t, err)
	assert.Equal(t, []string{"season", "player_name", "PASS_YDS", "COMP%", "SACKS", "GROSS_PUNT_AVG"}, names)

	cols, err := Columns[sample]()
	require.NoError(t, err)
	assert.Equal(t, Int, cols[0].Kind)
	assert.False(t, cols[0].Optional)
	assert.Equal(t, Float, cols[3].Kind)
	assert.True(t, cols[3].Optional)

	_, err = Columns[int]()
	assert.ErrorIs(t, err, ErrNotStruct)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, samples()))
	assert.Equal(t,
		"season,player_name,PASS_YDS,COMP%,SACKS,GROSS_PUNT_AVG\n"+
			"2023,Alex Mccarron,250,66.667,1.5,\n"+
			"2023,Case Cookus,,,0,\n",
		buf.String())
}

func TestReadCSVByHeaderName(t *testing.T) {
	in := "player_name,GROSS_PUNT AVG,season,SACKS,PASS_YDS\n" +
		"Alex Mccarron,44.5,2023,2,250.0\n" +
		"Case Cookus,,2023,,\n"
	rows, err := ReadCSV[sample](strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2023, rows[0].Season)
	assert.Equal(t, iv(250), rows[0].Yds)
	assert.Equal(t, fv(44.5), rows[0].Avg)
	assert.Nil(t, rows[0].Pct)
	assert.Equal(t, 2.0, rows[0].Sacks)
	assert.Nil(t, rows[1].Yds)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV[sample](strings.NewReader("player_name,SACKS\nx,1\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadCSV[sample](strings.NewReader("season,player_name,SACKS,PASS_YDS\n2023,x,1,12.5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2 column PASS_YDS")
}

func TestCSVAndParquetCarrySameRows(t *testing.T) {
	csvBody, pqBody, err := Encode(samples())
	require.NoError(t, err)

	fromCSV, err := Decode[sample]("2023_player_stats.csv", csvBody)
	require.NoError(t, err)
	fromParquet, err := Decode[sample]("2023_player_stats.parquet", pqBody)
	require.NoError(t, err)

	assert.Equal(t, samples(), fromCSV)
	assert.Equal(t, samples(), fromParquet)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "parquet", Format("a/b/2023_player_game_stats.PARQUET"))
	assert.Equal(t, "csv", Format("2023.csv"))
	assert.Equal(t, "", Format("2023.json"))

	_, err := Decode[sample]("x.json", nil)
	assert.Error(t, err)
}
