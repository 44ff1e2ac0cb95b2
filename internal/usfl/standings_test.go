package usfl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const standingsBody = `{
  "standingsSections": [
    {
      "standings": [
        {
          "headers": [{"columns": [{"text": "SOUTH DIVISION"}]}],
          "rows": [
            {
              "columns": [
                {"text": "1"},
                {"text": "Stallions", "imageAltText": "Birmingham Stallions", "imageUrl": "https://img.example/bham.png", "alternateImageUrl": "https://img.example/bham-alt.png"},
                {"text": "8-2"},
                {"text": ".800"},
                {"text": "256"},
                {"text": "190"},
                {"text": "5-0"},
                {"text": "3-2"},
                {"text": "4-1"},
                {"text": "W3"}
              ],
              "entityLink": {"analyticsName": "birmingham-stallions", "analyticsSport": "usfl", "layout": {"tokens": {"id": 11}}}
            },
            {
              "columns": [
                {"text": "-"},
                {"text": "Showboats", "imageAltText": "Memphis Showboats"},
                {"text": "0-0"},
                {"text": ".000"},
                {"text": "-"},
                {"text": "-"},
                {"text": "-"},
                {"text": "0-0"},
                {"text": "0-0"},
                {"text": "-"}
              ]
            }
          ]
        }
      ]
    }
  ]
}`

func TestParseStandings(t *testing.T) {
	rows, err := ParseStandings(2023, []byte(standingsBody))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	b := rows[0]
	assert.Equal(t, "SOUTH DIVISION", b.Division)
	assert.Equal(t, 1, *b.TeamRank)
	assert.Equal(t, "11", b.TeamID)
	assert.Equal(t, "usfl", b.League)
	assert.Equal(t, "Birmingham Stallions", b.TeamName)
	assert.Equal(t, 8, b.OverallW)
	assert.Equal(t, 2, b.OverallL)
	assert.Equal(t, 0, b.OverallT)
	assert.Equal(t, 0.8, b.OverallWinPct)
	assert.Equal(t, 66, b.OverallPointDiff)
	assert.Equal(t, 1.0, b.HomeWinPct)
	assert.Equal(t, 0.6, b.AwayWinPct)
	assert.Equal(t, 0.8, b.DivisionWinPct)
	assert.Equal(t, "W3", b.Streak)

	m := rows[1]
	assert.Nil(t, m.TeamRank)
	assert.Equal(t, 0.0, m.OverallWinPct)
	assert.Equal(t, 0, m.OverallPointsScored)
	assert.Equal(t, 0, m.HomeW)
	assert.Equal(t, 0.0, m.HomeWinPct)
}

func TestParseStandingsErrors(t *testing.T) {
	_, err := ParseStandings(2023, []byte(`{"standingsSections": []}`))
	assert.ErrorIs(t, err, ErrNoStandings)

	_, err = ParseStandings(2023, []byte(`nope`))
	assert.Error(t, err)
}
