package usfl

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler180/usfl-stats/internal/stats"
)

var ErrNoStandings = errors.New("usfl: standings payload has no sections")

// standings payload: sections of per-division tables
type standingsPayload struct {
	Sections []struct {
		Standings []DataTable `json:"standings"`
	} `json:"standingsSections"`
}

// StandingRow is one team's line in its division table.
type StandingRow struct {
	Season            int    `parquet:"season"`
	Division          string `parquet:"division"`
	TeamRank          *int   `parquet:"team_rank,optional"`
	TeamAnalyticsName string `parquet:"team_analytics_name"`
	League            string `parquet:"league"`
	TeamNickname      string `parquet:"team_nickname"`
	TeamName          string `parquet:"team_name"`
	TeamLogoURL       string `parquet:"team_logo_url"`
	TeamLogoAltURL    string `parquet:"team_logo_alt_url"`
	TeamID            string `parquet:"team_id"`

	OverallRecord        string  `parquet:"overall_record_txt"`
	OverallW             int     `parquet:"overall_W"`
	OverallL             int     `parquet:"overall_L"`
	OverallT             int     `parquet:"overall_T"`
	OverallWinPct        float64 `parquet:"overall_win_pct"`
	OverallPointsScored  int     `parquet:"overall_points_scored"`
	OverallPointsAllowed int     `parquet:"overall_points_allowed"`
	OverallPointDiff     int     `parquet:"overall_point_diff"`

	HomeRecord string  `parquet:"home_record_txt"`
	HomeW      int     `parquet:"home_W"`
	HomeL      int     `parquet:"home_L"`
	HomeT      int     `parquet:"home_T"`
	HomeWinPct float64 `parquet:"home_win_pct"`

	AwayRecord string  `parquet:"away_record_txt"`
	AwayW      int     `parquet:"away_W"`
	AwayL      int     `parquet:"away_L"`
	AwayT      int     `parquet:"away_T"`
	AwayWinPct float64 `parquet:"away_win_pct"`

	DivisionRecord string  `parquet:"division_record_txt"`
	DivisionW      int     `parquet:"division_W"`
	DivisionL      int     `parquet:"division_L"`
	DivisionT      int     `parquet:"division_T"`
	DivisionWinPct float64 `parquet:"division_win_pct"`

	Streak string `parquet:"streak"`
}

// record is a parsed "W-L" split. The league plays no ties.
type record struct{ w, l, t int }

func parseRecord(s string) record {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return record{}
	}
	w, werr := strconv.Atoi(strings.TrimSpace(parts[0]))
	l, lerr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if werr != nil || lerr != nil {
		return record{}
	}
	return record{w: w, l: l}
}

// pct is (W + T/2) / games, zero when no games were played.
func (r record) pct() float64 {
	g := r.w + r.l + r.t
	if g == 0 {
		return 0
	}
	return stats.Round3((float64(r.w) + float64(r.t)/2) / float64(g))
}

func cellText(r DataRow, i int) string {
	if i < 0 || i >= len(r.Columns) {
		return ""
	}
	return strings.TrimSpace(r.Columns[i].Text)
}

func atoiOr0(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ParseStandings reads the league standings payload. Columns are positional:
// rank, team, overall, pct, PF, PA, home, away, division, streak.
func ParseStandings(season int, body []byte) ([]StandingRow, error) {
	var p standingsPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("standings %d: %w", season, err)
	}
	if len(p.Sections) == 0 {
		return nil, fmt.Errorf("standings %d: %w", season, ErrNoStandings)
	}

	var out []StandingRow
	for _, tbl := range p.Sections[0].Standings {
		division := ""
		if len(tbl.Headers) > 0 {
			division = cellText(tbl.Headers[0], 0)
		}
		for _, r := range tbl.Rows {
			row := StandingRow{Season: season, Division: division}
			if n, err := strconv.Atoi(cellText(r, 0)); err == nil {
				row.TeamRank = &n
			}
			if e := r.EntityLink; e != nil {
				row.TeamAnalyticsName = e.AnalyticsName
				row.League = e.AnalyticsSport
				row.TeamID = e.id()
			}
			row.TeamNickname = cellText(r, 1)
			if len(r.Columns) > 1 {
				row.TeamName = r.Columns[1].ImageAltText
				row.TeamLogoURL = r.Columns[1].ImageURL
				row.TeamLogoAltURL = r.Columns[1].AlternateImageURL
			}

			overall := parseRecord(cellText(r, 2))
			row.OverallRecord = cellText(r, 2)
			row.OverallW, row.OverallL, row.OverallT = overall.w, overall.l, overall.t
			row.OverallWinPct = overall.pct()
			row.OverallPointsScored = atoiOr0(cellText(r, 4))
			row.OverallPointsAllowed = atoiOr0(cellText(r, 5))
			row.OverallPointDiff = row.OverallPointsScored - row.OverallPointsAllowed

			home := parseRecord(cellText(r, 6))
			row.HomeRecord = cellText(r, 6)
			row.HomeW, row.HomeL, row.HomeT, row.HomeWinPct = home.w, home.l, home.t, home.pct()

			away := parseRecord(cellText(r, 7))
			row.AwayRecord = cellText(r, 7)
			row.AwayW, row.AwayL, row.AwayT, row.AwayWinPct = away.w, away.l, away.t, away.pct()

			div := parseRecord(cellText(r, 8))
			row.DivisionRecord = cellText(r, 8)
			row.DivisionW, row.DivisionL, row.DivisionT, row.DivisionWinPct = div.w, div.l, div.t, div.pct()

			row.Streak = cellText(r, 9)
			out = append(out, row)
		}
	}
	return out, nil
}
