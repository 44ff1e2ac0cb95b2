package usfl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// RosterTeam identifies the team a roster is requested for.
type RosterTeam struct {
	ID            string
	AnalyticsName string
	Name          string
}

// TeamsFromStandings lists each team in the standings once, in table order.
// Rows without a team id are skipped.
func TeamsFromStandings(rows []StandingRow) []RosterTeam {
	seen := map[string]bool{}
	var out []RosterTeam
	for _, r := range rows {
		if r.TeamID == "" || seen[r.TeamID] {
			continue
		}
		seen[r.TeamID] = true
		out = append(out, RosterTeam{ID: r.TeamID, AnalyticsName: r.TeamAnalyticsName, Name: r.TeamName})
	}
	return out
}

// RosterRow is one player on a team's roster page.
type RosterRow struct {
	Season              int    `parquet:"season"`
	TeamID              string `parquet:"team_id"`
	TeamAnalyticsName   string `parquet:"team_analytics_name"`
	TeamName            string `parquet:"team_name"`
	JerseyNumber        string `parquet:"jersey_number"`
	PlayerID            string `parquet:"player_id"`
	PlayerAnalyticsName string `parquet:"player_analytics_name"`
	PlayerName          string `parquet:"player_name"`
	PlayerPos           string `parquet:"player_pos"`
	PlayerAge           *int   `parquet:"player_age,optional"`
	PlayerHeight        string `parquet:"player_height"`
	PlayerWeight        *int   `parquet:"player_weight,optional"`
	PlayerCollege       string `parquet:"player_college"`
	PlayerHeadshot      string `parquet:"player_headshot"`
	PlayerURL           string `parquet:"player_url"`
}

// ParseRoster reads a roster payload. Columns are positional: name (with the
// jersey number as superscript), position, age, height, weight, college.
// Rows without a player link are group headers and are skipped.
func ParseRoster(season int, team RosterTeam, body []byte) ([]RosterRow, error) {
	var p rosterPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("roster %s: %w", team.ID, err)
	}
	var out []RosterRow
	for _, g := range p.Groups {
		for _, r := range g.Rows {
			e := r.EntityLink
			if e == nil || e.id() == "" {
				continue
			}
			row := RosterRow{
				Season:              season,
				TeamID:              team.ID,
				TeamAnalyticsName:   team.AnalyticsName,
				TeamName:            team.Name,
				PlayerID:            e.id(),
				PlayerAnalyticsName: e.AnalyticsName,
				PlayerName:          cellText(r, 0),
				PlayerPos:           cellText(r, 1),
				PlayerAge:           atoiPtr(cellText(r, 2)),
				PlayerHeight:        cellText(r, 3),
				PlayerWeight:        atoiPtr(strings.TrimSuffix(cellText(r, 4), " lbs")),
				PlayerCollege:       cellText(r, 5),
				PlayerHeadshot:      e.ImageURL,
				PlayerURL:           e.ContentURI,
			}
			if len(r.Columns) > 0 {
				row.JerseyNumber = strings.TrimPrefix(strings.TrimSpace(r.Columns[0].Superscript), "#")
			}
			out = append(out, row)
		}
	}
	return out, nil
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func (c *Client) RosterRaw(ctx context.Context, teamID string) ([]byte, error) {
	return c.get(ctx, "/team/"+url.PathEscape(teamID)+"/roster", nil)
}

// Roster downloads and parses one team's current roster, tagged with season.
func (c *Client) Roster(ctx context.Context, season int, team RosterTeam) ([]RosterRow, []byte, error) {
	raw, err := c.RosterRaw(ctx, team.ID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := ParseRoster(season, team, raw)
	if err != nil {
		return nil, nil, err
	}
	return rows, raw, nil
}
