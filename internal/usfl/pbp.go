package usfl

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// PlayRow is one play from a game's drive chart.
type PlayRow struct {
	GameID   int    `parquet:"game_id"`
	Season   int    `parquet:"season"`
	GameDate string `parquet:"game_date"`

	AwayTeamID       string `parquet:"away_team_id"`
	AwayTeamNickname string `parquet:"away_team_nickname"`
	AwayTeamFullName string `parquet:"away_team_full_name"`
	HomeTeamID       string `parquet:"home_team_id"`
	HomeTeamNickname string `parquet:"home_team_nickname"`
	HomeTeamFullName string `parquet:"home_team_full_name"`
	OffTeamID        string `parquet:"off_team_id"`
	OffTeamNickname  string `parquet:"off_team_nickname"`
	OffTeamFullName  string `parquet:"off_team_full_name"`
	DefTeamID        string `parquet:"def_team_id"`
	DefTeamNickname  string `parquet:"def_team_nickname"`
	DefTeamFullName  string `parquet:"def_team_full_name"`

	Quarter         string `parquet:"quarter"`
	DriveID         string `parquet:"drive_id"`
	PlayID          int    `parquet:"play_id"`
	DownAndDistance string `parquet:"down_and_distance"`
	Down            *int   `parquet:"down,optional"`
	Distance        string `parquet:"distance"`
	BallOn          string `parquet:"ball_on"`
	TimeOfPlay      string `parquet:"time_of_play"`
	TimeOfPlayMin   *int   `parquet:"time_of_play_min,optional"`
	TimeOfPlaySec   *int   `parquet:"time_of_play_sec,optional"`
	DrivePlayNum    int    `parquet:"drive_play_num"`
	PlayDescription string `parquet:"play_description"`

	AwayScoreChange bool `parquet:"away_team_score_change"`
	HomeScoreChange bool `parquet:"home_team_score_change"`
	AwayScore       int  `parquet:"away_score"`
	HomeScore       int  `parquet:"home_score"`

	DrivePlays   *int   `parquet:"drive_plays,optional"`
	DriveYards   *int   `parquet:"drive_yards,optional"`
	DriveTime    string `parquet:"drive_time"`
	DriveTimeMin *int   `parquet:"drive_time_min,optional"`
	DriveTimeSec *int   `parquet:"drive_time_sec,optional"`
	DriveResult  string `parquet:"drive_result"`
}

// ParsePlayByPlay flattens every game's drive chart, sorted by game id then
// play id. A game that cannot be parsed is returned as an error and left out;
// games without a drive chart contribute nothing.
func ParsePlayByPlay(games []*Game) ([]PlayRow, []error) {
	var (
		out  []PlayRow
		errs []error
	)
	for _, g := range games {
		rows, err := gamePlays(g)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, rows...)
	}
	slices.SortStableFunc(out, func(a, b PlayRow) int {
		return cmp.Or(cmp.Compare(a.GameID, b.GameID), cmp.Compare(a.PlayID, b.PlayID))
	})
	return out, errs
}

func gamePlays(g *Game) ([]PlayRow, error) {
	meta, err := metaOf(g.Header)
	if err != nil {
		return nil, err
	}
	away, home := g.Header.LeftTeam, g.Header.RightTeam
	base := PlayRow{
		GameID:           meta.id,
		Season:           meta.season,
		GameDate:         meta.date,
		AwayTeamID:       away.Name,
		AwayTeamNickname: away.LongName,
		AwayTeamFullName: away.AlternateName,
		HomeTeamID:       home.Name,
		HomeTeamNickname: home.LongName,
		HomeTeamFullName: home.AlternateName,
	}

	var (
		out                  []PlayRow
		awayScore, homeScore int
	)
	for _, sec := range g.PBP.Sections {
		for _, d := range sec.Groups {
			drive := base
			drive.Quarter = sec.Title
			drive.DriveID = d.ID.String()
			drive.DriveResult = d.Title
			drive.DrivePlays, drive.DriveYards, drive.DriveTime = driveSummary(d.Subtitle)
			drive.DriveTimeMin, drive.DriveTimeSec = splitClock(drive.DriveTime)

			var off, def Team
			switch d.ImageAltText {
			case away.AlternateName:
				off, def = away, home
			case home.AlternateName:
				off, def = home, away
			}
			drive.OffTeamID, drive.OffTeamNickname, drive.OffTeamFullName = off.Name, off.LongName, off.AlternateName
			drive.DefTeamID, drive.DefTeamNickname, drive.DefTeamFullName = def.Name, def.LongName, def.AlternateName

			for n, p := range d.Plays {
				id := p.ID.Int()
				if id == nil {
					return nil, fmt.Errorf("game %d drive %s: play id %q", meta.id, drive.DriveID, p.ID)
				}
				if p.LeftTeamScore != nil && p.RightTeamScore != nil {
					if s := p.LeftTeamScore.Int(); s != nil {
						awayScore = *s
					}
					if s := p.RightTeamScore.Int(); s != nil {
						homeScore = *s
					}
				}

				r := drive
				r.PlayID = *id
				r.DrivePlayNum = n + 1
				r.DownAndDistance = p.Title
				r.Down, r.Distance = downDistance(p.Title)
				r.BallOn = p.Subtitle
				r.TimeOfPlay = p.TimeOfPlay
				r.TimeOfPlayMin, r.TimeOfPlaySec = splitClock(p.TimeOfPlay)
				r.PlayDescription = p.PlayDescription
				r.AwayScoreChange = p.LeftTeamScoreChange.Bool()
				r.HomeScoreChange = p.RightTeamScoreChange.Bool()
				r.AwayScore, r.HomeScore = awayScore, homeScore
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// downDistance splits "3RD AND 7" into 3 and "7". Markers such as KICKOFF,
// PAT or END QUARTER have no down.
func downDistance(title string) (*int, string) {
	down, dist, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(title)), " AND ")
	if !ok || down == "" {
		return nil, ""
	}
	n, err := strconv.Atoi(down[:1])
	if err != nil {
		return nil, ""
	}
	return &n, strings.TrimSpace(dist)
}

// driveSummary reads "7 plays · 75 yards · 3:12".
func driveSummary(s string) (plays, yards *int, clock string) {
	parts := strings.Split(s, " · ")
	if len(parts) != 3 {
		return nil, nil, ""
	}
	return leadingInt(parts[0]), leadingInt(parts[1]), strings.TrimSpace(parts[2])
}

func leadingInt(s string) *int {
	f := strings.Fields(s)
	if len(f) == 0 {
		return nil
	}
	n, err := strconv.Atoi(f[0])
	if err != nil {
		return nil
	}
	return &n
}

func splitClock(s string) (mins, secs *int) {
	m, sc, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return nil, nil
	}
	mi, err1 := strconv.Atoi(m)
	si, err2 := strconv.Atoi(sc)
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return &mi, &si
}
