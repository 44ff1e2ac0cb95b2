package usfl

import (
	"cmp"
	"slices"
)

// ScheduleRow is one game's header, away team first.
type ScheduleRow struct {
	GameID               int    `parquet:"game_id"`
	Season               int    `parquet:"season"`
	AnalyticsDescription string `parquet:"analytics_description"`
	EventStatus          string `parquet:"event_status"`
	IsTBA                bool   `parquet:"is_tba"`
	GameStart            string `parquet:"game_start"`
	GameEnd              string `parquet:"game_end"`
	StatusLine           string `parquet:"status_line"`
	VenueName            string `parquet:"venue_name"`
	VenueLocation        string `parquet:"venue_location"`
	ShareText            string `parquet:"share_text"`
	Importance           string `parquet:"importance"`

	AwayTeamAbv           string `parquet:"away_team_abv"`
	AwayTeamNickname      string `parquet:"away_team_nickname"`
	AwayTeamFullName      string `parquet:"away_team_full_name"`
	AwayTeamRecord        string `parquet:"away_team_record"`
	AwayTeamScore         *int   `parquet:"away_team_score,optional"`
	AwayTeamIsLoser       bool   `parquet:"away_team_is_loser"`
	AwayTeamHasPossession bool   `parquet:"away_team_has_possession"`

	HomeTeamAbv           string `parquet:"home_team_abv"`
	HomeTeamNickname      string `parquet:"home_team_nickname"`
	HomeTeamFullName      string `parquet:"home_team_full_name"`
	HomeTeamRecord        string `parquet:"home_team_record"`
	HomeTeamScore         *int   `parquet:"home_team_score,optional"`
	HomeTeamIsLoser       bool   `parquet:"home_team_is_loser"`
	HomeTeamHasPossession bool   `parquet:"home_team_has_possession"`

	AdditionalTitle string `parquet:"additional_title"`
	EventTitle      string `parquet:"event_title"`
}

// ScheduleFromGames builds one row per game, sorted by game id. Games whose
// header lacks an id or date are returned as errors alongside the rows.
func ScheduleFromGames(games []*Game) ([]ScheduleRow, []error) {
	var (
		out  []ScheduleRow
		errs []error
	)
	for _, g := range games {
		meta, err := metaOf(g.Header)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		h := g.Header
		out = append(out, ScheduleRow{
			GameID:               meta.id,
			Season:               meta.season,
			AnalyticsDescription: h.AnalyticsDescription,
			EventStatus:          h.EventStatus.String(),
			IsTBA:                h.IsTBA,
			GameStart:            h.SocialStartTime,
			GameEnd:              h.SocialStopTime,
			StatusLine:           h.StatusLine,
			VenueName:            h.VenueName,
			VenueLocation:        h.VenueLocation,
			ShareText:            h.ShareText,
			Importance:           h.Importance.String(),

			AwayTeamAbv:           h.LeftTeam.Name,
			AwayTeamNickname:      h.LeftTeam.LongName,
			AwayTeamFullName:      h.LeftTeam.AlternateName,
			AwayTeamRecord:        h.LeftTeam.Record,
			AwayTeamScore:         h.LeftTeam.Score.Int(),
			AwayTeamIsLoser:       h.LeftTeam.IsLoser,
			AwayTeamHasPossession: h.LeftTeam.HasPossession,

			HomeTeamAbv:           h.RightTeam.Name,
			HomeTeamNickname:      h.RightTeam.LongName,
			HomeTeamFullName:      h.RightTeam.AlternateName,
			HomeTeamRecord:        h.RightTeam.Record,
			HomeTeamScore:         h.RightTeam.Score.Int(),
			HomeTeamIsLoser:       h.RightTeam.IsLoser,
			HomeTeamHasPossession: h.RightTeam.HasPossession,

			AdditionalTitle: g.Metadata.Parameters.AdditionalTitle,
			EventTitle:      g.Metadata.Parameters.EventTitle,
		})
	}
	slices.SortStableFunc(out, func(a, b ScheduleRow) int { return cmp.Compare(a.GameID, b.GameID) })
	return out, errs
}
