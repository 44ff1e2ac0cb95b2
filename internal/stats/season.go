package stats

import (
	"cmp"
	"fmt"
	"slices"
)

// SeasonRow is one player's totals for one team in one season. Field order
// is the published column order for both CSV and parquet.
type SeasonRow struct {
	Season       int    `parquet:"season"`
	Team         string `parquet:"team"`
	TeamNickname string `parquet:"team_nickname"`
	PlayerID     string `parquet:"player_id"`
	PlayerName   string `parquet:"player_name"`
	G            int    `parquet:"G"`

	Comp        int      `parquet:"COMP"`
	Att         int      `parquet:"ATT"`
	CompPct     *float64 `parquet:"COMP%,optional"`
	PassYds     int      `parquet:"PASS_YDS"`
	PassTD      int      `parquet:"PASS_TD"`
	PassTDPct   *float64 `parquet:"PASS_TD%,optional"`
	PassInt     int      `parquet:"PASS_INT"`
	PassIntPct  *float64 `parquet:"PASS_INT%,optional"`
	PassYPA     *float64 `parquet:"PASS_YPA,optional"`
	PassAYA     *float64 `parquet:"PASS_AY/A,optional"`
	PassYPC     *float64 `parquet:"PASS_YPC,optional"`
	PassYdsPerG *float64 `parquet:"PASS_YDS/G,optional"`
	NFLQBR      *float64 `parquet:"NFL_QBR,optional"`
	CFBQBR      *float64 `parquet:"CFB_QBR,optional"`

	Rush        int      `parquet:"RUSH"`
	RushYds     int      `parquet:"RUSH_YDS"`
	RushTD      int      `parquet:"RUSH_TD"`
	RushAvg     *float64 `parquet:"RUSH_AVG,optional"`
	RushLong    *int     `parquet:"RUSH_LONG,optional"`
	RushAttPerG *float64 `parquet:"RUSH_ATT/G,optional"`
	RushYdsPerG *float64 `parquet:"RUSH_YDS/G,optional"`

	RecTargets      int      `parquet:"REC_TARGETS"`
	Rec             int      `parquet:"REC"`
	RecYds          int      `parquet:"REC_YDS"`
	RecAvg          *float64 `parquet:"REC_AVG,optional"`
	RecTD           int      `parquet:"REC_TD"`
	RecLong         *int     `parquet:"REC_LONG,optional"`
	CatchPct        *float64 `parquet:"CATCH%,optional"`
	RecYdsPerTarget *float64 `parquet:"REC_YDS/TARGET,optional"`
	RecYdsPerG      *float64 `parquet:"REC_YDS/G,optional"`

	Fumbles     int `parquet:"FUMBLES"`
	FumblesLost int `parquet:"FUMBLES_LOST"`
	FF          int `parquet:"FF"`
	FR          int `parquet:"FR"`

	Total int     `parquet:"TOTAL"`
	Solo  int     `parquet:"SOLO"`
	Ast   int     `parquet:"AST"`
	TFL   int     `parquet:"TFL"`
	Sacks float64 `parquet:"SACKS"`
	Int   int     `parquet:"INT"`
	PD    int     `parquet:"PD"`
	DefTD int     `parquet:"DEF_TD"`

	FGM    int      `parquet:"FGM"`
	FGA    int      `parquet:"FGA"`
	FGPct  *float64 `parquet:"FG%,optional"`
	FGLong *int     `parquet:"FG_LONG,optional"`
	XPM    int      `parquet:"XPM"`
	XPA    int      `parquet:"XPA"`
	XPPct  *float64 `parquet:"XP%,optional"`

	Punts        int      `parquet:"PUNTS"`
	GrossPuntYds int      `parquet:"GROSS_PUNT_YDS"`
	GrossPuntAvg *float64 `parquet:"GROSS_PUNT_AVG,optional"`
	NetPuntYds   *int     `parquet:"NET_PUNT_YDS,optional"`
	NetPuntAvg   *float64 `parquet:"NET_PUNT_AVG,optional"`
	PuntTB       int      `parquet:"PUNT_TB"`
	PuntsIn20    int      `parquet:"PUNTS_IN_20"`
	PuntsBlk     int      `parquet:"PUNTS_BLK"`
	PuntLong     *int     `parquet:"PUNT_LONG,optional"`

	PR     int      `parquet:"PR"`
	PRYds  int      `parquet:"PR_YDS"`
	PRAvg  *float64 `parquet:"PR_AVG,optional"`
	PRTD   int      `parquet:"PR_TD"`
	PRLong *int     `parquet:"PR_LONG,optional"`

	KR     int      `parquet:"KR"`
	KRYds  int      `parquet:"KR_YDS"`
	KRAvg  *float64 `parquet:"KR_AVG,optional"`
	KRTD   int      `parquet:"KR_TD"`
	KRLong *int     `parquet:"KR_LONG,optional"`
}

type seasonKey struct {
	Season       int
	Team         string
	TeamNickname string
	PlayerID     string
	PlayerName   string
}

// AggregateSeason folds one season's game rows into per-player totals and
// recomputes every rate from those totals. Rows from other seasons and team
// TOTALS rows are ignored.
func AggregateSeason(season int, rows []GameRow) ([]SeasonRow, error) {
	acc := map[seasonKey]*SeasonRow{}
	for i := range rows {
		g := &rows[i]
		if g.Season != season || g.Identity().isTotals() {
			continue
		}
		k := seasonKey{g.Season, g.Team, g.TeamNickname, g.PlayerID, g.PlayerName}
		s, ok := acc[k]
		if !ok {
			s = &SeasonRow{Season: k.Season, Team: k.Team, TeamNickname: k.TeamNickname, PlayerID: k.PlayerID, PlayerName: k.PlayerName}
			acc[k] = s
		}
		s.fold(g)
	}
	if len(acc) == 0 {
		return nil, fmt.Errorf("season %d: %w", season, ErrSeasonNotFound)
	}

	out := make([]SeasonRow, 0, len(acc))
	for _, s := range acc {
		s.derive()
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b SeasonRow) int {
		return cmp.Or(
			cmp.Compare(a.Season, b.Season),
			cmp.Compare(a.Team, b.Team),
			cmp.Compare(a.TeamNickname, b.TeamNickname),
			cmp.Compare(a.PlayerID, b.PlayerID),
			cmp.Compare(a.PlayerName, b.PlayerName),
		)
	})
	return out, nil
}

func add(dst *int, v *int) {
	if v != nil {
		*dst += *v
	}
}

func maxOf(dst **int, v *int) {
	if v == nil {
		return
	}
	if *dst == nil || *v > **dst {
		*dst = intPtr(*v)
	}
}

func (s *SeasonRow) fold(g *GameRow) {
	s.G++

	add(&s.Comp, g.Comp)
	add(&s.Att, g.Att)
	add(&s.PassYds, g.PassYds)
	add(&s.PassTD, g.PassTD)
	add(&s.PassInt, g.PassInt)

	add(&s.Rush, g.Rush)
	add(&s.RushYds, g.RushYds)
	add(&s.RushTD, g.RushTD)
	maxOf(&s.RushLong, g.RushLong)

	add(&s.RecTargets, g.RecTargets)
	add(&s.Rec, g.Rec)
	add(&s.RecYds, g.RecYds)
	add(&s.RecTD, g.RecTD)
	maxOf(&s.RecLong, g.RecLong)

	add(&s.Fumbles, g.Fumbles)
	add(&s.FumblesLost, g.FumblesLost)
	add(&s.FF, g.FF)
	add(&s.FR, g.FR)

	add(&s.Total, g.Total)
	add(&s.Solo, g.Solo)
	add(&s.Ast, g.Ast)
	add(&s.TFL, g.TFL)
	if g.Sacks != nil {
		s.Sacks += *g.Sacks
	}
	add(&s.Int, g.Int)
	add(&s.PD, g.PD)
	add(&s.DefTD, g.DefTD)

	add(&s.FGM, g.FGM)
	add(&s.FGA, g.FGA)
	maxOf(&s.FGLong, g.FGLong)
	add(&s.XPM, g.XPM)
	add(&s.XPA, g.XPA)

	add(&s.Punts, g.Punts)
	add(&s.GrossPuntYds, g.GrossPuntYds)
	add(&s.PuntTB, g.PuntTB)
	add(&s.PuntsIn20, g.PuntsIn20)
	add(&s.PuntsBlk, g.PuntsBlk)
	maxOf(&s.PuntLong, g.PuntLong)

	add(&s.PR, g.PR)
	add(&s.PRYds, g.PRYds)
	add(&s.PRTD, g.PRTD)
	maxOf(&s.PRLong, g.PRLong)

	add(&s.KR, g.KR)
	add(&s.KRYds, g.KRYds)
	add(&s.KRTD, g.KRTD)
	maxOf(&s.KRLong, g.KRLong)
}

// derive fills every rate column from the summed counts. Net punting is
// never reported by the source and stays empty.
func (s *SeasonRow) derive() {
	comp, att := float64(s.Comp), float64(s.Att)
	yds, td, ints := float64(s.PassYds), float64(s.PassTD), float64(s.PassInt)

	s.CompPct = CompletionPct(comp, att)
	s.PassTDPct = PassTDRate(td, att)
	s.PassIntPct = InterceptionRate(ints, att)
	s.PassYPA = YardsPerAttempt(yds, att)
	s.PassAYA = AdjustedYardsPerAttempt(yds, td, ints, att)
	s.PassYPC = YardsPerCompletion(yds, comp)
	s.PassYdsPerG = PerGame(yds, s.G)
	s.NFLQBR = PasserRating(comp, att, yds, td, ints)
	s.CFBQBR = CollegePasserRating(comp, att, yds, td, ints)

	s.RushAvg = Average(float64(s.RushYds), float64(s.Rush))
	s.RushAttPerG = PerGame(float64(s.Rush), s.G)
	s.RushYdsPerG = PerGame(float64(s.RushYds), s.G)

	s.RecAvg = Average(float64(s.RecYds), float64(s.Rec))
	s.CatchPct = CatchPct(float64(s.Rec), float64(s.RecTargets))
	s.RecYdsPerTarget = YardsPerTarget(float64(s.RecYds), float64(s.RecTargets))
	s.RecYdsPerG = PerGame(float64(s.RecYds), s.G)

	s.FGPct = MakePct(float64(s.FGM), float64(s.FGA))
	s.XPPct = MakePct(float64(s.XPM), float64(s.XPA))

	s.GrossPuntAvg = Average(float64(s.GrossPuntYds), float64(s.Punts))
	s.NetPuntYds, s.NetPuntAvg = nil, nil

	s.PRAvg = Average(float64(s.PRYds), float64(s.PR))
	s.KRAvg = Average(float64(s.KRYds), float64(s.KR))
}
