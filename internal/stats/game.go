package stats

import (
	"cmp"
	"log/slog"
	"slices"
)

// GameRow is one player's merged line for one game. Nil pointers mean the
// player had no line in that category or the cell could not be parsed.
type GameRow struct {
	Season           int    `parquet:"season"`
	GameID           int    `parquet:"game_id"`
	GameDate         string `parquet:"game_date"`
	Team             string `parquet:"team"`
	TeamNickname     string `parquet:"team_nickname"`
	Loc              string `parquet:"loc"`
	Opponent         string `parquet:"opponent"`
	OpponentNickname string `parquet:"opponent_nickname"`
	AnalyticsID      string `parquet:"analytics_id"`
	PlayerID         string `parquet:"player_id"`
	PlayerImage      string `parquet:"player_image"`
	PlayerName       string `parquet:"player_name"`

	Comp    *int     `parquet:"COMP,optional"`
	Att     *int     `parquet:"ATT,optional"`
	CompPct *float64 `parquet:"COMP%,optional"`
	PassYds *int     `parquet:"PASS_YDS,optional"`
	PassTD  *int     `parquet:"PASS_TD,optional"`
	PassInt *int     `parquet:"PASS_INT,optional"`
	NFLQBR  *float64 `parquet:"NFL_QBR,optional"`
	YPA     *float64 `parquet:"YPA,optional"`
	YPC     *float64 `parquet:"YPC,optional"`

	Rush     *int     `parquet:"RUSH,optional"`
	RushYds  *int     `parquet:"RUSH_YDS,optional"`
	RushAvg  *float64 `parquet:"RUSH_AVG,optional"`
	RushTD   *int     `parquet:"RUSH_TD,optional"`
	RushLong *int     `parquet:"RUSH_LONG,optional"`

	RecTargets   *int     `parquet:"REC_TARGETS,optional"`
	Rec          *int     `parquet:"REC,optional"`
	RecYds       *int     `parquet:"REC_YDS,optional"`
	RecAvg       *float64 `parquet:"REC_AVG,optional"`
	RecTD        *int     `parquet:"REC_TD,optional"`
	RecLong      *int     `parquet:"REC_LONG,optional"`
	CatchPct     *float64 `parquet:"CATCH%,optional"`
	YdsPerTarget *float64 `parquet:"YDS/TARGET,optional"`

	Fumbles     *int `parquet:"FUMBLES,optional"`
	FumblesLost *int `parquet:"FUMBLES_LOST,optional"`
	FF          *int `parquet:"FF,optional"`
	FR          *int `parquet:"FR,optional"`

	Total *int     `parquet:"TOTAL,optional"`
	Solo  *int     `parquet:"SOLO,optional"`
	Ast   *int     `parquet:"AST,optional"`
	TFL   *int     `parquet:"TFL,optional"`
	Sacks *float64 `parquet:"SACKS,optional"`
	Int   *int     `parquet:"INT,optional"`
	PD    *int     `parquet:"PD,optional"`
	DefTD *int     `parquet:"DEF_TD,optional"`

	FGM    *int     `parquet:"FGM,optional"`
	FGA    *int     `parquet:"FGA,optional"`
	FGPct  *float64 `parquet:"FG%,optional"`
	FGLong *int     `parquet:"FG_LONG,optional"`
	XPM    *int     `parquet:"XPM,optional"`
	XPA    *int     `parquet:"XPA,optional"`
	XPPct  *float64 `parquet:"XP%,optional"`

	Punts        *int     `parquet:"PUNTS,optional"`
	GrossPuntYds *int     `parquet:"GROSS_PUNT_YDS,optional"`
	GrossPuntAvg *float64 `parquet:"GROSS_PUNT_AVG,optional"`
	NetPuntYds   *int     `parquet:"NET_PUNT_YDS,optional"`
	NetPuntAvg   *float64 `parquet:"NET_PUNT_AVG,optional"`
	PuntTB       *int     `parquet:"PUNT_TB,optional"`
	PuntsIn20    *int     `parquet:"PUNTS_IN_20,optional"`
	PuntsBlk     *int     `parquet:"PUNTS_BLK,optional"`
	PuntLong     *int     `parquet:"PUNT_LONG,optional"`

	PR     *int     `parquet:"PR,optional"`
	PRYds  *int     `parquet:"PR_YDS,optional"`
	PRAvg  *float64 `parquet:"PR_AVG,optional"`
	PRTD   *int     `parquet:"PR_TD,optional"`
	PRLong *int     `parquet:"PR_LONG,optional"`

	KR     *int     `parquet:"KR,optional"`
	KRYds  *int     `parquet:"KR_YDS,optional"`
	KRAvg  *float64 `parquet:"KR_AVG,optional"`
	KRTD   *int     `parquet:"KR_TD,optional"`
	KRLong *int     `parquet:"KR_LONG,optional"`
}

func (r *GameRow) Identity() Identity {
	return Identity{
		Season:           r.Season,
		GameID:           r.GameID,
		GameDate:         r.GameDate,
		Team:             r.Team,
		TeamNickname:     r.TeamNickname,
		Loc:              r.Loc,
		Opponent:         r.Opponent,
		OpponentNickname: r.OpponentNickname,
		AnalyticsID:      r.AnalyticsID,
		PlayerID:         r.PlayerID,
		PlayerImage:      r.PlayerImage,
		PlayerName:       r.PlayerName,
	}
}

func newGameRow(id Identity) *GameRow {
	return &GameRow{
		Season:           id.Season,
		GameID:           id.GameID,
		GameDate:         id.GameDate,
		Team:             id.Team,
		TeamNickname:     id.TeamNickname,
		Loc:              id.Loc,
		Opponent:         id.Opponent,
		OpponentNickname: id.OpponentNickname,
		AnalyticsID:      id.AnalyticsID,
		PlayerID:         id.PlayerID,
		PlayerImage:      id.PlayerImage,
		PlayerName:       id.PlayerName,
	}
}

// recompute replaces source-reported rates with ones computed from the
// row's own counts. GROSS_PUNT_AVG keeps the source value since the yards
// were derived from it.
func (r *GameRow) recompute() {
	r.CompPct = ratioOf(r.Comp, r.Att, 100)
	r.YPA = ratioOf(r.PassYds, r.Att, 1)
	r.YPC = ratioOf(r.PassYds, r.Comp, 1)
	r.NFLQBR = nil
	if r.Comp != nil && r.Att != nil && r.PassYds != nil && r.PassTD != nil && r.PassInt != nil {
		r.NFLQBR = PasserRating(float64(*r.Comp), float64(*r.Att), float64(*r.PassYds), float64(*r.PassTD), float64(*r.PassInt))
	}
	r.RushAvg = ratioOf(r.RushYds, r.Rush, 1)
	r.RecAvg = ratioOf(r.RecYds, r.Rec, 1)
	r.CatchPct = ratioOf(r.Rec, r.RecTargets, 100)
	r.YdsPerTarget = ratioOf(r.RecYds, r.RecTargets, 1)
	r.FGPct = ratioOf(r.FGM, r.FGA, 1)
	r.XPPct = ratioOf(r.XPM, r.XPA, 1)
	r.KRAvg = ratioOf(r.KRYds, r.KR, 1)
	r.PRAvg = ratioOf(r.PRYds, r.PR, 1)
}

func ratioOf(num, den *int, scale float64) *float64 {
	if num == nil || den == nil {
		return nil
	}
	return ratio(float64(*num), float64(*den), scale)
}

// rowKey is the uniqueness key of a game row: one line per player per team
// per game. Rows without a player id fall back to the player name.
type rowKey struct {
	Season   int
	GameID   int
	Team     string
	PlayerID string
	Name     string
}

func keyOf(r *GameRow) rowKey {
	k := rowKey{Season: r.Season, GameID: r.GameID, Team: r.Team, PlayerID: r.PlayerID}
	if k.PlayerID == "" {
		k.Name = r.PlayerName
	}
	return k
}

// GameTable accumulates merged rows across games and seasons. Adding a row
// for a (season, game, team, player) already present replaces the earlier
// one. Team TOTALS rows are dropped.
type GameTable struct {
	log   *slog.Logger
	index map[rowKey]int
	rows  []GameRow
	dups  int
}

func NewGameTable(log *slog.Logger) *GameTable {
	if log == nil {
		log = slog.Default()
	}
	return &GameTable{log: log, index: map[rowKey]int{}}
}

func (t *GameTable) Add(rows ...GameRow) {
	for _, r := range rows {
		if r.Identity().isTotals() {
			continue
		}
		k := keyOf(&r)
		if i, ok := t.index[k]; ok {
			t.dups++
			t.log.Debug("duplicate game row replaced", "game_id", k.GameID, "player_id", k.PlayerID)
			t.rows[i] = r
			continue
		}
		t.index[k] = len(t.rows)
		t.rows = append(t.rows, r)
	}
}

func (t *GameTable) Len() int { return len(t.rows) }

// Duplicates is the number of rows replaced by a later row for the same player and game.
func (t *GameTable) Duplicates() int { return t.dups }

// Rows returns a sorted copy of the table.
func (t *GameTable) Rows() []GameRow {
	if t.dups > 0 {
		t.log.Info("dropped duplicate game rows", "count", t.dups)
	}
	out := slices.Clone(t.rows)
	SortGameRows(out)
	return out
}

// BySeason partitions the sorted table so each season's file holds only its own games.
func (t *GameTable) BySeason() map[int][]GameRow {
	out := map[int][]GameRow{}
	for _, r := range t.Rows() {
		out[r.Season] = append(out[r.Season], r)
	}
	return out
}

func (t *GameTable) Seasons() []int {
	seen := map[int]bool{}
	var out []int
	for _, r := range t.rows {
		if !seen[r.Season] {
			seen[r.Season] = true
			out = append(out, r.Season)
		}
	}
	slices.Sort(out)
	return out
}

// SortGameRows orders by season, game date, game id, location, player id.
// The remaining identity fields break ties so output does not depend on input order.
func SortGameRows(rows []GameRow) {
	slices.SortStableFunc(rows, func(a, b GameRow) int {
		return cmp.Or(
			cmp.Compare(a.Season, b.Season),
			cmp.Compare(a.GameDate, b.GameDate),
			cmp.Compare(a.GameID, b.GameID),
			cmp.Compare(a.Loc, b.Loc),
			cmp.Compare(a.PlayerID, b.PlayerID),
			cmp.Compare(a.Team, b.Team),
			cmp.Compare(a.TeamNickname, b.TeamNickname),
			cmp.Compare(a.Opponent, b.Opponent),
			cmp.Compare(a.OpponentNickname, b.OpponentNickname),
			cmp.Compare(a.AnalyticsID, b.AnalyticsID),
			cmp.Compare(a.PlayerName, b.PlayerName),
			cmp.Compare(a.PlayerImage, b.PlayerImage),
		)
	})
}
