package stats

import "strings"

// Category is a box-score section label as the source reports it.
type Category string

const (
	Passing    Category = "PASSING"
	Rushing    Category = "RUSHING"
	Receiving  Category = "RECEIVING"
	Fumbles    Category = "FUMBLES"
	Defensive  Category = "DEFENSIVE"
	Kicking    Category = "KICKING"
	Punting    Category = "PUNTING"
	KickReturn Category = "KICK RETURN"
	PuntReturn Category = "PUNT RETURN"
)

// Categories lists every category the normalizer understands, in merge order.
func Categories() []Category {
	return []Category{Passing, Rushing, Receiving, Fumbles, Defensive, Kicking, Punting, PuntReturn, KickReturn}
}

// TotalsMarker is the player name the source uses for team summary rows.
const TotalsMarker = "TOTALS"

// Identity is the composite join key shared by every category of one player in one game.
type Identity struct {
	Season           int
	GameID           int
	GameDate         string // YYYY-MM-DD
	Team             string
	TeamNickname     string
	Loc              string // H or A
	Opponent         string
	OpponentNickname string
	AnalyticsID      string
	PlayerID         string
	PlayerImage      string
	PlayerName       string
}

// Key lets category lines expose their identity through embedding.
func (id Identity) Key() Identity { return id }

func (id Identity) isTotals() bool {
	return strings.EqualFold(strings.TrimSpace(id.PlayerName), TotalsMarker)
}

// CategoryRow is one raw stat line: identity plus source label -> cell text.
type CategoryRow struct {
	Identity
	Fields map[string]string
}

// RawTable is one category's rows for one team in one game, with the source header.
type RawTable struct {
	Category string
	Columns  []string
	Rows     []CategoryRow
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }
