package stats

import (
	"io"
	"log/slog"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ident(player string, game int) Identity {
	return Identity{
		Season:           2023,
		GameID:           game,
		GameDate:         "2023-04-15",
		Team:             "BHAM",
		TeamNickname:     "Birmingham Stallions",
		Loc:              "H",
		Opponent:         "NJ",
		OpponentNickname: "New Jersey Generals",
		AnalyticsID:      "usfl-" + player,
		PlayerID:         player,
		PlayerImage:      "https://img.example/" + player + ".png",
		PlayerName:       "Player " + player,
	}
}

// row builds a category row from alternating label, value pairs.
func row(id Identity, kv ...string) CategoryRow {
	f := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[kv[i]] = kv[i+1]
	}
	return CategoryRow{Identity: id, Fields: f}
}

func table(cat string, cols []string, rows ...CategoryRow) RawTable {
	return RawTable{Category: cat, Columns: append([]string{"player_name"}, cols...), Rows: rows}
}

func iv(n int) *int { return &n }

func fv(f float64) *float64 { return &f }
