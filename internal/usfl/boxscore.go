package usfl

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tyler180/usfl-stats/internal/stats"
)

const matchupSection = "MATCHUP"

var ErrBadHeader = errors.New("usfl: game header incomplete")

// gameMeta is the part of a game header every stat row carries.
type gameMeta struct {
	season int
	id     int
	date   string
}

func metaOf(h Header) (gameMeta, error) {
	id := h.ID.Int()
	if id == nil {
		return gameMeta{}, fmt.Errorf("%w: id %q", ErrBadHeader, h.ID)
	}
	if len(h.EventTime) < 10 {
		return gameMeta{}, fmt.Errorf("%w: game %d event time %q", ErrBadHeader, *id, h.EventTime)
	}
	season, err := strconv.Atoi(h.EventTime[:4])
	if err != nil {
		return gameMeta{}, fmt.Errorf("%w: game %d event time %q", ErrBadHeader, *id, h.EventTime)
	}
	return gameMeta{season: season, id: *id, date: h.EventTime[:10]}, nil
}

// ExtractBoxScore flattens a game's box score into one raw table per team
// per category. Sections that match neither team are skipped.
func ExtractBoxScore(g *Game) ([]stats.RawTable, error) {
	meta, err := metaOf(g.Header)
	if err != nil {
		return nil, err
	}
	away, home := g.Header.LeftTeam, g.Header.RightTeam
	title := cases.Title(language.English)

	var out []stats.RawTable
	for _, sec := range g.Boxscore.Sections {
		if sec.Title == matchupSection {
			continue
		}
		base := stats.Identity{Season: meta.season, GameID: meta.id, GameDate: meta.date}
		switch sec.Title {
		case away.LongName:
			base.Team, base.TeamNickname, base.Loc = away.Name, sec.Title, "A"
			base.Opponent, base.OpponentNickname = home.Name, home.LongName
		case home.LongName:
			base.Team, base.TeamNickname, base.Loc = home.Name, sec.Title, "H"
			base.Opponent, base.OpponentNickname = away.Name, away.LongName
		default:
			continue
		}
		for _, item := range sec.Items {
			out = append(out, tableOf(item.Table, base, title))
		}
	}
	return out, nil
}

// tableOf reads one box-score grid. The header cell at index 0 names the
// category; that column holds the player's display name.
func tableOf(t DataTable, base stats.Identity, title cases.Caser) stats.RawTable {
	var rt stats.RawTable
	labelAt := -1
	for _, h := range t.Headers {
		for pos, c := range h.Columns {
			if (c.Index != nil && *c.Index == 0) || (c.Index == nil && pos == 0) {
				rt.Category = c.Text
				labelAt = len(rt.Columns)
				rt.Columns = append(rt.Columns, "player_name")
				continue
			}
			rt.Columns = append(rt.Columns, c.Text)
		}
	}

	for _, r := range t.Rows {
		row := stats.CategoryRow{Identity: base, Fields: make(map[string]string, len(rt.Columns))}
		for i, c := range r.Columns {
			if i < len(rt.Columns) {
				row.Fields[rt.Columns[i]] = c.Text
			}
		}
		if labelAt >= 0 && labelAt < len(r.Columns) {
			row.PlayerName = strings.TrimSpace(r.Columns[labelAt].Text)
		}
		if e := r.EntityLink; e != nil {
			row.AnalyticsID = e.AnalyticsName
			row.PlayerID = e.id()
			row.PlayerImage = e.ImageURL
			if e.Title != "" {
				row.PlayerName = title.String(e.Title)
			}
		}
		rt.Rows = append(rt.Rows, row)
	}
	return rt
}

// LoadGameDir reads every *.json game payload in dir, in file name order.
// Files that do not decode are logged and skipped.
func LoadGameDir(dir string, log *slog.Logger) ([]*Game, error) {
	if log == nil {
		log = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read game dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	games := make([]*Game, 0, len(names))
	for _, n := range names {
		b, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", n, err)
		}
		g, err := ParseGame(b)
		if err != nil {
			log.Warn("skipping unreadable game file", "file", n, "err", err)
			continue
		}
		games = append(games, g)
	}
	log.Info("loaded game files", "dir", dir, "count", len(games))
	return games, nil
}
