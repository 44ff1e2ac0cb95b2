package store

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/tyler180/usfl-stats/internal/table"
)

var ErrNotFound = errors.New("object not found")

// Blob is a flat key/value byte store: a directory or an S3 prefix.
type Blob interface {
	Put(ctx context.Context, key string, body []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Location(key string) string
}

// Dataset names one family of per-season tables.
type Dataset string

const (
	GameStats   Dataset = "player_stats/game_stats"
	SeasonStats Dataset = "player_stats/season_stats"
	Schedules   Dataset = "schedules"
	Standings   Dataset = "standings"
	PlayByPlay  Dataset = "pbp"
	Rosters     Dataset = "rosters/season"
)

var suffixes = map[Dataset]string{
	GameStats:   "player_game_stats",
	SeasonStats: "player_stats",
	Schedules:   "usfl_schedule",
	Standings:   "usfl_standings",
	PlayByPlay:  "play_by_play",
	Rosters:     "usfl_rosters",
}

// Key is the relative key of a dataset's table for one season, e.g.
// player_stats/season_stats/parquet/2023_player_stats.parquet.
func (d Dataset) Key(season int, format string) string {
	return path.Join(string(d), format, fmt.Sprintf("%d_%s.%s", season, suffixes[d], format))
}

// Dir is the prefix holding every season of one format, used as an external table location.
func (d Dataset) Dir(format string) string {
	return path.Join(string(d), format)
}

// RawGameKey is where a fetched game payload is kept.
func RawGameKey(gameID int) string {
	return path.Join("gamelogs", fmt.Sprintf("%d.json", gameID))
}

// SaveTable writes rows as CSV and parquet and returns the written locations.
func SaveTable[T any](ctx context.Context, b Blob, d Dataset, season int, rows []T) ([]string, error) {
	csvBody, pqBody, err := table.Encode(rows)
	if err != nil {
		return nil, fmt.Errorf("encode %s %d: %w", d, season, err)
	}
	var out []string
	for _, f := range []struct {
		format string
		body   []byte
	}{{"csv", csvBody}, {"parquet", pqBody}} {
		key := d.Key(season, f.format)
		if err := b.Put(ctx, key, f.body); err != nil {
			return out, fmt.Errorf("put %s: %w", b.Location(key), err)
		}
		out = append(out, b.Location(key))
	}
	return out, nil
}

// LoadTable reads a season's table, preferring parquet and falling back to CSV.
func LoadTable[T any](ctx context.Context, b Blob, d Dataset, season int) ([]T, error) {
	var firstErr error
	for _, format := range []string{"parquet", "csv"} {
		key := d.Key(season, format)
		body, err := b.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", b.Location(key), err)
		}
		rows, err := table.Decode[T](key, body)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", b.Location(key), err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%s %d: %w", d, season, firstErr)
}
