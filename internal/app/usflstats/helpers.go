package usflstats

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns the text logger every entrypoint uses.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func normMode(m string) string {
	return strings.ToLower(strings.TrimSpace(m))
}

func filterSeason[T any](rows []T, season int, of func(T) int) []T {
	out := rows[:0:0]
	for _, r := range rows {
		if of(r) == season {
			out = append(out, r)
		}
	}
	return out
}
