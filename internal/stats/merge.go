package stats

import (
	"errors"
	"log/slog"
)

// Merger joins category lines into one row per player per game. A player
// who appears in only some categories keeps nil values for the rest.
type Merger struct {
	log    *slog.Logger
	rows   map[Identity]*GameRow
	issues []*DataIntegrityError
	skips  []error
}

func NewMerger(log *slog.Logger) *Merger {
	if log == nil {
		log = slog.Default()
	}
	return &Merger{log: log, rows: map[Identity]*GameRow{}}
}

// Add normalizes a category table and folds its lines in. A rejected table
// is logged, remembered in Skipped and returned; the merger stays usable.
func (m *Merger) Add(t RawTable) error {
	lines, issues, err := normalize(t, m.log)
	if err != nil {
		m.skips = append(m.skips, err)
		var sm *SchemaMismatchError
		switch {
		case errors.As(err, &sm):
			m.log.Warn("skipping category table", "category", sm.Category, "game_id", sm.GameID, "team", sm.Team, "missing", sm.Missing)
		case errors.Is(err, ErrUnknownCategory):
			m.log.Warn("skipping category table", "category", t.Category, "err", err)
		default:
			m.log.Warn("skipping category table", "err", err)
		}
		return err
	}
	for _, is := range issues {
		m.log.Warn("unparseable stat", "category", is.Category, "game_id", is.GameID, "player_id", is.PlayerID, "field", is.Field, "value", is.Value)
	}
	m.issues = append(m.issues, issues...)
	m.AddLines(lines...)
	return nil
}

// AddLines folds already-normalized lines. Team summary rows are ignored.
func (m *Merger) AddLines(lines ...Line) {
	for _, l := range lines {
		id := l.Key()
		if id.isTotals() {
			continue
		}
		row, ok := m.rows[id]
		if !ok {
			row = newGameRow(id)
			m.rows[id] = row
		}
		l.apply(row)
	}
}

func (m *Merger) Issues() []*DataIntegrityError { return m.issues }

func (m *Merger) Skipped() []error { return m.skips }

// Rows materializes the merged rows with rates recomputed, sorted.
func (m *Merger) Rows() []GameRow {
	out := make([]GameRow, 0, len(m.rows))
	for _, r := range m.rows {
		row := *r
		row.recompute()
		out = append(out, row)
	}
	SortGameRows(out)
	return out
}
