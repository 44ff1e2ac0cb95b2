package stats

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// schema describes how one category's source header maps onto its line type.
// required labels must appear in the header; the rest of mapped may be absent.
type schema struct {
	required []string
	mapped   []string
	build    func(*reader) Line
}

var schemas = map[Category]schema{
	Passing: {
		required: []string{"COM", "YDS", "TD", "INT"},
		mapped:   []string{"COM", "PCT", "YDS", "AVG", "TD", "INT", "QBR"},
		build: func(r *reader) Line {
			l := &PassingLine{Identity: r.row.Identity}
			l.Comp, l.Att = r.pair("COM")
			l.Pct = r.rate("PCT")
			l.Yds = r.count("YDS")
			l.Avg = r.rate("AVG")
			l.TD = r.count("TD")
			l.Int = r.count("INT")
			l.QBR = r.rate("QBR")
			return l
		},
	},
	Rushing: {
		required: []string{"ATT", "YDS", "TD"},
		mapped:   []string{"ATT", "YDS", "AVG", "TD", "LNG"},
		build: func(r *reader) Line {
			return &RushingLine{
				Identity: r.row.Identity,
				Att:      r.count("ATT"),
				Yds:      r.count("YDS"),
				Avg:      r.rate("AVG"),
				TD:       r.count("TD"),
				Long:     r.long("LNG"),
			}
		},
	},
	Receiving: {
		required: []string{"REC", "YDS", "TD"},
		mapped:   []string{"TGT", "REC", "YDS", "AVG", "TD", "LNG"},
		build: func(r *reader) Line {
			return &ReceivingLine{
				Identity: r.row.Identity,
				Targets:  r.count("TGT"),
				Rec:      r.count("REC"),
				Yds:      r.count("YDS"),
				Avg:      r.rate("AVG"),
				TD:       r.count("TD"),
				Long:     r.long("LNG"),
			}
		},
	},
	Fumbles: {
		required: []string{"FUM", "LST"},
		mapped:   []string{"FUM", "LST", "FF", "REC"},
		build: func(r *reader) Line {
			return &FumblesLine{
				Identity:  r.row.Identity,
				Fumbles:   r.count("FUM"),
				Lost:      r.count("LST"),
				Forced:    r.count("FF"),
				Recovered: r.count("REC"),
			}
		},
	},
	Defensive: {
		required: []string{"TCK", "SOL"},
		mapped:   []string{"TCK", "SOL", "TFL", "SCK", "INT", "PD", "TD"},
		build: func(r *reader) Line {
			return &DefenseLine{
				Identity: r.row.Identity,
				Total:    r.count("TCK"),
				Solo:     r.count("SOL"),
				TFL:      r.count("TFL"),
				Sacks:    r.halves("SCK"),
				Int:      r.count("INT"),
				PD:       r.count("PD"),
				TD:       r.count("TD"),
			}
		},
	},
	Kicking: {
		required: []string{"FG", "XP"},
		mapped:   []string{"FG", "XP", "LNG"},
		build: func(r *reader) Line {
			l := &KickingLine{Identity: r.row.Identity}
			l.FGM, l.FGA = r.pair("FG")
			l.XPM, l.XPA = r.pair("XP")
			l.Long = r.long("LNG")
			return l
		},
	},
	Punting: {
		required: []string{"NO", "AVG"},
		mapped:   []string{"NO", "AVG", "TB", "20", "BLK", "LNG"},
		build: func(r *reader) Line {
			return &PuntingLine{
				Identity:   r.row.Identity,
				Punts:      r.count("NO"),
				Avg:        r.rate("AVG"),
				Touchbacks: r.count("TB"),
				Inside20:   r.count("20"),
				Blocked:    r.count("BLK"),
				Long:       r.long("LNG"),
			}
		},
	},
	KickReturn: returnSchema(KickReturn),
	PuntReturn: returnSchema(PuntReturn),
}

func returnSchema(kind Category) schema {
	return schema{
		required: []string{"RET", "YDS"},
		mapped:   []string{"RET", "YDS", "AVG", "TD", "LNG"},
		build: func(r *reader) Line {
			return &ReturnLine{
				Identity: r.row.Identity,
				Kind:     kind,
				Returns:  r.count("RET"),
				Yds:      r.count("YDS"),
				Avg:      r.rate("AVG"),
				TD:       r.count("TD"),
				Long:     r.long("LNG"),
			}
		},
	}
}

// ParseCategory maps a box-score section label onto a known category.
func ParseCategory(label string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(label)))
	if _, ok := schemas[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}
	return c, nil
}

// Normalize converts one raw category table into typed lines. A returned
// error means the whole table was rejected; the issues slice lists cells
// that could not be parsed on rows that were kept.
func Normalize(t RawTable) ([]Line, []*DataIntegrityError, error) {
	return normalize(t, slog.Default())
}

func normalize(t RawTable, log *slog.Logger) ([]Line, []*DataIntegrityError, error) {
	cat, err := ParseCategory(t.Category)
	if err != nil {
		return nil, nil, err
	}
	sc := schemas[cat]

	header := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		header[strings.TrimSpace(c)] = true
	}
	var missing []string
	for _, want := range sc.required {
		if !header[want] {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		e := &SchemaMismatchError{Category: cat, Missing: missing}
		if len(t.Rows) > 0 {
			e.GameID, e.Team = t.Rows[0].GameID, t.Rows[0].Team
		}
		return nil, nil, e
	}
	if dropped := unmapped(t.Columns, sc.mapped); len(dropped) > 0 {
		log.Debug("dropping unmapped columns", "category", cat, "columns", dropped)
	}

	lines := make([]Line, 0, len(t.Rows))
	var issues []*DataIntegrityError
	for _, row := range t.Rows {
		r := &reader{cat: cat, row: row}
		lines = append(lines, sc.build(r))
		issues = append(issues, r.issues...)
	}
	return lines, issues, nil
}

func unmapped(cols, mapped []string) []string {
	known := map[string]bool{"player_name": true}
	for _, m := range mapped {
		known[m] = true
	}
	var out []string
	for _, c := range cols {
		if !known[strings.TrimSpace(c)] {
			out = append(out, c)
		}
	}
	return out
}

// reader pulls typed values out of one row, collecting parse failures.
type reader struct {
	cat    Category
	row    CategoryRow
	issues []*DataIntegrityError
}

func (r *reader) note(err error) {
	if err == nil {
		return
	}
	var die *DataIntegrityError
	if !errors.As(err, &die) {
		die = &DataIntegrityError{Err: err}
	}
	die.Category, die.GameID, die.PlayerID = r.cat, r.row.GameID, r.row.PlayerID
	r.issues = append(r.issues, die)
}

func (r *reader) cell(label string) (string, bool) {
	v, ok := r.row.Fields[label]
	return v, ok
}

func (r *reader) count(label string) *int {
	raw, ok := r.cell(label)
	if !ok {
		return nil
	}
	v, err := coerceCount(label, raw)
	r.note(err)
	return v
}

func (r *reader) halves(label string) *float64 {
	raw, ok := r.cell(label)
	if !ok {
		return nil
	}
	v, err := coerceHalfCount(label, raw)
	r.note(err)
	return v
}

func (r *reader) rate(label string) *float64 {
	raw, ok := r.cell(label)
	if !ok {
		return nil
	}
	v, err := coerceRate(label, raw)
	r.note(err)
	return v
}

func (r *reader) long(label string) *int {
	raw, ok := r.cell(label)
	if !ok {
		return nil
	}
	v, err := coerceLong(label, raw)
	r.note(err)
	return v
}

func (r *reader) pair(label string) (*int, *int) {
	raw, ok := r.cell(label)
	if !ok {
		return nil, nil
	}
	m, a, err := coerceMadeAttempted(label, raw)
	r.note(err)
	return m, a
}
