package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/tyler180/usfl-stats/internal/table"
)

// SQLite mirrors the per-season tables into a local database file so they
// can be queried ad hoc. Each dataset is one table with a season column.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer; :memory: databases are per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) DB() *sql.DB { return s.db }

func sqliteType(k table.Kind) string {
	switch k {
	case table.Int, table.Bool:
		return "INTEGER"
	case table.Float:
		return "REAL"
	}
	return "TEXT"
}

// TableName is the SQL table a dataset is stored in.
func (d Dataset) TableName() string {
	return "usfl_" + strings.TrimPrefix(suffixes[d], "usfl_")
}

func createSQL(name string, cols []table.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		d := fmt.Sprintf("%q %s", table.SQLName(c.Name), sqliteType(c.Kind))
		if !c.Optional {
			d += " NOT NULL"
		}
		defs[i] = d
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (\n  %s\n)", name, strings.Join(defs, ",\n  "))
}

// ReplaceSeason swaps one season's rows of a dataset inside a transaction.
func ReplaceSeason[T any](ctx context.Context, s *SQLite, d Dataset, season int, rows []T) (err error) {
	cols, err := table.Columns[T]()
	if err != nil {
		return err
	}
	name := d.TableName()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, createSQL(name, cols)); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q WHERE "season" = ?`, name), season); err != nil {
		return fmt.Errorf("clear %s season %d: %w", name, season, err)
	}

	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = fmt.Sprintf("%q", table.SQLName(c.Name))
		marks[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		name, strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", name, err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err = stmt.ExecContext(ctx, table.Values(r, cols)...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", name, i, err)
		}
	}
	return tx.Commit()
}

// CountSeason reports how many rows a dataset holds for one season.
func (s *SQLite) CountSeason(ctx context.Context, d Dataset, season int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %q WHERE "season" = ?`, d.TableName()), season).Scan(&n)
	return n, err
}
