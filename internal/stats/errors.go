package stats

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCategory = errors.New("unknown stat category")
	ErrSeasonNotFound  = errors.New("no game rows for season")
)

// SchemaMismatchError means a category table lacks a source column the
// normalizer needs. The table is skipped; other categories proceed.
type SchemaMismatchError struct {
	Category Category
	GameID   int
	Team     string
	Missing  []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s table for game %d team %s missing columns %s",
		e.Category, e.GameID, e.Team, strings.Join(e.Missing, ","))
}

// DataIntegrityError means a numeric cell could not be parsed. The field is
// left unavailable and the row is kept.
type DataIntegrityError struct {
	Category Category
	GameID   int
	PlayerID string
	Field    string
	Value    string
	Err      error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("%s game %d player %s: field %s value %q: %v",
		e.Category, e.GameID, e.PlayerID, e.Field, e.Value, e.Err)
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }
