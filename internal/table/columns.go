package table

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrNotStruct     = errors.New("table row type must be a struct")
	ErrMissingColumn = errors.New("required column missing")
)

// Kind is the scalar type a column holds.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Bool
)

// Column describes one exported field carrying a parquet tag. The struct's
// field order is the column order of every serialization.
type Column struct {
	Name     string
	Kind     Kind
	Optional bool
	field    int
}

// Columns lists T's columns in declaration order.
func Columns[T any]() ([]Column, error) {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

// Names is a convenience over Columns for headers and DDL.
func Names[T any]() ([]string, error) {
	cols, err := Columns[T]()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out, nil
}

func columnsOf(t reflect.Type) ([]Column, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%v: %w", t, ErrNotStruct)
	}
	var cols []Column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("parquet")
		if !ok || !f.IsExported() {
			continue
		}
		parts := strings.Split(tag, ",")
		if parts[0] == "-" {
			continue
		}
		name := parts[0]
		if name == "" {
			name = f.Name
		}
		c := Column{Name: name, field: i}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			c.Optional = true
			ft = ft.Elem()
		}
		switch ft.Kind() {
		case reflect.String:
			c.Kind = String
		case reflect.Int, reflect.Int32, reflect.Int64:
			c.Kind = Int
		case reflect.Float32, reflect.Float64:
			c.Kind = Float
		case reflect.Bool:
			c.Kind = Bool
		default:
			return nil, fmt.Errorf("column %s: unsupported type %s", name, f.Type)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// legacyNames maps a column onto the header the older CSV exports used.
var legacyNames = map[string]string{
	"GROSS_PUNT_AVG": "GROSS_PUNT AVG",
}

func idxOf(hdr []string, name string) int {
	name = strings.ToLower(name)
	for i, h := range hdr {
		if strings.ToLower(strings.TrimSpace(h)) == name {
			return i
		}
	}
	return -1
}

func get(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
