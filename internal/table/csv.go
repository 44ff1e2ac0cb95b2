package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
)

// WriteCSV writes a header and one record per row. Nil values are empty cells.
func WriteCSV[T any](w io.Writer, rows []T) error {
	cols, err := Columns[T]()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	hdr := make([]string, len(cols))
	for i, c := range cols {
		hdr[i] = c.Name
	}
	if err := cw.Write(hdr); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for _, r := range rows {
		v := reflect.ValueOf(r)
		for i, c := range cols {
			rec[i] = format(v.Field(c.field))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func format(v reflect.Value) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return v.String()
	}
}

// ReadCSV maps a header row onto T's columns by name, in any order.
// Absent optional columns stay nil; an absent required column is an error.
func ReadCSV[T any](r io.Reader) ([]T, error) {
	cols, err := Columns[T]()
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New("csv has no header")
	}

	hdr := recs[0]
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = idxOf(hdr, c.Name)
		if idx[i] < 0 {
			if alt, ok := legacyNames[c.Name]; ok {
				idx[i] = idxOf(hdr, alt)
			}
		}
		if idx[i] < 0 && !c.Optional {
			return nil, fmt.Errorf("%s: %w", c.Name, ErrMissingColumn)
		}
	}

	out := make([]T, 0, len(recs)-1)
	for n, rec := range recs[1:] {
		var row T
		v := reflect.ValueOf(&row).Elem()
		for i, c := range cols {
			if err := set(v.Field(c.field), c, get(rec, idx[i])); err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", n+2, c.Name, err)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func set(f reflect.Value, c Column, s string) error {
	if s == "" {
		// empty optional stays nil, empty required keeps its zero value
		return nil
	}
	dst := f
	if c.Optional {
		dst = reflect.New(f.Type().Elem()).Elem()
	}
	switch c.Kind {
	case String:
		dst.SetString(s)
	case Int:
		n, err := parseInt(s)
		if err != nil {
			return err
		}
		dst.SetInt(n)
	case Float:
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		dst.SetFloat(x)
	case Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	}
	if c.Optional {
		f.Set(dst.Addr())
	}
	return nil
}

// parseInt accepts "12" and the "12.0" older exports wrote for nullable integers.
func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	x, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || x != math.Trunc(x) {
		return 0, err
	}
	return int64(x), nil
}
