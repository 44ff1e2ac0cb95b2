package stats

import (
	"errors"
	"strconv"
	"strings"
)

const notApplicable = "-"

var errBadPair = errors.New("expected made/attempted pair")

func clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	return s
}

func blank(s string) bool { return s == "" || s == notApplicable }

// coerceCount: blank or "-" is zero, anything else must be an integer.
func coerceCount(field, raw string) (*int, error) {
	s := clean(raw)
	if blank(s) {
		return intPtr(0), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// some feeds render whole counts as "12.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return nil, &DataIntegrityError{Field: field, Value: raw, Err: err}
		}
		n = int(f)
	}
	return &n, nil
}

// coerceHalfCount is coerceCount for fields that allow half credit (sacks).
func coerceHalfCount(field, raw string) (*float64, error) {
	s := clean(raw)
	if blank(s) {
		return floatPtr(0), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &DataIntegrityError{Field: field, Value: raw, Err: err}
	}
	return &f, nil
}

// coerceRate: "-" means not applicable and stays unavailable.
func coerceRate(field, raw string) (*float64, error) {
	s := strings.TrimSuffix(clean(raw), "%")
	if blank(s) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &DataIntegrityError{Field: field, Value: raw, Err: err}
	}
	return &f, nil
}

// coerceLong handles longest-play cells; a trailing "t" marks a touchdown.
func coerceLong(field, raw string) (*int, error) {
	s := strings.TrimSuffix(strings.ToLower(clean(raw)), "t")
	if blank(s) {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, &DataIntegrityError{Field: field, Value: raw, Err: err}
	}
	return &n, nil
}

// coerceMadeAttempted splits "c/a" and "m/a" cells. A lone "-" is 0/0.
func coerceMadeAttempted(field, raw string) (made, att *int, err error) {
	s := clean(raw)
	if blank(s) {
		return intPtr(0), intPtr(0), nil
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return nil, nil, &DataIntegrityError{Field: field, Value: raw, Err: errBadPair}
	}
	m, merr := coerceCount(field, parts[0])
	a, aerr := coerceCount(field, parts[1])
	if merr != nil || aerr != nil {
		return nil, nil, &DataIntegrityError{Field: field, Value: raw, Err: errors.Join(merr, aerr)}
	}
	return m, a, nil
}
