package table

import (
	"reflect"
	"strings"
)

var sqlNamer = strings.NewReplacer("%", "_pct", "/", "_per_", " ", "_", "-", "_")

// SQLName turns a published column label into a lowercase identifier that
// engines without quoting support for % or / accept, e.g. COMP% -> comp_pct.
func SQLName(name string) string {
	return strings.ToLower(sqlNamer.Replace(strings.TrimSpace(name)))
}

// Values returns row's column values in column order, with nil for absent optionals.
func Values[T any](row T, cols []Column) []any {
	v := reflect.ValueOf(row)
	out := make([]any, len(cols))
	for i, c := range cols {
		f := v.Field(c.field)
		if f.Kind() == reflect.Pointer {
			if f.IsNil() {
				continue
			}
			f = f.Elem()
		}
		switch c.Kind {
		case Int:
			out[i] = f.Int()
		case Float:
			out[i] = f.Float()
		case Bool:
			out[i] = f.Bool()
		default:
			out[i] = f.String()
		}
	}
	return out
}
