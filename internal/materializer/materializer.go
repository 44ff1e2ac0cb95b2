package materializer

import (
	"fmt"
	"strings"

	"github.com/tyler180/usfl-stats/internal/table"
)

// Athena rejects % and / in column names, so external tables use
// table.SQLName and bind parquet columns by position instead of by name.

func athenaType(k table.Kind) string {
	switch k {
	case table.Int:
		return "bigint"
	case table.Float:
		return "double"
	case table.Bool:
		return "boolean"
	}
	return "string"
}

// BuildDrop returns a DROP TABLE IF EXISTS for db.name.
func BuildDrop(db, name string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS `%s`.`%s`", db, name)
}

// BuildExternal returns the CREATE EXTERNAL TABLE over every parquet file
// written for T under location.
func BuildExternal[T any](db, name, location string) (string, error) {
	cols, err := table.Columns[T]()
	if err != nil {
		return "", err
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = fmt.Sprintf("  `%s` %s", table.SQLName(c.Name), athenaType(c.Kind))
	}
	if !strings.HasSuffix(location, "/") {
		location += "/"
	}
	return fmt.Sprintf("CREATE EXTERNAL TABLE IF NOT EXISTS `%s`.`%s` (\n%s\n)\nSTORED AS PARQUET\nLOCATION '%s'\nTBLPROPERTIES ('parquet.column.index.access'='true', 'parquet.compression'='SNAPPY')",
		db, name, strings.Join(defs, ",\n"), location), nil
}

// Qualified is db.name quoted for queries; DDL quotes with backticks instead.
func Qualified(db, name string) string {
	return fmt.Sprintf("%q.%q", db, name)
}

// BuildPerTeamCounts lists player rows per team for one season.
func BuildPerTeamCounts(db, name string, season int) string {
	return fmt.Sprintf(`
SELECT team, COUNT(*) AS players
FROM %s
WHERE season=%d
GROUP BY team
ORDER BY team`, Qualified(db, name), season)
}
