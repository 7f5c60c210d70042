package postgres

import (
	"github.com/doug-martin/goqu/v8"
	_ "github.com/doug-martin/goqu/v8/dialect/postgres"
)

var psql = goqu.Dialect("postgres")

// buildBatchInsert builds a single multi-row INSERT into table from rows,
// one goqu.Record per row, the same way the teacher's querybuilder.go builds
// a dynamic SELECT from a slice of goqu.Expression: a literal SQL string
// with no placeholders, executed as-is. Replaces a per-row INSERT loop with
// one round trip. Returns "" when rows is empty; callers should skip the
// exec in that case.
func buildBatchInsert(table string, rows []goqu.Record) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	recs := make([]interface{}, len(rows))
	for i, r := range rows {
		recs[i] = r
	}
	sql, _, err := psql.Insert(table).Rows(recs...).ToSQL()
	return sql, err
}
