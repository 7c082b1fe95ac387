package storage

import (
	"strconv"
	"strings"

	"github.com/lib/pq"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// dialect captures the SQL differences between the supported drivers. Queries are
// written with ? placeholders and rebound for drivers that number them.
type dialect struct {
	name     string
	likeOp   string
	fold     string
	numbered bool
}

var (
	sqliteDialect   = dialect{name: DriverSQLite, likeOp: "LIKE", fold: foldFunc}
	postgresDialect = dialect{name: DriverPostgres, likeOp: "ILIKE", numbered: true}
)

// rebind rewrites ? placeholders as $1, $2, ... when the driver needs them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// contains returns a case-insensitive substring predicate on col with one placeholder.
// SQLite folds both sides through fold() since its LIKE only folds ASCII;
// PostgreSQL uses ILIKE.
func (d dialect) contains(col string) string {
	if d.fold != "" {
		return d.fold + "(" + col + ") " + d.likeOp + " " + d.fold + `(?) ESCAPE '\'`
	}
	return col + " " + d.likeOp + ` ? ESCAPE '\'`
}

// inInt64 returns a membership predicate on col and its arguments.
func (d dialect) inInt64(col string, ids []int64) (string, []any) {
	if d.name == DriverPostgres {
		return col + " = ANY(?)", []any{pq.Array(ids)}
	}
	args := make([]any, len(ids))
	marks := make([]string, len(ids))
	for i, id := range ids {
		args[i] = id
		marks[i] = "?"
	}
	return col + " IN (" + strings.Join(marks, ", ") + ")", args
}

// quoteIdent quotes a table or column name.
func (d dialect) quoteIdent(name string) string {
	if d.name == DriverPostgres {
		return pq.QuoteIdentifier(name)
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// containsPattern escapes LIKE wildcards in term and wraps it for a substring match.
func containsPattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
