package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour behind a database/sql driver name.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "pgx"
)

func DialectFor(driverName string) (Dialect, error) {
	switch Dialect(driverName) {
	case SQLite, Postgres:
		return Dialect(driverName), nil
	default:
		return "", fmt.Errorf("db: unsupported driver %q", driverName)
	}
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax. Question
// marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
