package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects placeholder syntax and column types for the SQL adapters.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// ParseDialect maps a DB_DRIVER value to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return 0, fmt.Errorf("unknown database driver %q", driver)
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Rebind rewrites "?" placeholders to "$n" for postgres.
// Queries must not contain literal question marks.
func (d Dialect) Rebind(q string) string {
	if d != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Placeholders returns "?, ?, ..." with n entries, already rebound.
func (d Dialect) Placeholders(start, n int) string {
	ph := make([]string, n)
	for i := range ph {
		if d == Postgres {
			ph[i] = "$" + strconv.Itoa(start+i)
		} else {
			ph[i] = "?"
		}
	}
	return strings.Join(ph, ", ")
}
