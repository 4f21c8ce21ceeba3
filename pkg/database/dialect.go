package database

import (
	"fmt"
	"strings"
	"time"
)

// Dialect names a supported SQL backend. The value doubles as the config token.
type Dialect string

const (
	Postgres   Dialect = "postgres"
	ClickHouse Dialect = "clickhouse"
	SQLite     Dialect = "sqlite"
)

// ParseDialect accepts the config token (case-insensitive; "postgresql" and "sqlite3" too).
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "":
		return Postgres, nil
	case "clickhouse":
		return ClickHouse, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported store driver %q", s)
	}
}

// DriverName is the database/sql driver registered for d.
func (d Dialect) DriverName() string {
	switch d {
	case ClickHouse:
		return "clickhouse"
	case SQLite:
		return "sqlite"
	default:
		return "postgres"
	}
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// TimeArg converts t into the representation the dialect's timestamp column expects.
// SQLite stores epoch seconds so that range comparisons are numeric.
func (d Dialect) TimeArg(t time.Time) any {
	if d == SQLite {
		return t.Unix()
	}
	return t.UTC()
}

// QuoteIdent double-quotes each dot-separated part of a pre-validated identifier.
func (d Dialect) QuoteIdent(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, ".")
}
