package repository

import (
	"fmt"

	"CoinScope/pkg/database"
)

// SchemaStatements returns idempotent DDL creating the OHLC table for the dialect.
// table must already be validated.
func SchemaStatements(d database.Dialect, table string) []string {
	t := d.QuoteIdent(table)
	switch d {
	case database.ClickHouse:
		return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    coin_id String,
    "timestamp" DateTime64(3, 'UTC'),
    open Float64,
    high Float64,
    low Float64,
    close Float64
) ENGINE = ReplacingMergeTree
ORDER BY (coin_id, "timestamp")`, t)}
	case database.SQLite:
		return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    coin_id TEXT NOT NULL,
    "timestamp" INTEGER NOT NULL,
    open REAL NOT NULL,
    high REAL NOT NULL,
    low REAL NOT NULL,
    close REAL NOT NULL,
    PRIMARY KEY (coin_id, "timestamp")
)`, t)}
	default:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    coin_id TEXT NOT NULL,
    "timestamp" TIMESTAMPTZ NOT NULL,
    open DOUBLE PRECISION NOT NULL,
    high DOUBLE PRECISION NOT NULL,
    low DOUBLE PRECISION NOT NULL,
    close DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (coin_id, "timestamp")
)`, t),
		}
	}
}
