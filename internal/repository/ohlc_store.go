package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"CoinScope/internal/domain/apperr"
	"CoinScope/internal/domain/models"
	domrepo "CoinScope/internal/domain/repository"
	"CoinScope/pkg/database"
	applogger "CoinScope/pkg/logger"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateTable reports whether name is a plain or schema-qualified SQL identifier.
func ValidateTable(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// SQLOHLCStore implements OHLCStore on any database/sql backend in pkg/database.
type SQLOHLCStore struct {
	db           *sql.DB
	dialect      database.Dialect
	table        string
	queryTimeout time.Duration
	fetchSQL     string
	l            *applogger.Logger
}

var _ domrepo.OHLCStore = (*SQLOHLCStore)(nil)

// NewSQLOHLCStore validates table and prepares the fetch statement text.
func NewSQLOHLCStore(client *database.Client, table string, queryTimeout time.Duration, l *applogger.Logger) (*SQLOHLCStore, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}
	if l == nil {
		l = applogger.Nop()
	}
	d := client.Dialect()
	return &SQLOHLCStore{
		db:           client.DB(),
		dialect:      d,
		table:        table,
		queryTimeout: queryTimeout,
		fetchSQL:     fetchQuery(d, table),
		l:            l,
	}, nil
}

// fetchQuery builds the range select. ReplacingMergeTree only collapses duplicate
// keys on merge, so ClickHouse reads use FINAL.
func fetchQuery(d database.Dialect, table string) string {
	from := d.QuoteIdent(table)
	if d == database.ClickHouse {
		from += " FINAL"
	}
	return fmt.Sprintf(`SELECT coin_id, "timestamp", open, high, low, close
        FROM %s
        WHERE coin_id = %s AND "timestamp" >= %s
        ORDER BY "timestamp" ASC`,
		from, d.Placeholder(1), d.Placeholder(2))
}

// FetchOHLC returns rows for assetID at or after start in ascending timestamp order.
func (s *SQLOHLCStore) FetchOHLC(ctx context.Context, assetID string, start time.Time) ([]models.OHLC, error) {
	begin := time.Now()
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	rows, err := s.db.QueryContext(ctx, s.fetchSQL, assetID, s.dialect.TimeArg(start))
	if err != nil {
		s.l.Error("fetch_ohlc query error",
			applogger.String("table", s.table),
			applogger.String("coin_id", assetID),
			applogger.Error(err),
		)
		return nil, apperr.Internal("failed to load price history", fmt.Errorf("fetch ohlc: %w", err))
	}
	defer rows.Close()

	out := make([]models.OHLC, 0, 256)
	for rows.Next() {
		var r models.OHLC
		var ts scanTime
		if err := rows.Scan(&r.AssetID, &ts, &r.Open, &r.High, &r.Low, &r.Close); err != nil {
			s.l.Error("fetch_ohlc scan error",
				applogger.String("table", s.table),
				applogger.String("coin_id", assetID),
				applogger.Error(err),
			)
			return nil, apperr.Internal("failed to load price history", fmt.Errorf("scan ohlc: %w", err))
		}
		r.Timestamp = ts.Time
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.l.Error("fetch_ohlc rows error",
			applogger.String("table", s.table),
			applogger.String("coin_id", assetID),
			applogger.Error(err),
		)
		return nil, apperr.Internal("failed to load price history", fmt.Errorf("rows: %w", err))
	}
	s.l.Debug("fetch_ohlc ok",
		applogger.String("table", s.table),
		applogger.String("coin_id", assetID),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(begin)),
	)
	return out, nil
}

// InsertBatch writes rows with multi-row VALUES statements. Used by the import
// command and tests; existing (coin_id, timestamp) pairs are not deduplicated here.
func (s *SQLOHLCStore) InsertBatch(ctx context.Context, rows []models.OHLC) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	const chunkSize = 500
	written := 0
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		n := 1
		for _, r := range rows[start:end] {
			if r.AssetID == "" || r.Timestamp.IsZero() {
				continue
			}
			ph := make([]string, 6)
			for i := range ph {
				ph[i] = s.dialect.Placeholder(n)
				n++
			}
			values = append(values, "("+strings.Join(ph, ", ")+")")
			args = append(args, r.AssetID, s.dialect.TimeArg(r.Timestamp), r.Open, r.High, r.Low, r.Close)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf(`INSERT INTO %s (coin_id, "timestamp", open, high, low, close) VALUES %s`,
			s.dialect.QuoteIdent(s.table), strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return written, fmt.Errorf("insert ohlc: %w", err)
		}
		written += len(values)
	}
	return written, nil
}

func (s *SQLOHLCStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// scanTime accepts the timestamp representations the supported drivers return.
type scanTime struct {
	Time time.Time
}

func (t *scanTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
	case int64:
		t.Time = time.Unix(v, 0).UTC()
	case float64:
		sec := int64(v)
		t.Time = time.Unix(sec, int64((v-float64(sec))*1e9)).UTC()
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	case nil:
		return fmt.Errorf("timestamp is null")
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
	return nil
}

func (t *scanTime) parse(s string) error {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.Unix(n, 0).UTC()
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			t.Time = ts.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}
