package ticker

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/tradelab/internal/core"
	"go.uber.org/zap"
)

// dialect captures the differences between the supported SQL backends.
type dialect struct {
	name       string
	driver     string
	idColumn   string
	realType   string
	dollarArgs bool
	noLimit    string // clause allowing OFFSET without a row limit
	maxConns   int
	pragmas    []string
}

var (
	sqliteDialect = dialect{
		name:     "sqlite",
		driver:   "sqlite",
		idColumn: "INTEGER PRIMARY KEY AUTOINCREMENT",
		realType: "REAL",
		noLimit:  " LIMIT -1",
		maxConns: 1,
		pragmas:  []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"},
	}
	postgresDialect = dialect{
		name:       "postgres",
		driver:     "pgx",
		idColumn:   "BIGSERIAL PRIMARY KEY",
		realType:   "DOUBLE PRECISION",
		dollarArgs: true,
	}
)

// rebind rewrites ? placeholders to $n for backends that need it.
func (d dialect) rebind(query string) string {
	if !d.dollarArgs {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
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

func (d dialect) schema() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ticker_data (
			id         %s,
			ts         BIGINT NOT NULL,
			open       %s NOT NULL,
			high       %s NOT NULL,
			low        %s NOT NULL,
			close      %s NOT NULL,
			volume     BIGINT NOT NULL,
			created_at BIGINT NOT NULL
		)`, d.idColumn, d.realType, d.realType, d.realType, d.realType),
		`CREATE INDEX IF NOT EXISTS idx_ticker_data_ts ON ticker_data(ts)`,
	}
}

const (
	insertQuery = `INSERT INTO ticker_data (ts, open, high, low, close, volume, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`
	selectColumns = `SELECT id, ts, open, high, low, close, volume, created_at FROM ticker_data`
)

// SQLStore persists ticker records in SQLite or PostgreSQL. Timestamps are
// stored as Unix nanoseconds and read back in UTC.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
	now     func() time.Time
}

func newSQLStore(ctx context.Context, d dialect, dsn string, maxConns int, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if d.maxConns > 0 {
		maxConns = d.maxConns
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	for _, p := range d.pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	s := &SQLStore{db: db, dialect: d, logger: logger, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("ticker store opened", zap.String("driver", d.name))
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) insert(ctx context.Context, q queryRower, in core.TickerInput) (core.Ticker, error) {
	rec := core.Ticker{
		Datetime:  in.Datetime.UTC(),
		Open:      in.Open,
		High:      in.High,
		Low:       in.Low,
		Close:     in.Close,
		Volume:    in.Volume,
		CreatedAt: s.now().UTC(),
	}
	err := q.QueryRowContext(ctx, s.dialect.rebind(insertQuery),
		rec.Datetime.UnixNano(), rec.Open, rec.High, rec.Low, rec.Close, rec.Volume, rec.CreatedAt.UnixNano(),
	).Scan(&rec.ID)
	if err != nil {
		return core.Ticker{}, core.WrapError(core.ErrStorageFailed, fmt.Errorf("insert: %w", err))
	}
	return rec, nil
}

// Create inserts one record.
func (s *SQLStore) Create(ctx context.Context, in core.TickerInput) (core.Ticker, error) {
	return s.insert(ctx, s.db, in)
}

// CreateMany inserts all records in a single transaction.
func (s *SQLStore) CreateMany(ctx context.Context, in []core.TickerInput) ([]core.Ticker, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback()

	out := make([]core.Ticker, 0, len(in))
	for _, ti := range in {
		rec, err := s.insert(ctx, tx, ti)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("commit: %w", err))
	}
	return out, nil
}

// List returns records matching the filter.
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]core.Ticker, error) {
	var (
		where []string
		args  []any
	)
	if !filter.From.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, filter.From.UnixNano())
	}
	if !filter.To.IsZero() {
		where = append(where, "ts <= ?")
		args = append(args, filter.To.UnixNano())
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else if filter.Skip > 0 {
		query += s.dialect.noLimit
	}
	if filter.Skip > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Skip)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("list: %w", err))
	}
	defer rows.Close()

	result := []core.Ticker{}
	for rows.Next() {
		var (
			rec       core.Ticker
			ts, creat int64
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Open, &rec.High, &rec.Low, &rec.Close, &rec.Volume, &creat); err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("scan: %w", err))
		}
		rec.Datetime = time.Unix(0, ts).UTC()
		rec.CreatedAt = time.Unix(0, creat).UTC()
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("list: %w", err))
	}
	return result, nil
}

// Count returns the number of stored records.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ticker_data").Scan(&n); err != nil {
		return 0, core.WrapError(core.ErrStorageFailed, fmt.Errorf("count: %w", err))
	}
	return n, nil
}

// DeleteAll removes every record.
func (s *SQLStore) DeleteAll(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM ticker_data")
	if err != nil {
		return 0, core.WrapError(core.ErrStorageFailed, fmt.Errorf("delete: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.WrapError(core.ErrStorageFailed, fmt.Errorf("delete: %w", err))
	}
	return int(n), nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
