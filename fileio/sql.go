package fileio

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// SQLConfig describes the database and the queries returning orders and
// users. Result columns are matched by name like file headers.
type SQLConfig struct {
	Driver      string
	DSN         string
	OrdersQuery string
	UsersQuery  string
	Timeout     time.Duration
}

// SQLSource reads orders straight from a postgres, mysql or sqlite database
type SQLSource struct {
	db   *sql.DB
	cfg  SQLConfig
	opts SourceOptions
}

// NewSQLSource opens the database and checks it is reachable
func NewSQLSource(ctx context.Context, cfg SQLConfig, opts SourceOptions) (*SQLSource, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, "fileio.sql", err)
	}
	src := NewSQLSourceWithDB(db, cfg, opts)

	pingCtx, cancel := src.withTimeout(ctx)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrapf(errors.ErrorTypeSource, "fileio.sql", err, "cannot reach %s database", cfg.Driver)
	}
	return src, nil
}

// NewSQLSourceWithDB uses an open database handle
func NewSQLSourceWithDB(db *sql.DB, cfg SQLConfig, opts SourceOptions) *SQLSource {
	return &SQLSource{db: db, cfg: cfg, opts: opts}
}

// Name identifies the source in logs and reports
func (s *SQLSource) Name() string {
	return "sql:" + s.cfg.Driver
}

// Close releases the database handle
func (s *SQLSource) Close() error {
	return s.db.Close()
}

func (s *SQLSource) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

// LoadOrders runs the orders query
func (s *SQLSource) LoadOrders(ctx context.Context) ([]models.Order, LoadStats, error) {
	start := time.Now()
	stats := LoadStats{Source: s.Name()}
	var orders []models.Order

	err := s.query(ctx, s.cfg.OrdersQuery, orderColumns, func(rec record) {
		stats.Rows++
		o, err := parseOrder(rec, s.opts.Parse)
		if err != nil {
			stats.Malformed++
			return
		}
		orders = append(orders, o)
	})
	if err != nil {
		return nil, stats, err
	}

	orders = s.opts.normalizer().Orders(orders, &stats)
	stats.Duration = time.Since(start)
	s.opts.Logger.Debugf("loaded orders %s", stats)
	return orders, stats, nil
}

// LoadUsers runs the users query
func (s *SQLSource) LoadUsers(ctx context.Context) ([]models.User, LoadStats, error) {
	if s.cfg.UsersQuery == "" {
		return nil, LoadStats{}, errors.New(errors.ErrorTypeDataMissing, "fileio.sql", "no users query configured")
	}

	start := time.Now()
	stats := LoadStats{Source: s.Name()}
	var users []models.User

	err := s.query(ctx, s.cfg.UsersQuery, userColumns, func(rec record) {
		stats.Rows++
		u, err := parseUser(rec, s.opts.Parse)
		if err != nil {
			stats.Malformed++
			return
		}
		users = append(users, u)
	})
	stats.Loaded = len(users)
	stats.Duration = time.Since(start)
	if err != nil {
		return nil, stats, err
	}
	return users, stats, nil
}

func (s *SQLSource) query(ctx context.Context, query string, cols columnSet, fn func(rec record)) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeSource, "fileio.sql", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return errors.Wrap(errors.ErrorTypeSource, "fileio.sql", err)
	}
	idx := cols.resolve(names)
	if missing := cols.missing(idx); len(missing) > 0 {
		return errors.New(errors.ErrorTypeDataFormat, "fileio.sql",
			fmt.Sprintf("query result is missing columns: %v", missing))
	}

	values := make([]sql.NullString, len(names))
	dest := make([]interface{}, len(names))
	for i := range values {
		dest[i] = &values[i]
	}
	row := make([]string, len(names))

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return errors.Wrap(errors.ErrorTypeDataFormat, "fileio.sql", err)
		}
		for i, v := range values {
			row[i] = v.String
		}
		fn(cols.fromRow(idx, row))
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(errors.ErrorTypeSource, "fileio.sql", err)
	}
	return nil
}
