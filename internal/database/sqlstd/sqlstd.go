// Package sqlstd adapts a database/sql handle to database.DB. It backs the
// lib/pq driver option and lets repositories run against go-sqlmock.
package sqlstd

import (
	"context"
	"database/sql"
	"time"

	"hotlist/internal/config"
	"hotlist/internal/database"
	"hotlist/internal/database/postgres"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type DB struct {
	db *sql.DB
}

// Open connects through lib/pq using the same settings as the pgx pool.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (database.DB, error) {
	sqldb, err := sql.Open("postgres", postgres.DSN(cfg))
	if err != nil {
		return nil, err
	}
	if cfg.PoolMaxConns > 0 {
		sqldb.SetMaxOpenConns(int(cfg.PoolMaxConns))
	}
	if cfg.PoolMinConns > 0 {
		sqldb.SetMaxIdleConns(int(cfg.PoolMinConns))
	}
	if cfg.PoolMaxConnLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.PoolMaxConnLifetime)
	}
	if cfg.PoolMaxConnIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.PoolMaxConnIdleTime)
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		timeout := cfg.ConnectTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := sqldb.PingContext(pingCtx); err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	if log != nil {
		log.Info("postgres pool ready",
			zap.String("driver", "postgres"),
			zap.String("host", cfg.DBHost),
			zap.String("database", cfg.DBName),
		)
	}
	return New(sqldb), nil
}

// New wraps an existing handle.
func New(db *sql.DB) *DB {
	return &DB{db: db}
}

func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.db == nil {
		return database.ErrNilDB
	}
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if d == nil || d.db == nil {
		return 0, database.ErrNilDB
	}
	res, err := d.db.ExecContext(ctx, query, args...)
	return rowsAffected(res, err)
}

func (d *DB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if d == nil || d.db == nil {
		return nil, database.ErrNilDB
	}
	r, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows: r}, nil
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	if d == nil || d.db == nil {
		return errRow{err: database.ErrNilDB}
	}
	return d.db.QueryRowContext(ctx, query, args...)
}

func (d *DB) Begin(ctx context.Context) (database.Tx, error) {
	if d == nil || d.db == nil {
		return nil, database.ErrNilDB
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{tx: tx}, nil
}

func (d *DB) SQLDB() *sql.DB {
	if d == nil {
		return nil
	}
	return d.db
}

type sqlTx struct {
	tx *sql.Tx
}

func (t sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	return rowsAffected(res, err)
}

func (t sqlTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	r, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows: r}, nil
}

func (t sqlTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t sqlTx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

func (t sqlTx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}

type sqlRows struct {
	rows *sql.Rows
}

func (r sqlRows) Close() {
	_ = r.rows.Close()
}

func (r sqlRows) Next() bool {
	return r.rows.Next()
}

func (r sqlRows) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

func (r sqlRows) Err() error {
	return r.rows.Err()
}

type errRow struct {
	err error
}

func (r errRow) Scan(_ ...any) error {
	return r.err
}

func rowsAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
