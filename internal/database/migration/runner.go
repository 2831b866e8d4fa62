// Package migration applies the versioned V<n>__name.sql schema files and
// records them in schema_migrations.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const lockKey int64 = 746295115

var (
	ErrChecksumMismatch = errors.New("migration checksum mismatch")
	ErrNilDB            = errors.New("migration: nil db")
)

// Runner reads migrations from FS, or from Dir when FS is nil. The binary
// ships the schema embedded in migrations.FS.
type Runner struct {
	Dir    string
	FS     fs.FS
	Logger *zap.Logger
}

// Plan splits the local migrations into the ones recorded in
// schema_migrations and the ones still to apply, both in version order.
type Plan struct {
	Applied []Migration `json:"applied"`
	Pending []Migration `json:"pending"`
}

// session is the subset of *sql.Conn the runner needs. Everything runs on
// one pinned connection because pg_advisory_lock is held per session.
type session interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Run applies pending migrations under an advisory lock and returns how
// many were applied. An edited migration that was already applied stops
// the run before anything new is executed.
func (r Runner) Run(ctx context.Context, db *sql.DB) (int, error) {
	local, err := r.load()
	if err != nil || len(local) == 0 {
		return 0, err
	}

	conn, err := pin(ctx, db)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if err := ensureTable(ctx, conn); err != nil {
		return 0, err
	}
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return 0, fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
	}()

	recorded, err := recordedChecksums(ctx, conn)
	if err != nil {
		return 0, err
	}
	plan, err := buildPlan(local, recorded)
	if err != nil {
		return 0, err
	}

	log := r.logger()
	for i, m := range plan.Pending {
		if err := apply(ctx, conn, m); err != nil {
			return i, err
		}
		log.Info("migration applied", zap.Int64("version", m.Version), zap.String("name", m.Name))
	}
	return len(plan.Pending), nil
}

// Status compares the local files with schema_migrations without applying
// anything.
func (r Runner) Status(ctx context.Context, db *sql.DB) (*Plan, error) {
	local, err := r.load()
	if err != nil {
		return nil, err
	}

	conn, err := pin(ctx, db)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := ensureTable(ctx, conn); err != nil {
		return nil, err
	}
	recorded, err := recordedChecksums(ctx, conn)
	if err != nil {
		return nil, err
	}
	plan, err := buildPlan(local, recorded)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r Runner) load() ([]Migration, error) {
	if r.FS != nil {
		return loadMigrations(r.FS)
	}
	dir := strings.TrimSpace(r.Dir)
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(filepath.Dir(exe), "migrations")
	}
	return loadMigrations(os.DirFS(dir))
}

func pin(ctx context.Context, db *sql.DB) (*sql.Conn, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("open migration session: %w", err)
	}
	return conn, nil
}

func buildPlan(local []Migration, recorded map[int64]string) (Plan, error) {
	plan := Plan{Applied: []Migration{}, Pending: []Migration{}}
	for _, m := range local {
		sum, ok := recorded[m.Version]
		if !ok {
			plan.Pending = append(plan.Pending, m)
			continue
		}
		if sum != m.Checksum {
			return Plan{}, fmt.Errorf("%w: version=%d name=%s", ErrChecksumMismatch, m.Version, m.Name)
		}
		plan.Applied = append(plan.Applied, m)
	}
	return plan, nil
}

func ensureTable(ctx context.Context, s session) error {
	_, err := s.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	return err
}

func recordedChecksums(ctx context.Context, s session) (map[int64]string, error) {
	rows, err := s.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]string{}
	for rows.Next() {
		var (
			version int64
			sum     string
		)
		if err := rows.Scan(&version, &sum); err != nil {
			return nil, err
		}
		out[version] = sum
	}
	return out, rows.Err()
}

// apply runs one migration and its bookkeeping row in a single transaction.
func apply(ctx context.Context, s session, m Migration) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply %s: %w", m.Filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
		m.Version, m.Name, m.Checksum,
	); err != nil {
		return fmt.Errorf("record %s: %w", m.Filename, err)
	}
	return tx.Commit()
}
