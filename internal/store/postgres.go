package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/tradeline-audit/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, extracted so tests
// can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_snapshot": `INSERT INTO snapshots (id, account_id, label, pulled_at, data) VALUES ($1, $2, $3, $4, $5)`,
	"list_snapshots":  `SELECT data FROM snapshots WHERE account_id = $1 ORDER BY pulled_at ASC`,
	"insert_run":      `INSERT INTO audit_runs (id, account_id, report, created_at) VALUES ($1, $2, $3, $4)`,
	"get_run":         `SELECT id, account_id, report, created_at FROM audit_runs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	account_id TEXT NOT NULL,
	label      TEXT NOT NULL,
	pulled_at  TIMESTAMPTZ NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audit_runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	account_id TEXT NOT NULL,
	report     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_snapshots_account ON snapshots(account_id, pulled_at);
CREATE INDEX IF NOT EXISTS idx_audit_runs_account ON audit_runs(account_id, created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, accountID string, snap model.SeriesSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal snapshot")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, account_id, label, pulled_at, data) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), accountID, snap.Label, snap.Timestamp.UTC(), data,
	)
	return eris.Wrap(err, "postgres: insert snapshot")
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, accountID string) ([]model.SeriesSnapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM snapshots WHERE account_id = $1 ORDER BY pulled_at ASC`, accountID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
	}
	defer rows.Close()

	var snaps []model.SeriesSnapshot
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan snapshot")
		}
		var snap model.SeriesSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal snapshot")
		}
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "postgres: iterate snapshots")
}

func (s *PostgresStore) ListAccounts(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT account_id FROM snapshots ORDER BY account_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list accounts")
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan account")
		}
		accounts = append(accounts, id)
	}
	return accounts, eris.Wrap(rows.Err(), "postgres: iterate accounts")
}

func (s *PostgresStore) SaveRun(ctx context.Context, run AuditRun) (*AuditRun, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal report")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO audit_runs (id, account_id, report, created_at) VALUES ($1, $2, $3, $4)`,
		run.ID, run.AccountID, reportJSON, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return &run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*AuditRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, account_id, report, created_at FROM audit_runs WHERE id = $1`, runID)

	var run AuditRun
	var reportJSON []byte
	if err := row.Scan(&run.ID, &run.AccountID, &reportJSON, &run.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get run")
	}
	if err := json.Unmarshal(reportJSON, &run.Report); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal report")
	}
	return &run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]AuditRun, error) {
	query := `SELECT id, account_id, report, created_at FROM audit_runs`
	var args []any
	argn := 1
	if filter.AccountID != "" {
		query += ` WHERE account_id = $1`
		args = append(args, filter.AccountID)
		argn++
	}
	query += ` ORDER BY created_at DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT $` + strconv.Itoa(argn)
	args = append(args, limit)
	argn++
	if filter.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(argn)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []AuditRun
	for rows.Next() {
		var run AuditRun
		var reportJSON []byte
		if err := rows.Scan(&run.ID, &run.AccountID, &reportJSON, &run.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(reportJSON, &run.Report); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal report")
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
