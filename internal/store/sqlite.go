package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/tradeline-audit/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	label      TEXT NOT NULL,
	pulled_at  DATETIME NOT NULL,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS audit_runs (
	id         TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	report     TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_account ON snapshots(account_id, pulled_at);
CREATE INDEX IF NOT EXISTS idx_audit_runs_account ON audit_runs(account_id, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, accountID string, snap model.SeriesSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal snapshot")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, account_id, label, pulled_at, data) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), accountID, snap.Label, snap.Timestamp.UTC(), string(data),
	)
	return eris.Wrap(err, "sqlite: insert snapshot")
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, accountID string) ([]model.SeriesSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM snapshots WHERE account_id = ? ORDER BY pulled_at ASC`, accountID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var snaps []model.SeriesSnapshot
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		var snap model.SeriesSnapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal snapshot")
		}
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: iterate snapshots")
}

func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT account_id FROM snapshots ORDER BY account_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list accounts")
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan account")
		}
		accounts = append(accounts, id)
	}
	return accounts, eris.Wrap(rows.Err(), "sqlite: iterate accounts")
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run AuditRun) (*AuditRun, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal report")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_runs (id, account_id, report, created_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.AccountID, string(reportJSON), run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return &run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*AuditRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, report, created_at FROM audit_runs WHERE id = ?`, runID)

	var run AuditRun
	var reportJSON string
	if err := row.Scan(&run.ID, &run.AccountID, &reportJSON, &run.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	if err := json.Unmarshal([]byte(reportJSON), &run.Report); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal report")
	}
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]AuditRun, error) {
	query := `SELECT id, account_id, report, created_at FROM audit_runs`
	var args []any
	if filter.AccountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, filter.AccountID)
	}
	query += ` ORDER BY created_at DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []AuditRun
	for rows.Next() {
		var run AuditRun
		var reportJSON string
		if err := rows.Scan(&run.ID, &run.AccountID, &reportJSON, &run.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if err := json.Unmarshal([]byte(reportJSON), &run.Report); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal report")
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}
