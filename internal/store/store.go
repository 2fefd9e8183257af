// Package store persists account snapshot history and audit runs. The
// analysis core stays persistence-free; this is the external persistence
// collaborator it hands results to.
package store

import (
	"context"
	"time"

	"github.com/sells-group/tradeline-audit/internal/model"
	"github.com/sells-group/tradeline-audit/internal/report"
)

// AuditRun is one persisted audit outcome for an account.
type AuditRun struct {
	ID        string             `json:"id"`
	AccountID string             `json:"account_id"`
	Report    report.AuditReport `json:"report"`
	CreatedAt time.Time          `json:"created_at"`
}

// RunFilter specifies criteria for listing audit runs.
type RunFilter struct {
	AccountID string `json:"account_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for snapshots and audit runs.
type Store interface {
	// Snapshots
	SaveSnapshot(ctx context.Context, accountID string, snap model.SeriesSnapshot) error
	ListSnapshots(ctx context.Context, accountID string) ([]model.SeriesSnapshot, error)
	ListAccounts(ctx context.Context) ([]string, error)

	// Audit runs
	SaveRun(ctx context.Context, run AuditRun) (*AuditRun, error)
	GetRun(ctx context.Context, runID string) (*AuditRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]AuditRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
