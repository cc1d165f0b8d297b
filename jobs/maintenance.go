package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom-wms/stockroom/internal/platform/db"
)

// TaskMaintenance prunes aged submission keys and activity-log rows.
const TaskMaintenance = "admin:maintenance"

// DefaultRetention is how long submission keys and log rows are kept.
const DefaultRetention = 30 * 24 * time.Hour

// NewMaintenanceTask constructs the maintenance task.
func NewMaintenanceTask() *asynq.Task {
	return asynq.NewTask(TaskMaintenance, nil)
}

// Maintainer removes expired rows from the admin service's own tables. Both
// deletes run in one transaction so a partial sweep never leaves a key
// without its log entry.
type Maintainer struct {
	pool      *pgxpool.Pool
	retention time.Duration
	logger    *slog.Logger
}

// NewMaintainer constructs the maintenance handler. A zero retention falls
// back to DefaultRetention.
func NewMaintainer(pool *pgxpool.Pool, retention time.Duration, logger *slog.Logger) *Maintainer {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Maintainer{pool: pool, retention: retention, logger: logger}
}

// Handle processes TaskMaintenance tasks.
func (m *Maintainer) Handle(ctx context.Context, t *asynq.Task) error {
	cutoff := time.Now().Add(-m.retention)
	err := db.WithTx(ctx, m.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM submission_keys WHERE created_at < $1`, cutoff); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM submission_logs WHERE created_at < $1`, cutoff); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		m.logger.Warn("maintenance sweep failed", slog.Any("error", err))
		return err
	}
	m.logger.Info("maintenance sweep done", slog.Time("cutoff", cutoff))
	return nil
}
