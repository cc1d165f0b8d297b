package shared

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmissionLog is one entry in the admin activity trail: which session
// submitted which entity record and whether the collaborator accepted it.
type SubmissionLog struct {
	SessionID string
	Entity    string
	RecordID  string
	Outcome   string
	Meta      map[string]any
}

// AuditLogger persists submission logs to Postgres.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger constructs an AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record inserts a submission log entry. Best effort: callers ignore the
// error after logging it, a lost entry must never fail a submission.
func (l *AuditLogger) Record(ctx context.Context, entry SubmissionLog) error {
	if l == nil || l.pool == nil {
		return nil
	}
	metaJSON, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO submission_logs (session_id, entity, record_id, outcome, meta, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.SessionID, entry.Entity, entry.RecordID, entry.Outcome, metaJSON, time.Now())
	return err
}
