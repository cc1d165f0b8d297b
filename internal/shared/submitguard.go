package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmitGuard records submitted draft keys so a retried request cannot create
// the same record twice. Keys are unique per entity.
type SubmitGuard struct {
	pool *pgxpool.Pool
}

// NewSubmitGuard constructs the guard.
func NewSubmitGuard(pool *pgxpool.Pool) *SubmitGuard {
	return &SubmitGuard{pool: pool}
}

// CheckAndInsert claims a draft key. ErrDuplicateSubmission signals the draft
// was already accepted.
func (g *SubmitGuard) CheckAndInsert(ctx context.Context, entity, key string) error {
	if g == nil || g.pool == nil {
		return nil
	}
	if key == "" {
		return errors.New("submit guard: key required")
	}
	_, err := g.pool.Exec(ctx,
		`INSERT INTO submission_keys (entity, key, created_at) VALUES ($1, $2, $3)`,
		entity, key, time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSubmission
		}
		return err
	}
	return nil
}

// Release frees a key after the collaborator rejected the draft, so the user
// can resubmit manually.
func (g *SubmitGuard) Release(ctx context.Context, entity, key string) error {
	if g == nil || g.pool == nil {
		return nil
	}
	_, err := g.pool.Exec(ctx, `DELETE FROM submission_keys WHERE entity = $1 AND key = $2`, entity, key)
	return err
}
