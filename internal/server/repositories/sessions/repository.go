// Package sessions provides a PostgreSQL-backed repository for the opaque
// server-issued session tokens held by browser cookies.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/poseidon/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID int64, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.Session, error)
	// Delete removes a session. Deleting an unknown token is not an error:
	// logout must be idempotent.
	Delete(ctx context.Context, token string) error
	// DeleteForUser removes every session of a user, e.g. when the account is
	// deleted.
	DeleteForUser(ctx context.Context, userID int64) error
	// DeleteExpired prunes sessions whose expiry has passed and reports how
	// many rows were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
