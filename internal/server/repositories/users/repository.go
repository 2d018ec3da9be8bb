// Package users provides the user-directory repository. Username uniqueness
// is case-insensitive and ultimately guaranteed by a unique index on
// lower(username); UsernameTaken is only the form-level pre-check.
package users

import (
	"context"

	"github.com/dmitrijs2005/poseidon/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id int64) error

	// UsernameTaken reports whether another user already holds the username,
	// ignoring case. excludingID is 0 on create and the edited user's ID on
	// rename.
	UsernameTaken(ctx context.Context, username string, excludingID int64) (bool, error)
}
