package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/poseidon/internal/common"
	"github.com/dmitrijs2005/poseidon/internal/dbx"
	"github.com/dmitrijs2005/poseidon/internal/server/auth"
	"github.com/dmitrijs2005/poseidon/internal/server/models"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/repomanager"
)

const maxFieldLength = 125

// UserService provides authentication and user-directory administration:
//   - Authenticate: verify a submitted (username, password) pair
//   - Create/Update/Delete/List/GetByID: admin-gated directory operations
//
// Authentication failures are deliberately generic: an unknown username and a
// wrong password produce the same error, and the unknown-username path burns
// a decoy hash comparison so the two are not distinguishable by timing.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.Hasher
}

// NewUserService constructs a UserService using repositories and the hasher.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.Hasher) *UserService {
	return &UserService{db: db, repomanager: m, hasher: hasher}
}

// Authenticate verifies the credentials and returns the matching user.
// Every failure path returns common.ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.VerifyDecoy(password)
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

// Create validates the submitted fields, hashes the password, and inserts the
// user. Field problems come back as a *ValidationError; a lost race on the
// username unique index comes back as common.ErrAlreadyExists.
func (s *UserService) Create(ctx context.Context, username, password, fullName, role string) (*models.User, error) {
	if err := s.validate(ctx, 0, username, password, fullName, role); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{Username: username, PasswordHash: hash, FullName: fullName, Role: role}
	created, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}

// Update revalidates everything and rewrites the whole record. The password
// is always re-hashed, even if the submitted plaintext is unchanged, so two
// updates with the same password store different hashes.
func (s *UserService) Update(ctx context.Context, id int64, username, password, fullName, role string) (*models.User, error) {
	if err := s.validate(ctx, id, username, password, fullName, role); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{ID: id, Username: username, PasswordHash: hash, FullName: fullName, Role: role}
	updated, err := s.repomanager.Users(s.db).Update(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return updated, nil
}

// Delete removes the user and all of their sessions in one transaction, so a
// deleted account cannot keep an authenticated browser alive.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Sessions(tx).DeleteForUser(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, id)
	})
}

// GetByID returns a single user or common.ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// List returns the full user directory.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// validate aggregates all field problems. excludingID is 0 on create and the
// edited user's ID on update, mirroring the uniqueness pre-check contract.
func (s *UserService) validate(ctx context.Context, excludingID int64, username, password, fullName, role string) error {
	verr := &ValidationError{}

	switch {
	case username == "":
		verr.add("username", "username is required")
	case utf8.RuneCountInString(username) > maxFieldLength:
		verr.add("username", "username must be at most 125 characters long")
	default:
		taken, err := s.repomanager.Users(s.db).UsernameTaken(ctx, username, excludingID)
		if err != nil {
			return common.ErrInternal
		}
		if taken {
			verr.add("username", "username is already in use")
		}
	}

	switch {
	case fullName == "":
		verr.add("fullName", "full name is required")
	case utf8.RuneCountInString(fullName) > maxFieldLength:
		verr.add("fullName", "full name must be at most 125 characters long")
	}

	if role != models.RoleUser && role != models.RoleAdmin {
		verr.add("role", "role must be USER or ADMIN")
	}

	for _, reason := range auth.EvaluatePassword(password) {
		verr.add("password", reason)
	}

	if verr.empty() {
		return nil
	}
	return verr
}
