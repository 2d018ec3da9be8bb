package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/poseidon/internal/common"
	"github.com/dmitrijs2005/poseidon/internal/server/auth"
	"github.com/dmitrijs2005/poseidon/internal/server/config"
	"github.com/dmitrijs2005/poseidon/internal/server/models"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/repomanager"
)

// SessionService owns the session lifecycle: establishing a session on login,
// resolving the current principal per request, and tearing sessions down on
// logout. It also mints the short-lived API access tokens used by
// programmatic clients instead of cookies.
type SessionService struct {
	db                  *sql.DB
	repomanager         repomanager.RepositoryManager
	jwtSecret           []byte
	sessionValidity     time.Duration
	accessTokenValidity time.Duration
}

// NewSessionService constructs a SessionService using repositories and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *SessionService {
	return &SessionService{
		db:                  db,
		repomanager:         m,
		jwtSecret:           []byte(cfg.SecretKey),
		sessionValidity:     cfg.SessionValidityDuration,
		accessTokenValidity: cfg.AccessTokenValidityDuration,
	}
}

// Login issues a fresh opaque token bound to the user. Any session carried by
// the previous cookie is destroyed first so an attacker-fixated token never
// survives authentication.
func (s *SessionService) Login(ctx context.Context, user *models.User, previousToken string) (string, error) {
	repo := s.repomanager.Sessions(s.db)

	if previousToken != "" {
		if err := repo.Delete(ctx, previousToken); err != nil {
			return "", common.ErrInternal
		}
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", common.ErrInternal
	}
	if err := repo.Create(ctx, user.ID, token, s.sessionValidity); err != nil {
		return "", common.ErrInternal
	}
	return token, nil
}

// CurrentPrincipal resolves the session token to the up-to-date user record.
// The user is loaded fresh on every call so a role change takes effect
// without re-login. An unknown or expired token yields (nil, nil): anonymous
// is a normal state, not an error.
func (s *SessionService) CurrentPrincipal(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	repo := s.repomanager.Sessions(s.db)
	session, err := repo.Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, common.ErrInternal
	}
	if session.Expires.Before(time.Now()) {
		_ = repo.Delete(ctx, token)
		return nil, nil
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// Logout invalidates the session server-side. It is idempotent: logging out
// twice, or with an already-expired token, is not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repomanager.Sessions(s.db).Delete(ctx, token); err != nil {
		return common.ErrInternal
	}
	return nil
}

// IssueAccessToken mints a short-lived bearer token for the user.
func (s *SessionService) IssueAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidity)
}

// PrincipalFromAccessToken validates a bearer token and loads the user fresh,
// for the same reason CurrentPrincipal does.
func (s *SessionService) PrincipalFromAccessToken(ctx context.Context, tokenString string) (*models.User, error) {
	userID, err := auth.GetUserIDFromToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, nil
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// PurgeExpired prunes expired sessions; the app runs it periodically.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repomanager.Sessions(s.db).DeleteExpired(ctx)
}
