package web

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/poseidon/internal/common"
	"github.com/dmitrijs2005/poseidon/internal/dbx"
	"github.com/dmitrijs2005/poseidon/internal/logging"
	"github.com/dmitrijs2005/poseidon/internal/server/auth"
	"github.com/dmitrijs2005/poseidon/internal/server/config"
	"github.com/dmitrijs2005/poseidon/internal/server/models"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/refdata"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/users"
	"github.com/dmitrijs2005/poseidon/internal/server/services"
)

// In-memory repository fakes for driving the full middleware/handler stack
// without PostgreSQL. Reference data still goes through SQL, backed by
// sqlmock.

type memUsersRepo struct {
	byID   map[int64]*models.User
	nextID int64
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byID: map[int64]*models.User{}, nextID: 1}
}

func (f *memUsersRepo) put(u *models.User) *models.User {
	cp := *u
	if cp.ID == 0 {
		cp.ID = f.nextID
		f.nextID++
	}
	f.byID[cp.ID] = &cp
	return &cp
}

func (f *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Username, u.Username) {
			return nil, common.ErrAlreadyExists
		}
	}
	return f.put(u), nil
}

func (f *memUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *memUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *memUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	var result []*models.User
	for _, u := range f.byID {
		cp := *u
		result = append(result, &cp)
	}
	return result, nil
}

func (f *memUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byID[u.ID]; !ok {
		return nil, common.ErrNotFound
	}
	for id, existing := range f.byID {
		if id != u.ID && strings.EqualFold(existing.Username, u.Username) {
			return nil, common.ErrAlreadyExists
		}
	}
	return f.put(u), nil
}

func (f *memUsersRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *memUsersRepo) UsernameTaken(ctx context.Context, username string, excludingID int64) (bool, error) {
	for id, u := range f.byID {
		if id != excludingID && strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

type memSessionsRepo struct {
	byToken map[string]*models.Session
}

func newMemSessionsRepo() *memSessionsRepo {
	return &memSessionsRepo{byToken: map[string]*models.Session{}}
}

func (f *memSessionsRepo) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	f.byToken[token] = &models.Session{Token: token, UserID: userID, Expires: time.Now().Add(validity)}
	return nil
}

func (f *memSessionsRepo) Find(ctx context.Context, token string) (*models.Session, error) {
	s, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *memSessionsRepo) Delete(ctx context.Context, token string) error {
	delete(f.byToken, token)
	return nil
}

func (f *memSessionsRepo) DeleteForUser(ctx context.Context, userID int64) error {
	for token, s := range f.byToken {
		if s.UserID == userID {
			delete(f.byToken, token)
		}
	}
	return nil
}

func (f *memSessionsRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

type memRepoManager struct {
	users    *memUsersRepo
	sessions *memSessionsRepo
}

func (f *memRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (f *memRepoManager) Users(db dbx.DBTX) users.Repository { return f.users }

func (f *memRepoManager) Sessions(db dbx.DBTX) sessions.Repository { return f.sessions }

func (f *memRepoManager) BidLists(db dbx.DBTX) *refdata.Repository[models.BidList] {
	return refdata.NewBidListRepository(db)
}

func (f *memRepoManager) CurvePoints(db dbx.DBTX) *refdata.Repository[models.CurvePoint] {
	return refdata.NewCurvePointRepository(db)
}

func (f *memRepoManager) Ratings(db dbx.DBTX) *refdata.Repository[models.Rating] {
	return refdata.NewRatingRepository(db)
}

func (f *memRepoManager) RuleNames(db dbx.DBTX) *refdata.Repository[models.RuleName] {
	return refdata.NewRuleNameRepository(db)
}

func (f *memRepoManager) Trades(db dbx.DBTX) *refdata.Repository[models.Trade] {
	return refdata.NewTradeRepository(db)
}

// testEnv bundles everything a web test touches.
type testEnv struct {
	server *Server
	rm     *memRepoManager
	hasher *auth.Hasher
	mock   sqlmock.Sqlmock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	rm := &memRepoManager{users: newMemUsersRepo(), sessions: newMemSessionsRepo()}
	cfg := &config.Config{
		SecretKey:                   "test-secret",
		SessionValidityDuration:     time.Hour,
		AccessTokenValidityDuration: time.Minute,
	}

	us := services.NewUserService(db, rm, hasher)
	ss := services.NewSessionService(db, rm, cfg)
	rs := services.NewRefDataService(db, rm)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &testEnv{
		server: NewServer(":0", logger, us, ss, rs, cfg.SessionValidityDuration),
		rm:     rm,
		hasher: hasher,
		mock:   mock,
	}
}

func (e *testEnv) seedUser(t *testing.T, username, password, role string) *models.User {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)
	return e.rm.users.put(&models.User{Username: username, PasswordHash: hash, FullName: username, Role: role})
}
