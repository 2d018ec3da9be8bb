package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dmitrijs2005/poseidon/internal/common"
	"github.com/dmitrijs2005/poseidon/internal/dbx"
	"github.com/dmitrijs2005/poseidon/internal/server/models"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/refdata"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/users"
)

// In-memory fakes in the shape of the real repositories. They are not
// concurrency-safe; each test owns its own instance.

type fakeUsersRepo struct {
	byID   map[int64]*models.User
	nextID int64

	usernameTakenErr error
	getErr           error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}, nextID: 1}
}

func (f *fakeUsersRepo) add(u *models.User) *models.User {
	cp := *u
	if cp.ID == 0 {
		cp.ID = f.nextID
		f.nextID++
	}
	f.byID[cp.ID] = &cp
	return &cp
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Username, u.Username) {
			return nil, common.ErrAlreadyExists
		}
	}
	return f.add(u), nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	var result []*models.User
	for _, u := range f.byID {
		cp := *u
		result = append(result, &cp)
	}
	return result, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byID[u.ID]; !ok {
		return nil, common.ErrNotFound
	}
	for id, existing := range f.byID {
		if id != u.ID && strings.EqualFold(existing.Username, u.Username) {
			return nil, common.ErrAlreadyExists
		}
	}
	return f.add(u), nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsersRepo) UsernameTaken(ctx context.Context, username string, excludingID int64) (bool, error) {
	if f.usernameTakenErr != nil {
		return false, f.usernameTakenErr
	}
	for id, u := range f.byID {
		if id != excludingID && strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

type fakeSessionsRepo struct {
	byToken map[string]*models.Session

	createErr error
	deleteErr error
}

func newFakeSessionsRepo() *fakeSessionsRepo {
	return &fakeSessionsRepo{byToken: map[string]*models.Session{}}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byToken[token] = &models.Session{
		Token:     token,
		UserID:    userID,
		Expires:   time.Now().Add(validity),
		CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeSessionsRepo) Find(ctx context.Context, token string) (*models.Session, error) {
	s, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byToken, token)
	return nil
}

func (f *fakeSessionsRepo) DeleteForUser(ctx context.Context, userID int64) error {
	for token, s := range f.byToken {
		if s.UserID == userID {
			delete(f.byToken, token)
		}
	}
	return nil
}

func (f *fakeSessionsRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for token, s := range f.byToken {
		if s.Expires.Before(now) {
			delete(f.byToken, token)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct {
	users    *fakeUsersRepo
	sessions *fakeSessionsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: newFakeUsersRepo(), sessions: newFakeSessionsRepo()}
}

func (f *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return f.users }

func (f *fakeRepoManager) Sessions(db dbx.DBTX) sessions.Repository { return f.sessions }

func (f *fakeRepoManager) BidLists(db dbx.DBTX) *refdata.Repository[models.BidList] {
	return refdata.NewBidListRepository(db)
}

func (f *fakeRepoManager) CurvePoints(db dbx.DBTX) *refdata.Repository[models.CurvePoint] {
	return refdata.NewCurvePointRepository(db)
}

func (f *fakeRepoManager) Ratings(db dbx.DBTX) *refdata.Repository[models.Rating] {
	return refdata.NewRatingRepository(db)
}

func (f *fakeRepoManager) RuleNames(db dbx.DBTX) *refdata.Repository[models.RuleName] {
	return refdata.NewRuleNameRepository(db)
}

func (f *fakeRepoManager) Trades(db dbx.DBTX) *refdata.Repository[models.Trade] {
	return refdata.NewTradeRepository(db)
}
