package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/poseidon/internal/dbx"
	"github.com/dmitrijs2005/poseidon/internal/server/models"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/refdata"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX and
// exposes the schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	BidLists(db dbx.DBTX) *refdata.Repository[models.BidList]
	CurvePoints(db dbx.DBTX) *refdata.Repository[models.CurvePoint]
	Ratings(db dbx.DBTX) *refdata.Repository[models.Rating]
	RuleNames(db dbx.DBTX) *refdata.Repository[models.RuleName]
	Trades(db dbx.DBTX) *refdata.Repository[models.Trade]
}
