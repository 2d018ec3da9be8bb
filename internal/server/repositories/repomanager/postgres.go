// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/poseidon/internal/dbx"
	"github.com/dmitrijs2005/poseidon/internal/server/migrations"
	"github.com/dmitrijs2005/poseidon/internal/server/models"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/refdata"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Sessions returns a sessions.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) BidLists(db dbx.DBTX) *refdata.Repository[models.BidList] {
	return refdata.NewBidListRepository(db)
}

func (m *PostgresRepositoryManager) CurvePoints(db dbx.DBTX) *refdata.Repository[models.CurvePoint] {
	return refdata.NewCurvePointRepository(db)
}

func (m *PostgresRepositoryManager) Ratings(db dbx.DBTX) *refdata.Repository[models.Rating] {
	return refdata.NewRatingRepository(db)
}

func (m *PostgresRepositoryManager) RuleNames(db dbx.DBTX) *refdata.Repository[models.RuleName] {
	return refdata.NewRuleNameRepository(db)
}

func (m *PostgresRepositoryManager) Trades(db dbx.DBTX) *refdata.Repository[models.Trade] {
	return refdata.NewTradeRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
