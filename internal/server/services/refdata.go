package services

import (
	"database/sql"

	"github.com/dmitrijs2005/poseidon/internal/server/models"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/refdata"
	"github.com/dmitrijs2005/poseidon/internal/server/repositories/repomanager"
)

// RefDataService hands the web layer its reference-data stores. The tables
// share one uniform CRUD contract and carry no business rules of their own;
// access control happens entirely in the web layer before these are reached.
type RefDataService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewRefDataService constructs a RefDataService.
func NewRefDataService(db *sql.DB, m repomanager.RepositoryManager) *RefDataService {
	return &RefDataService{db: db, repomanager: m}
}

func (s *RefDataService) BidLists() *refdata.Repository[models.BidList] {
	return s.repomanager.BidLists(s.db)
}

func (s *RefDataService) CurvePoints() *refdata.Repository[models.CurvePoint] {
	return s.repomanager.CurvePoints(s.db)
}

func (s *RefDataService) Ratings() *refdata.Repository[models.Rating] {
	return s.repomanager.Ratings(s.db)
}

func (s *RefDataService) RuleNames() *refdata.Repository[models.RuleName] {
	return s.repomanager.RuleNames(s.db)
}

func (s *RefDataService) Trades() *refdata.Repository[models.Trade] {
	return s.repomanager.Trades(s.db)
}
