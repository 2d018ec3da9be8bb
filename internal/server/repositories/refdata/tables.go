package refdata

import (
	"github.com/dmitrijs2005/poseidon/internal/dbx"
	"github.com/dmitrijs2005/poseidon/internal/server/models"
)

// BidListTable maps models.BidList onto the bid_list table.
func BidListTable() Table[models.BidList] {
	return Table[models.BidList]{
		Name:    "bid_list",
		Columns: []string{"account", "type", "bid_quantity"},
		Scan: func(s RowScanner) (*models.BidList, error) {
			e := &models.BidList{}
			if err := s.Scan(&e.ID, &e.Account, &e.Type, &e.BidQuantity); err != nil {
				return nil, err
			}
			return e, nil
		},
		Args:  func(e *models.BidList) []any { return []any{e.Account, e.Type, e.BidQuantity} },
		ID:    func(e *models.BidList) int64 { return e.ID },
		SetID: func(e *models.BidList, id int64) { e.ID = id },
	}
}

// CurvePointTable maps models.CurvePoint onto the curve_point table.
func CurvePointTable() Table[models.CurvePoint] {
	return Table[models.CurvePoint]{
		Name:    "curve_point",
		Columns: []string{"curve_id", "term", "value"},
		Scan: func(s RowScanner) (*models.CurvePoint, error) {
			e := &models.CurvePoint{}
			if err := s.Scan(&e.ID, &e.CurveID, &e.Term, &e.Value); err != nil {
				return nil, err
			}
			return e, nil
		},
		Args:  func(e *models.CurvePoint) []any { return []any{e.CurveID, e.Term, e.Value} },
		ID:    func(e *models.CurvePoint) int64 { return e.ID },
		SetID: func(e *models.CurvePoint, id int64) { e.ID = id },
	}
}

// RatingTable maps models.Rating onto the rating table.
func RatingTable() Table[models.Rating] {
	return Table[models.Rating]{
		Name:    "rating",
		Columns: []string{"moodys_rating", "sandp_rating", "fitch_rating", "order_number"},
		Scan: func(s RowScanner) (*models.Rating, error) {
			e := &models.Rating{}
			if err := s.Scan(&e.ID, &e.MoodysRating, &e.SandPRating, &e.FitchRating, &e.OrderNumber); err != nil {
				return nil, err
			}
			return e, nil
		},
		Args: func(e *models.Rating) []any {
			return []any{e.MoodysRating, e.SandPRating, e.FitchRating, e.OrderNumber}
		},
		ID:    func(e *models.Rating) int64 { return e.ID },
		SetID: func(e *models.Rating, id int64) { e.ID = id },
	}
}

// RuleNameTable maps models.RuleName onto the rule_name table.
func RuleNameTable() Table[models.RuleName] {
	return Table[models.RuleName]{
		Name:    "rule_name",
		Columns: []string{"name", "description", "json", "template", "sql_str", "sql_part"},
		Scan: func(s RowScanner) (*models.RuleName, error) {
			e := &models.RuleName{}
			if err := s.Scan(&e.ID, &e.Name, &e.Description, &e.JSON, &e.Template, &e.SQLStr, &e.SQLPart); err != nil {
				return nil, err
			}
			return e, nil
		},
		Args: func(e *models.RuleName) []any {
			return []any{e.Name, e.Description, e.JSON, e.Template, e.SQLStr, e.SQLPart}
		},
		ID:    func(e *models.RuleName) int64 { return e.ID },
		SetID: func(e *models.RuleName, id int64) { e.ID = id },
	}
}

// TradeTable maps models.Trade onto the trade table.
func TradeTable() Table[models.Trade] {
	return Table[models.Trade]{
		Name:    "trade",
		Columns: []string{"account", "type", "buy_quantity"},
		Scan: func(s RowScanner) (*models.Trade, error) {
			e := &models.Trade{}
			if err := s.Scan(&e.ID, &e.Account, &e.Type, &e.BuyQuantity); err != nil {
				return nil, err
			}
			return e, nil
		},
		Args:  func(e *models.Trade) []any { return []any{e.Account, e.Type, e.BuyQuantity} },
		ID:    func(e *models.Trade) int64 { return e.ID },
		SetID: func(e *models.Trade, id int64) { e.ID = id },
	}
}

// Convenience constructors used by the repository manager.

func NewBidListRepository(db dbx.DBTX) *Repository[models.BidList] {
	return NewRepository(db, BidListTable())
}

func NewCurvePointRepository(db dbx.DBTX) *Repository[models.CurvePoint] {
	return NewRepository(db, CurvePointTable())
}

func NewRatingRepository(db dbx.DBTX) *Repository[models.Rating] {
	return NewRepository(db, RatingTable())
}

func NewRuleNameRepository(db dbx.DBTX) *Repository[models.RuleName] {
	return NewRepository(db, RuleNameTable())
}

func NewTradeRepository(db dbx.DBTX) *Repository[models.Trade] {
	return NewRepository(db, TradeTable())
}
