package models

// Reference-data records managed by the console. These are plain rows; all
// access rules live in the web layer, and the repositories expose one uniform
// CRUD contract for each of them.

// BidList is a bid quote for an account.
type BidList struct {
	ID          int64   `db:"id"`
	Account     string  `db:"account"`
	Type        string  `db:"type"`
	BidQuantity float64 `db:"bid_quantity"`
}

// CurvePoint is a single (term, value) point on a rate curve.
type CurvePoint struct {
	ID      int64   `db:"id"`
	CurveID int64   `db:"curve_id"`
	Term    float64 `db:"term"`
	Value   float64 `db:"value"`
}

// Rating aggregates the three agency ratings for an instrument.
type Rating struct {
	ID           int64  `db:"id"`
	MoodysRating string `db:"moodys_rating"`
	SandPRating  string `db:"sandp_rating"`
	FitchRating  string `db:"fitch_rating"`
	OrderNumber  int32  `db:"order_number"`
}

// RuleName is a stored business-rule definition.
type RuleName struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	JSON        string `db:"json"`
	Template    string `db:"template"`
	SQLStr      string `db:"sql_str"`
	SQLPart     string `db:"sql_part"`
}

// Trade is an executed buy for an account.
type Trade struct {
	ID          int64   `db:"id"`
	Account     string  `db:"account"`
	Type        string  `db:"type"`
	BuyQuantity float64 `db:"buy_quantity"`
}
