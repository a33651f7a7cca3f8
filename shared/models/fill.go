package models

// PlanStatus summarizes how much of a request could be matched
type PlanStatus string

const (
	PlanFilled    PlanStatus = "filled"
	PlanPartial   PlanStatus = "partial"
	PlanUnmatched PlanStatus = "unmatched"
)

// Fill is one counter-order taken (fully or partially) by a plan
type Fill struct {
	Order       RawOrder `json:"order"`
	Price       float64  `json:"price"`
	Available   float64  `json:"available"`
	AmountTaken float64  `json:"amount_taken"`
	Cost        float64  `json:"cost"`
	Partial     bool     `json:"partial"`
	Enabled     bool     `json:"enabled"`
}

// FillPlan is the result of greedily matching a request against counter-orders.
// Spent and remainder are in the constraint currency: quote when buying,
// base when selling.
type FillPlan struct {
	Pair              string     `json:"pair"`
	Side              Side       `json:"side"`
	PriceLimit        float64    `json:"price_limit"`
	Requested         float64    `json:"requested"`
	Fills             []Fill     `json:"fills"`
	TotalSpent        float64    `json:"total_spent"`
	TotalReceived     float64    `json:"total_received"`
	RemainderUnfilled float64    `json:"remainder_unfilled"`
	Status            PlanStatus `json:"status"`
}

// PartiallyMatched reports whether the book lacked depth for the request
func (p FillPlan) PartiallyMatched() bool {
	return p.RemainderUnfilled > 0
}
