package models

// OrderEntry is a priced, normalized order ready for aggregation
type OrderEntry struct {
	Price     float64  `json:"price"`
	Amount    float64  `json:"amount"`
	Total     float64  `json:"total"`
	TxIDs     []string `json:"txids,omitempty"`
	Owner     string   `json:"owner,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"`
}

// PriceLevel is one discrete price in the book with everything merged into it
type PriceLevel struct {
	Price  float64  `json:"price"`
	Amount float64  `json:"amount"`
	Total  float64  `json:"total"`
	TxIDs  []string `json:"txids"`
}

// AsEntry turns a level back into a single entry carrying all its txids
func (l PriceLevel) AsEntry() OrderEntry {
	return OrderEntry{
		Price:  l.Price,
		Amount: l.Amount,
		Total:  l.Total,
		TxIDs:  append([]string(nil), l.TxIDs...),
	}
}

// SpreadInfo describes the gap between the best bid and best ask
type SpreadInfo struct {
	BestBid float64 `json:"best_bid"`
	BestAsk float64 `json:"best_ask"`
	Spread  float64 `json:"spread"`
	Percent float64 `json:"percent"`
}
