package models

import "time"

// Trade is an executed record rendered for a recent-trades list
type Trade struct {
	Time   time.Time `json:"time"`
	Pair   string    `json:"pair"`
	Type   Side      `json:"type"`
	Price  float64   `json:"price"`
	Amount float64   `json:"amount"`
	Total  float64   `json:"total"`
	TxID   string    `json:"txid,omitempty"`
}

// OHLC holds the prices of a candle
type OHLC struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Candle represents one aligned time bucket.
// Price is nil until some bucket at or before this one had trades.
type Candle struct {
	Start      time.Time `json:"start"`
	Price      *OHLC     `json:"price"`
	Volume     float64   `json:"volume"`
	TradeCount int32     `json:"trade_count"`
}

// CandleSeries is a gap-filled run of candles
type CandleSeries struct {
	Pair     string        `json:"pair"`
	Interval Interval      `json:"interval"`
	Width    time.Duration `json:"width"`
	From     time.Time     `json:"from"`
	To       time.Time     `json:"to"`
	Candles  []Candle      `json:"candles"`
}

// Starts returns the bucket start times as epoch seconds
func (s CandleSeries) Starts() []int64 {
	out := make([]int64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Start.Unix()
	}
	return out
}

// Closes returns the close of every bucket, nil where the price is unknown
func (s CandleSeries) Closes() []*float64 {
	out := make([]*float64, len(s.Candles))
	for i, c := range s.Candles {
		if c.Price != nil {
			v := c.Price.Close
			out[i] = &v
		}
	}
	return out
}

// Volumes returns the per-bucket volumes
func (s CandleSeries) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}

// PairSummary holds headline statistics for a market
type PairSummary struct {
	Pair       string  `json:"pair"`
	Base       string  `json:"base"`
	Quote      string  `json:"quote"`
	LastPrice  float64 `json:"last_price"`
	LastTrade  int64   `json:"last_trade,omitempty"`
	Change24h  float64 `json:"change_24h"`
	Volume24h  float64 `json:"volume_24h"`
	High24h    float64 `json:"high_24h"`
	Low24h     float64 `json:"low_24h"`
	TradeCount int     `json:"trade_count"`
}

// Snapshot is everything displayed for one pair at one point in time
type Snapshot struct {
	Pair    string       `json:"pair"`
	TakenAt time.Time    `json:"taken_at"`
	Bids    []PriceLevel `json:"bids"`
	Asks    []PriceLevel `json:"asks"`
	Spread  *SpreadInfo  `json:"spread,omitempty"`
	Summary PairSummary  `json:"summary"`
	Candles CandleSeries `json:"candles"`
	Trades  []Trade      `json:"trades"`
}
