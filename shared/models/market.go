package models

import (
	"fmt"
	"strings"
	"time"
)

// MarketSymbol is an ordered (base, quote) ticker pair, written "BASE/QUOTE"
type MarketSymbol struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// ParseSymbol splits a "BASE/QUOTE" market string
func ParseSymbol(s string) (MarketSymbol, error) {
	base, quote, ok := strings.Cut(strings.TrimSpace(s), "/")
	base = strings.TrimSpace(base)
	quote = strings.TrimSpace(quote)
	if !ok || base == "" || quote == "" || strings.Contains(quote, "/") {
		return MarketSymbol{}, fmt.Errorf("invalid market symbol %q: want BASE/QUOTE", s)
	}
	return MarketSymbol{Base: base, Quote: quote}, nil
}

// String returns the canonical "BASE/QUOTE" form
func (m MarketSymbol) String() string {
	return m.Base + "/" + m.Quote
}

// BookSide identifies one side of an order book
type BookSide string

const (
	Bid BookSide = "bid"
	Ask BookSide = "ask"
)

// Side is the direction of a requested trade
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide parses "buy" or "sell"
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	}
	return "", fmt.Errorf("invalid side %q: want buy or sell", s)
}

// CounterSide returns the book side a trade in this direction consumes
func (s Side) CounterSide() BookSide {
	if s == Sell {
		return Bid
	}
	return Ask
}

// Interval is a chart range selector
type Interval string

const (
	Interval1D Interval = "1d"
	Interval1W Interval = "1w"
	Interval1M Interval = "1m"
	Interval1Y Interval = "1y"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// ParseInterval parses one of 1d, 1w, 1m, 1y
func ParseInterval(s string) (Interval, error) {
	switch iv := Interval(strings.ToLower(strings.TrimSpace(s))); iv {
	case Interval1D, Interval1W, Interval1M, Interval1Y:
		return iv, nil
	}
	return "", fmt.Errorf("invalid interval %q: want 1d, 1w, 1m or 1y", s)
}

// BucketWidth is the candle width used for this interval.
// Only 1y uses week-wide buckets; unknown intervals fall back to a day.
func (i Interval) BucketWidth() time.Duration {
	if i == Interval1Y {
		return week
	}
	return day
}

// Lookback is how far back a chart for this interval reaches
func (i Interval) Lookback() time.Duration {
	switch i {
	case Interval1W:
		return week
	case Interval1M:
		return 30 * day
	case Interval1Y:
		return 365 * day
	}
	return day
}
