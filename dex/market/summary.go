// Package market derives pair statistics, recent trade lists and complete
// display snapshots from fetched Nexus records.
package market

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/linluma/nexusdex/dex/pricing"
	"github.com/linluma/nexusdex/shared/models"
)

// Window is the span the summary statistics cover
const Window = 24 * time.Hour

type priced struct {
	ts     int64
	price  float64
	volume float64
}

// pricedTrades returns executed records with a usable price, oldest first
func pricedTrades(symbol models.MarketSymbol, executed []models.RawOrder) []priced {
	out := make([]priced, 0, len(executed))
	for _, o := range executed {
		price := pricing.DerivePrice(o, symbol)
		if price <= 0 || math.IsInf(price, 0) {
			continue
		}
		out = append(out, priced{ts: o.Timestamp, price: price, volume: pricing.Normalize(o.Contract)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ts < out[j].ts })
	return out
}

// Summarize computes headline statistics for a pair as of now.
// The 24h change compares the last price with the oldest trade inside the
// window; no interpolation to an exact now-24h price is attempted.
// Trades stamped after now are ignored.
func Summarize(symbol models.MarketSymbol, executed []models.RawOrder, now time.Time) models.PairSummary {
	summary := models.PairSummary{
		Pair:  symbol.String(),
		Base:  symbol.Base,
		Quote: symbol.Quote,
	}

	trades := pricedTrades(symbol, executed)
	until := now.Unix()
	trades = trades[:sort.Search(len(trades), func(i int) bool { return trades[i].ts > until })]
	if len(trades) == 0 {
		return summary
	}
	last := trades[len(trades)-1]
	summary.LastPrice = last.price
	summary.LastTrade = last.ts

	cutoff := now.Add(-Window).Unix()
	volume := decimal.Zero
	var oldest *priced
	for i := range trades {
		t := trades[i]
		if t.ts < cutoff {
			continue
		}
		if oldest == nil {
			oldest = &trades[i]
			summary.High24h, summary.Low24h = t.price, t.price
		}
		summary.High24h = math.Max(summary.High24h, t.price)
		summary.Low24h = math.Min(summary.Low24h, t.price)
		if t.volume > 0 && !math.IsInf(t.volume, 0) {
			volume = volume.Add(decimal.NewFromFloat(t.volume))
		}
		summary.TradeCount++
	}
	summary.Volume24h = volume.InexactFloat64()

	if oldest != nil && oldest.price > 0 {
		summary.Change24h = (last.price - oldest.price) / oldest.price * 100
	}
	return summary
}

// TradeType classifies an executed record: executed asks were taken by a
// buyer, executed bids by a seller. Unknown records count as buys.
func TradeType(o models.RawOrder) models.Side {
	if o.ExecutedType == models.Bid {
		return models.Sell
	}
	return models.Buy
}

// RecentTrades lists executed records newest first, dropping ones without
// a price or amount. limit <= 0 keeps everything.
func RecentTrades(symbol models.MarketSymbol, executed []models.RawOrder, limit int) []models.Trade {
	ordered := make([]models.RawOrder, len(executed))
	copy(ordered, executed)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Timestamp > ordered[j].Timestamp })

	trades := make([]models.Trade, 0, len(ordered))
	for _, o := range ordered {
		price := pricing.DerivePrice(o, symbol)
		amount := pricing.Normalize(o.Contract)
		if price <= 0 || amount <= 0 || math.IsInf(price*amount, 0) {
			continue
		}
		trades = append(trades, models.Trade{
			Time:   time.Unix(o.Timestamp, 0).UTC(),
			Pair:   symbol.String(),
			Type:   TradeType(o),
			Price:  price,
			Amount: amount,
			Total:  price * amount,
			TxID:   o.TxID,
		})
		if limit > 0 && len(trades) == limit {
			break
		}
	}
	return trades
}

// Totals sums a user selection of price levels
type Totals struct {
	Amount   float64 `json:"amount"`
	Cost     float64 `json:"cost"`
	AvgPrice float64 `json:"avg_price"`
}

// SelectionTotals adds up the amount and cost of the given levels
func SelectionTotals(levels []models.PriceLevel) Totals {
	amount, cost := decimal.Zero, decimal.Zero
	for _, l := range levels {
		if !finite(l.Amount) || !finite(l.Total) {
			continue
		}
		amount = amount.Add(decimal.NewFromFloat(l.Amount))
		cost = cost.Add(decimal.NewFromFloat(l.Total))
	}

	totals := Totals{
		Amount: amount.InexactFloat64(),
		Cost:   cost.InexactFloat64(),
	}
	if amount.IsPositive() {
		totals.AvgPrice = cost.DivRound(amount, 16).InexactFloat64()
	}
	return totals
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
