package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/linluma/nexusdex/dex/market"
	"github.com/linluma/nexusdex/dex/matcher"
	"github.com/linluma/nexusdex/dex/orderbook"
	"github.com/linluma/nexusdex/shared/format"
	"github.com/linluma/nexusdex/shared/models"
)

// Preview is what the command reports for one trade request
type Preview struct {
	Plan models.FillPlan `json:"plan"`
	// Depth sums the counter-side levels inside the price limit
	Depth market.Totals `json:"depth_within_limit"`
	// Estimate is the limit-price approximation used when the book is empty
	Estimate float64 `json:"estimate,omitempty"`
}

// BuildPreview matches a request against the fetched counter-orders
func BuildPreview(side models.Side, counter []models.RawOrder, pair models.MarketSymbol, amount, limit float64) Preview {
	levels := orderbook.Aggregate(orderbook.BuildSide(counter, pair, side.CounterSide()))
	within := make([]models.PriceLevel, 0, len(levels))
	for _, l := range levels {
		if (side == models.Buy && l.Price <= limit) || (side == models.Sell && l.Price >= limit) {
			within = append(within, l)
		}
	}

	preview := Preview{
		Plan:  matcher.Match(side, counter, pair, amount, limit),
		Depth: market.SelectionTotals(within),
	}
	if len(counter) == 0 {
		preview.Estimate = matcher.Estimate(side, amount, limit)
	}
	return preview
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DisplayPreview formats and displays a fill plan
func DisplayPreview(w io.Writer, preview Preview, pair models.MarketSymbol) {
	plan := preview.Plan
	spendTicker, receiveTicker := pair.Quote, pair.Base
	if plan.Side == models.Sell {
		spendTicker, receiveTicker = pair.Base, pair.Quote
	}

	fmt.Fprintf(w, "📋 %s %s | amount %s %s | limit %s %s\n",
		plan.Side, plan.Pair,
		format.Price(plan.Requested), spendTicker,
		format.Price(plan.PriceLimit), pair.Quote)

	for i, fill := range plan.Fills {
		// Choose emoji based on fill completeness
		emoji := "🟢"
		if fill.Partial {
			emoji = "🟡"
		}
		txid := fill.Order.TxID
		if txid == "" {
			txid = "-"
		}
		fmt.Fprintf(w, "%s #%d %s x %s of %s (cost %s %s) %s\n",
			emoji, i+1,
			format.Price(fill.Price), format.Price(fill.AmountTaken), format.Price(fill.Available),
			format.Price(fill.Cost), pair.Quote, txid)
	}

	if len(plan.Fills) == 0 {
		fmt.Fprintln(w, "   no counter-orders within the limit")
		if preview.Estimate > 0 {
			fmt.Fprintf(w, "   estimate at limit price: %s %s\n", format.Price(preview.Estimate), receiveTicker)
		}
	}

	fmt.Fprintf(w, "   spend %s %s, receive %s %s, %d orders\n",
		format.Price(plan.TotalSpent), spendTicker,
		format.Price(plan.TotalReceived), receiveTicker,
		len(plan.Fills))
	fmt.Fprintf(w, "   book within limit: %s %s for %s %s (avg %s)\n",
		format.Number(preview.Depth.Amount), pair.Base,
		format.Number(preview.Depth.Cost), pair.Quote,
		format.Price(preview.Depth.AvgPrice))

	if plan.PartiallyMatched() {
		fmt.Fprintf(w, "⚠️ partially matched: %s %s could not be filled\n",
			format.Price(plan.RemainderUnfilled), spendTicker)
	}
}
