// Package matcher plans greedy fills of a buy or sell request against the
// counter side of an order book.
package matcher

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/linluma/nexusdex/dex/pricing"
	"github.com/linluma/nexusdex/shared/models"
)

type candidate struct {
	order  models.RawOrder
	price  float64
	amount float64
}

// Match walks counter-orders best price first and fills until maxConstraint
// is used up. maxConstraint is quote currency to spend when buying and base
// currency to sell when selling. priceLimit is a ceiling when buying and a
// floor when selling. Only the last fill of a plan can be partial.
func Match(side models.Side, counterOrders []models.RawOrder, market models.MarketSymbol, maxConstraint, priceLimit float64) models.FillPlan {
	plan := models.FillPlan{
		Pair:       market.String(),
		Side:       side,
		PriceLimit: nonNegative(priceLimit),
		Requested:  nonNegative(maxConstraint),
		Fills:      []models.Fill{},
	}
	if !positive(maxConstraint) || !positive(priceLimit) {
		plan.RemainderUnfilled = plan.Requested
		plan.Status = models.PlanUnmatched
		return plan
	}

	bookSide := side.CounterSide()
	candidates := make([]candidate, 0, len(counterOrders))
	for _, o := range counterOrders {
		price := pricing.DerivePrice(o, market)
		if !positive(price) || !withinLimit(side, price, priceLimit) {
			continue
		}
		amount := pricing.BaseAmount(o, bookSide)
		if !positive(amount) {
			continue
		}
		candidates = append(candidates, candidate{order: o, price: price, amount: amount})
	}

	if side == models.Buy {
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].price < candidates[j].price })
	} else {
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].price > candidates[j].price })
	}

	remaining := decimal.NewFromFloat(maxConstraint)
	for _, c := range candidates {
		if remaining.LessThanOrEqual(dust) {
			break
		}
		price := decimal.NewFromFloat(c.price)
		available := decimal.NewFromFloat(c.amount)

		take, cost := available, available.Mul(price)
		partial := false
		if side == models.Buy {
			if cost.GreaterThan(remaining) {
				take, cost = remaining.Div(price), remaining
				partial = true
			}
			if !take.IsPositive() {
				break
			}
			remaining = remaining.Sub(cost)
		} else {
			if available.GreaterThan(remaining) {
				take, cost = remaining, remaining.Mul(price)
				partial = true
			}
			remaining = remaining.Sub(take)
		}

		plan.Fills = append(plan.Fills, models.Fill{
			Order:       c.order,
			Price:       c.price,
			Available:   c.amount,
			AmountTaken: take.InexactFloat64(),
			Cost:        cost.InexactFloat64(),
			Partial:     partial,
			Enabled:     true,
		})
		if partial {
			break
		}
	}

	return settle(plan)
}

// WithEnabled returns a copy of plan where only enabled fills count towards
// the totals and remainder. Fills without a matching flag keep their state.
func WithEnabled(plan models.FillPlan, enabled []bool) models.FillPlan {
	fills := make([]models.Fill, len(plan.Fills))
	copy(fills, plan.Fills)
	for i := range fills {
		if i < len(enabled) {
			fills[i].Enabled = enabled[i]
		}
	}
	plan.Fills = fills
	return settle(plan)
}

// Estimate approximates what a request would receive at the limit price
// alone, for when no counter-orders are loaded yet
func Estimate(side models.Side, maxConstraint, priceLimit float64) float64 {
	if !positive(maxConstraint) || !positive(priceLimit) {
		return 0
	}
	amount := decimal.NewFromFloat(maxConstraint)
	limit := decimal.NewFromFloat(priceLimit)
	if side == models.Buy {
		return amount.Div(limit).InexactFloat64()
	}
	return amount.Mul(limit).InexactFloat64()
}

// settle sums enabled fills into the plan totals
func settle(plan models.FillPlan) models.FillPlan {
	spent, received := decimal.Zero, decimal.Zero
	taken := 0
	for _, f := range plan.Fills {
		if !f.Enabled {
			continue
		}
		taken++
		amount := decimal.NewFromFloat(f.AmountTaken)
		cost := decimal.NewFromFloat(f.Cost)
		if plan.Side == models.Buy {
			spent = spent.Add(cost)
			received = received.Add(amount)
		} else {
			spent = spent.Add(amount)
			received = received.Add(cost)
		}
	}

	remainder := decimal.NewFromFloat(plan.Requested).Sub(spent)
	if remainder.LessThanOrEqual(dust) {
		remainder = decimal.Zero
	}

	plan.TotalSpent = spent.InexactFloat64()
	plan.TotalReceived = received.InexactFloat64()
	plan.RemainderUnfilled = remainder.InexactFloat64()

	switch {
	case taken == 0:
		plan.Status = models.PlanUnmatched
	case remainder.IsPositive():
		plan.Status = models.PlanPartial
	default:
		plan.Status = models.PlanFilled
	}
	return plan
}

// dust is the leftover budget below which a plan counts as fully spent
var dust = decimal.New(1, -12)

func withinLimit(side models.Side, price, limit float64) bool {
	if side == models.Buy {
		return price <= limit
	}
	return price >= limit
}

// positive rejects NaN and infinities along with non-positive values
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func nonNegative(v float64) float64 {
	if !positive(v) {
		return 0
	}
	return v
}
