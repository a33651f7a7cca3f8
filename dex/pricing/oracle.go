// Package pricing derives unit prices from two-legged Nexus trade records.
package pricing

import (
	"github.com/linluma/nexusdex/shared/models"
)

// NativeTicker is the chain's divisible asset, carried on the wire in micro-units
const NativeTicker = "NXS"

// MicroUnits is the number of wire units per whole NXS
const MicroUnits = 1e6

// Normalize returns the human-scaled amount of a leg.
// Every reader of a leg amount goes through here so the NXS division
// happens exactly once. Absent amounts normalize to 0.
func Normalize(leg models.Leg) float64 {
	if !leg.Amount.Valid {
		return 0
	}
	if leg.Ticker == NativeTicker {
		return leg.Amount.Value / MicroUnits
	}
	return leg.Amount.Value
}

// DerivePrice returns quote units per one base unit for the order, or 0
// when the price can't be determined (zero/absent amounts, or tickers that
// don't match the market in either orientation).
func DerivePrice(order models.RawOrder, market models.MarketSymbol) float64 {
	contract := Normalize(order.Contract)
	wanted := Normalize(order.Order)
	if contract <= 0 || wanted <= 0 {
		return 0
	}

	switch {
	case order.Contract.Ticker == market.Base && order.Order.Ticker == market.Quote:
		return wanted / contract
	case order.Contract.Ticker == market.Quote && order.Order.Ticker == market.Base:
		return contract / wanted
	}
	return 0
}

// BaseAmount returns the base-currency quantity carried by the leg the
// given book side displays: the contract for asks, the order for bids.
func BaseAmount(order models.RawOrder, side models.BookSide) float64 {
	if side == models.Bid {
		return Normalize(order.Order)
	}
	return Normalize(order.Contract)
}
