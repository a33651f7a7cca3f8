// Package orderbook turns raw Nexus bid/ask records into sorted, merged price levels.
package orderbook

import (
	"math"
	"sort"

	"github.com/linluma/nexusdex/dex/pricing"
	"github.com/linluma/nexusdex/shared/models"
)

// BuildSide prices and normalizes raw orders for one side of the book.
// Unpriceable or empty orders are dropped. Asks come out cheapest first,
// bids highest first; equal prices keep their input order.
func BuildSide(raw []models.RawOrder, market models.MarketSymbol, side models.BookSide) []models.OrderEntry {
	entries := make([]models.OrderEntry, 0, len(raw))
	for _, o := range raw {
		price := pricing.DerivePrice(o, market)
		amount := pricing.BaseAmount(o, side)
		if price <= 0 || amount <= 0 || math.IsInf(price*amount, 0) {
			continue
		}

		entry := models.OrderEntry{
			Price:     price,
			Amount:    amount,
			Total:     price * amount,
			Owner:     o.Owner(),
			Timestamp: o.Timestamp,
		}
		if o.TxID != "" {
			entry.TxIDs = []string{o.TxID}
		}
		entries = append(entries, entry)
	}

	if side == models.Bid {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Price > entries[j].Price })
	} else {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Price < entries[j].Price })
	}
	return entries
}

// Book is a fully built order book for one market
type Book struct {
	Market models.MarketSymbol
	Bids   []models.PriceLevel
	Asks   []models.PriceLevel
}

// Build builds and aggregates both sides of a book
func Build(bids, asks []models.RawOrder, market models.MarketSymbol) Book {
	return Book{
		Market: market,
		Bids:   Aggregate(BuildSide(bids, market, models.Bid)),
		Asks:   Aggregate(BuildSide(asks, market, models.Ask)),
	}
}

// Spread compares the best bid against the best ask. It returns nil when
// either side is empty or the best bid isn't positive.
func Spread(bids, asks []models.PriceLevel) *models.SpreadInfo {
	if len(bids) == 0 || len(asks) == 0 || bids[0].Price <= 0 {
		return nil
	}

	spread := asks[0].Price - bids[0].Price
	return &models.SpreadInfo{
		BestBid: bids[0].Price,
		BestAsk: asks[0].Price,
		Spread:  spread,
		Percent: spread / bids[0].Price * 100,
	}
}
