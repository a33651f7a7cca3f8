package market

import (
	"time"

	"github.com/linluma/nexusdex/dex/ohlc"
	"github.com/linluma/nexusdex/dex/orderbook"
	"github.com/linluma/nexusdex/shared/models"
)

// SnapshotInput is one fetched view of a market
type SnapshotInput struct {
	Symbol   models.MarketSymbol
	Bids     []models.RawOrder
	Asks     []models.RawOrder
	Executed []models.RawOrder
	Interval models.Interval
	// Start and End bound the candles; both zero means the interval's
	// default lookback ending at Now.
	Start      time.Time
	End        time.Time
	Now        time.Time
	TradeLimit int
}

// BuildSnapshot assembles the book, spread, candles, summary and recent
// trades for one pair
func BuildSnapshot(in SnapshotInput) models.Snapshot {
	book := orderbook.Build(in.Bids, in.Asks, in.Symbol)

	start, end := in.Start, in.End
	if start.IsZero() && end.IsZero() {
		start, end = ohlc.Range(in.Interval, in.Now)
	}

	return models.Snapshot{
		Pair:    in.Symbol.String(),
		TakenAt: in.Now.UTC(),
		Bids:    book.Bids,
		Asks:    book.Asks,
		Spread:  orderbook.Spread(book.Bids, book.Asks),
		Summary: Summarize(in.Symbol, in.Executed, in.Now),
		Candles: ohlc.BuildCandles(in.Executed, in.Symbol, in.Interval, start, end),
		Trades:  RecentTrades(in.Symbol, in.Executed, in.TradeLimit),
	}
}
