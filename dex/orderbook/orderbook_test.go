package orderbook

import (
	"math"
	"testing"

	"github.com/linluma/nexusdex/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var distUSDD = models.MarketSymbol{Base: "DIST", Quote: "USDD"}

// ask sells `amount` DIST at `price` USDD each
func ask(amount, price float64, txid string) models.RawOrder {
	return models.RawOrder{
		Contract: models.Leg{Amount: models.NewAmount(amount), Ticker: "DIST"},
		Order:    models.Leg{Amount: models.NewAmount(amount * price), Ticker: "USDD"},
		TxID:     txid,
	}
}

// bid offers USDD for `amount` DIST at `price` each
func bid(amount, price float64, txid string) models.RawOrder {
	return models.RawOrder{
		Contract: models.Leg{Amount: models.NewAmount(amount * price), Ticker: "USDD"},
		Order:    models.Leg{Amount: models.NewAmount(amount), Ticker: "DIST"},
		TxID:     txid,
	}
}

func TestBuildSideAsks(t *testing.T) {
	raw := []models.RawOrder{
		ask(4, 3, "a"),
		ask(2, 1, "b"),
		ask(0, 1, "zero-amount"),
		ask(1, 2, "c"),
		{Contract: models.Leg{Amount: models.NewAmount(5), Ticker: "NXS"}, Order: models.Leg{Amount: models.NewAmount(1), Ticker: "USDD"}},
	}

	entries := BuildSide(raw, distUSDD, models.Ask)
	require.Len(t, entries, 3)

	assert.Equal(t, []string{"b"}, entries[0].TxIDs)
	assert.Equal(t, 1.0, entries[0].Price)
	assert.Equal(t, 2.0, entries[0].Amount)
	assert.Equal(t, 2.0, entries[0].Total)
	assert.Equal(t, 2.0, entries[1].Price)
	assert.Equal(t, 3.0, entries[2].Price)
	assert.Equal(t, 12.0, entries[2].Total)

	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Price, entries[i].Price)
	}
}

func TestBuildSideBids(t *testing.T) {
	raw := []models.RawOrder{bid(1, 2, "a"), bid(3, 5, "b"), bid(2, 2, "c"), bid(1, 4, "d")}

	entries := BuildSide(raw, distUSDD, models.Bid)
	require.Len(t, entries, 4)

	// bids read the amount from the order leg
	assert.Equal(t, 3.0, entries[0].Amount)
	assert.Equal(t, 5.0, entries[0].Price)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Price, entries[i].Price)
	}

	// stable for equal prices
	assert.Equal(t, []string{"a"}, entries[2].TxIDs)
	assert.Equal(t, []string{"c"}, entries[3].TxIDs)
}

func TestBuildSideNXSNormalization(t *testing.T) {
	market := models.MarketSymbol{Base: "NXS", Quote: "DIST"}
	raw := []models.RawOrder{{
		Contract:  models.Leg{Amount: models.NewAmount(2_500_000), Ticker: "NXS"},
		Order:     models.Leg{Amount: models.NewAmount(5), Ticker: "DIST"},
		OwnerAddr: "owner-1",
	}}

	entries := BuildSide(raw, market, models.Ask)
	require.Len(t, entries, 1)
	assert.Equal(t, 2.5, entries[0].Amount)
	assert.Equal(t, 2.0, entries[0].Price)
	assert.Equal(t, 5.0, entries[0].Total)
	assert.Equal(t, "owner-1", entries[0].Owner)
	assert.Nil(t, entries[0].TxIDs)
}

func TestAggregateMergesByRoundedPrice(t *testing.T) {
	entries := []models.OrderEntry{
		{Price: 1.000000001, Amount: 1, Total: 1.000000001, TxIDs: []string{"a"}},
		{Price: 1.000000004, Amount: 2, Total: 2.000000008, TxIDs: []string{"b"}},
		{Price: 1.5, Amount: 1, Total: 1.5, TxIDs: []string{"c"}},
		{Price: 1.0, Amount: 0.5, Total: 0.5, TxIDs: []string{"a"}},
		{Price: 1.5, Amount: 1, Total: 1.5},
	}

	levels := Aggregate(entries)
	require.Len(t, levels, 2)

	assert.Equal(t, 1.000000001, levels[0].Price)
	assert.InDelta(t, 3.5, levels[0].Amount, 1e-12)
	assert.InDelta(t, 3.500000009, levels[0].Total, 1e-12)
	assert.Equal(t, []string{"a", "b"}, levels[0].TxIDs)

	assert.Equal(t, 1.5, levels[1].Price)
	assert.Equal(t, 2.0, levels[1].Amount)
	assert.Equal(t, 3.0, levels[1].Total)
	assert.Equal(t, []string{"c"}, levels[1].TxIDs)
}

func TestAggregatePreservesFirstSeenOrder(t *testing.T) {
	entries := []models.OrderEntry{
		{Price: 3, Amount: 1, Total: 3},
		{Price: 1, Amount: 1, Total: 1},
		{Price: 3, Amount: 1, Total: 3},
		{Price: 2, Amount: 1, Total: 2},
	}

	levels := Aggregate(entries)
	require.Len(t, levels, 3)
	assert.Equal(t, 3.0, levels[0].Price)
	assert.Equal(t, 1.0, levels[1].Price)
	assert.Equal(t, 2.0, levels[2].Price)
	assert.Empty(t, levels[1].TxIDs)
	assert.NotNil(t, levels[1].TxIDs)
}

func TestAggregateConservesAmount(t *testing.T) {
	raw := []models.RawOrder{
		ask(1.25, 0.5, "a"), ask(2.5, 0.5, "b"), ask(0.125, 0.75, "c"),
		ask(3, 0.75, "d"), ask(0, 0.75, "dropped"), ask(4.5, 1.25, "e"),
	}

	entries := BuildSide(raw, distUSDD, models.Ask)
	var entrySum float64
	for _, e := range entries {
		entrySum += e.Amount
	}

	var levelSum float64
	for _, l := range Aggregate(entries) {
		levelSum += l.Amount
	}

	assert.InDelta(t, entrySum, levelSum, 1e-9)
	assert.InDelta(t, 11.375, levelSum, 1e-9)
}

func TestAggregateIdempotent(t *testing.T) {
	raw := []models.RawOrder{ask(1, 0.5, "a"), ask(2, 0.5, "b"), ask(3, 0.7, "c"), ask(1, 0.9, "d"), ask(1, 0.7, "e")}

	first := Aggregate(BuildSide(raw, distUSDD, models.Ask))

	again := make([]models.OrderEntry, len(first))
	for i, l := range first {
		again[i] = l.AsEntry()
	}
	second := Aggregate(again)

	assert.Equal(t, first, second)
}

func TestAggregateSkipsNonFinite(t *testing.T) {
	inf := math.Inf(1)
	levels := Aggregate([]models.OrderEntry{{Price: inf, Amount: 1, Total: inf}, {Price: 2, Amount: 1, Total: 2}})
	require.Len(t, levels, 1)
	assert.Equal(t, 2.0, levels[0].Price)
}

func TestBuildAndSpread(t *testing.T) {
	book := Build(
		[]models.RawOrder{bid(1, 0.9, "b1"), bid(2, 0.95, "b2")},
		[]models.RawOrder{ask(1, 1.1, "a1"), ask(1, 1.0, "a2")},
		distUSDD,
	)

	require.Len(t, book.Bids, 2)
	require.Len(t, book.Asks, 2)
	assert.Equal(t, 0.95, book.Bids[0].Price)
	assert.Equal(t, 1.0, book.Asks[0].Price)

	spread := Spread(book.Bids, book.Asks)
	require.NotNil(t, spread)
	assert.InDelta(t, 0.05, spread.Spread, 1e-12)
	assert.InDelta(t, 0.05/0.95*100, spread.Percent, 1e-9)

	assert.Nil(t, Spread(nil, book.Asks))
	assert.Nil(t, Spread(book.Bids, nil))
}

func TestLevelKey(t *testing.T) {
	assert.Equal(t, "0.00001235", LevelKey(0.0000123456))
	assert.Equal(t, "2.00000000", LevelKey(2))
	// 1.000000005 is stored just below the half step
	assert.Equal(t, "1.00000000", LevelKey(1.000000005))
}

func TestAggregateMergesNearHalfStep(t *testing.T) {
	levels := Aggregate([]models.OrderEntry{
		{Price: 1.000000005, Amount: 1, Total: 1.000000005, TxIDs: []string{"a"}},
		{Price: 1.000000003, Amount: 2, Total: 2.000000006, TxIDs: []string{"b"}},
	})
	require.Len(t, levels, 1)
	assert.Equal(t, 1.000000005, levels[0].Price, "First-seen price represents the level")
	assert.InDelta(t, 3.0, levels[0].Amount, 1e-12)
	assert.Equal(t, []string{"a", "b"}, levels[0].TxIDs)
}
