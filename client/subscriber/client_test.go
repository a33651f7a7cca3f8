package subscriber

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linluma/nexusdex/dex/nexus"
	"github.com/linluma/nexusdex/shared/logging"
	"github.com/linluma/nexusdex/shared/models"
)

var (
	distNXS = models.MarketSymbol{Base: "DIST", Quote: "NXS"}
	badPair = models.MarketSymbol{Base: "BAD", Quote: "NXS"}
)

type fakeSource struct {
	mu     sync.Mutex
	since  []time.Time
	books  int
	failOn models.MarketSymbol
}

func (f *fakeSource) FetchBook(ctx context.Context, symbol models.MarketSymbol, depth int) (nexus.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books++
	if symbol == f.failOn {
		return nexus.Listing{}, errors.New("node unreachable")
	}
	return nexus.Listing{
		Bids: []models.RawOrder{{
			Contract: models.Leg{Amount: models.NewAmount(1_000_000), Ticker: "NXS"},
			Order:    models.Leg{Amount: models.NewAmount(2), Ticker: "DIST"},
			TxID:     "bid",
		}},
		Asks: []models.RawOrder{{
			Contract: models.Leg{Amount: models.NewAmount(2), Ticker: "DIST"},
			Order:    models.Leg{Amount: models.NewAmount(2_000_000), Ticker: "NXS"},
			TxID:     "ask",
		}},
	}, nil
}

func (f *fakeSource) ExecutedSince(ctx context.Context, symbol models.MarketSymbol, since time.Time, limit int) ([]models.RawOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = append(f.since, since)
	return []models.RawOrder{{
		Contract:     models.Leg{Amount: models.NewAmount(4), Ticker: "DIST"},
		Order:        models.Leg{Amount: models.NewAmount(3_000_000), Ticker: "NXS"},
		Timestamp:    since.Add(time.Hour).Unix(),
		ExecutedType: models.Ask,
	}}, nil
}

func (f *fakeSource) bookCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.books
}

func receive(t *testing.T, ch <-chan models.Snapshot) models.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "Snapshot channel closed early")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for snapshot")
	}
	return models.Snapshot{}
}

func TestPollBuildsSnapshot(t *testing.T) {
	mockClock := clock.NewMock()
	mockClock.Set(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &fakeSource{}

	poller := NewPoller(source, Config{
		Pairs:    []models.MarketSymbol{distNXS},
		Interval: models.Interval1W,
		Poll:     time.Minute,
		Depth:    15,
	}, mockClock, logging.Discard())

	snap, err := poller.Poll(context.Background(), distNXS)
	require.NoError(t, err)

	assert.Equal(t, "DIST/NXS", snap.Pair)
	require.Len(t, snap.Bids, 1)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, 0.5, snap.Bids[0].Price, "1 NXS for 2 DIST")
	assert.Equal(t, 1.0, snap.Asks[0].Price, "2 NXS for 2 DIST")
	require.NotNil(t, snap.Spread)
	assert.Equal(t, 0.75, snap.Summary.LastPrice)
	assert.Len(t, snap.Candles.Candles, 8)

	require.Len(t, source.since, 1)
	assert.Equal(t, time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC), source.since[0], "History starts at the first aligned bucket")
}

func TestPollerEmitsOnEveryTick(t *testing.T) {
	mockClock := clock.NewMock()
	source := &fakeSource{failOn: badPair}

	poller := NewPoller(source, Config{
		Pairs:    []models.MarketSymbol{badPair, distNXS},
		Interval: models.Interval1D,
		Poll:     30 * time.Second,
		Depth:    15,
	}, mockClock, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)

	// first round runs immediately; the failing pair is skipped
	first := receive(t, poller.Snapshots())
	assert.Equal(t, "DIST/NXS", first.Pair)

	mockClock.Add(30 * time.Second)
	second := receive(t, poller.Snapshots())
	assert.Equal(t, "DIST/NXS", second.Pair)
	assert.Equal(t, mockClock.Now().UTC(), second.TakenAt)

	poller.Stop()
	_, ok := <-poller.Snapshots()
	assert.False(t, ok, "Channel should be closed after Stop")
	assert.Equal(t, 4, source.bookCalls())
}

func TestPollerStopsWithContext(t *testing.T) {
	mockClock := clock.NewMock()
	poller := NewPoller(&fakeSource{}, Config{
		Pairs:    []models.MarketSymbol{distNXS},
		Interval: models.Interval1D,
		Poll:     time.Minute,
	}, mockClock, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	poller.Start(ctx)
	receive(t, poller.Snapshots())
	cancel()

	select {
	case _, ok := <-poller.Snapshots():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Poller did not stop after context cancel")
	}
	poller.Stop()
}
