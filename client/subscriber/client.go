package subscriber

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/linluma/nexusdex/dex/market"
	"github.com/linluma/nexusdex/dex/nexus"
	"github.com/linluma/nexusdex/dex/ohlc"
	"github.com/linluma/nexusdex/shared/models"
)

// Source is the part of the Nexus client the poller needs
type Source interface {
	FetchBook(ctx context.Context, symbol models.MarketSymbol, depth int) (nexus.Listing, error)
	ExecutedSince(ctx context.Context, symbol models.MarketSymbol, since time.Time, limit int) ([]models.RawOrder, error)
}

// Config controls what the poller fetches
type Config struct {
	Pairs         []models.MarketSymbol
	Interval      models.Interval
	Poll          time.Duration
	Depth         int
	TradeLimit    int
	ExecutedLimit int
}

// Poller periodically fetches every pair and emits snapshots
type Poller struct {
	source Source
	config Config
	clock  clock.Clock
	logger *logrus.Logger

	snapshotCh chan models.Snapshot
	ticker     *clock.Ticker
	done       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewPoller creates a poller; call Start to begin polling
func NewPoller(source Source, config Config, clk clock.Clock, logger *logrus.Logger) *Poller {
	if config.ExecutedLimit <= 0 {
		config.ExecutedLimit = 1000
	}
	return &Poller{
		source:     source,
		config:     config,
		clock:      clk,
		logger:     logger,
		snapshotCh: make(chan models.Snapshot, len(config.Pairs)),
		done:       make(chan struct{}),
	}
}

// Snapshots returns the channel snapshots are delivered on.
// It is closed once the poller stops.
func (p *Poller) Snapshots() <-chan models.Snapshot {
	return p.snapshotCh
}

// Start polls once immediately and then on every tick until ctx ends or
// Stop is called
func (p *Poller) Start(ctx context.Context) {
	p.ticker = p.clock.Ticker(p.config.Poll)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(p.snapshotCh)
		defer p.ticker.Stop()

		p.pollAll(ctx)
		for {
			select {
			case <-p.ticker.C:
				p.pollAll(ctx)
			case <-ctx.Done():
				return
			case <-p.done:
				return
			}
		}
	}()
}

// Stop ends polling and waits for the poll loop to exit
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

// pollAll fetches every pair in turn; failed pairs are skipped this round
func (p *Poller) pollAll(ctx context.Context) {
	for _, symbol := range p.config.Pairs {
		snap, err := p.Poll(ctx, symbol)
		if err != nil {
			p.logger.WithField("pair", symbol.String()).WithError(err).Warn("⚠️ Skipping pair this round")
			continue
		}

		select {
		case p.snapshotCh <- snap:
		case <-ctx.Done():
			return
		case <-p.done:
			return
		}
	}
}

// Poll fetches one pair and builds its snapshot
func (p *Poller) Poll(ctx context.Context, symbol models.MarketSymbol) (models.Snapshot, error) {
	now := p.clock.Now()
	since, _ := ohlc.Range(p.config.Interval, now)

	var (
		book     nexus.Listing
		executed []models.RawOrder
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		book, err = p.source.FetchBook(gctx, symbol, p.config.Depth)
		return err
	})
	g.Go(func() error {
		var err error
		executed, err = p.source.ExecutedSince(gctx, symbol, ohlc.Align(since, p.config.Interval), p.config.ExecutedLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Snapshot{}, fmt.Errorf("poll %s: %w", symbol, err)
	}

	snap := market.BuildSnapshot(market.SnapshotInput{
		Symbol:     symbol,
		Bids:       book.Bids,
		Asks:       book.Asks,
		Executed:   executed,
		Interval:   p.config.Interval,
		Now:        now,
		TradeLimit: p.config.TradeLimit,
	})
	p.logger.WithFields(logrus.Fields{
		"pair":   snap.Pair,
		"bids":   len(snap.Bids),
		"asks":   len(snap.Asks),
		"trades": len(executed),
	}).Debug("built snapshot")
	return snap, nil
}
