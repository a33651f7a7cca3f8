// Package nexus fetches market records from a Nexus node's HTTP API.
package nexus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/linluma/nexusdex/shared/models"
)

// Market API endpoints
const (
	PathListBids     = "/market/list/bid"
	PathListAsks     = "/market/list/ask"
	PathListExecuted = "/market/list/executed"
	PathListOrders   = "/market/list/order"
)

var (
	// ErrStormMode is returned without contacting the node while too many
	// requests have failed in the last minute
	ErrStormMode = errors.New("nexus API in storm mode")
	// ErrBadStatus wraps non-2xx responses
	ErrBadStatus = errors.New("unexpected HTTP status")
)

// ListRequest is the body of a market list call
type ListRequest struct {
	Market string `json:"market,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Sort   string `json:"sort,omitempty"`
	Order  string `json:"order,omitempty"`
	Where  string `json:"where,omitempty"`
}

// Config holds client settings
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Retry             RetryConfig
}

// Client talks to the market API of one Nexus node
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
	clock   clock.Clock

	mutex          sync.Mutex
	retryConfig    RetryConfig
	healthStatus   Health
	recentFailures []time.Time

	// Allow test override of the HTTP round trip
	fetchFunc func(ctx context.Context, path string, req ListRequest) ([]byte, error)
}

// New creates a client for the node at cfg.BaseURL
func New(cfg Config, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &Client{
		http:           httpClient,
		limiter:        rate.NewLimiter(limit, cfg.Burst),
		logger:         logger,
		clock:          clock.New(),
		retryConfig:    cfg.Retry,
		recentFailures: make([]time.Time, 0),
	}
}

// SetClock replaces the clock used for storm accounting
func (c *Client) SetClock(clk clock.Clock) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.clock = clk
}

// ListBids returns open bids for a market
func (c *Client) ListBids(ctx context.Context, symbol models.MarketSymbol, limit int) ([]models.RawOrder, error) {
	listing, err := c.list(ctx, PathListBids, ListRequest{Market: symbol.String(), Limit: limit})
	if err != nil {
		return nil, err
	}
	return append(listing.Bids, listing.Unsided...), nil
}

// ListAsks returns open asks for a market
func (c *Client) ListAsks(ctx context.Context, symbol models.MarketSymbol, limit int) ([]models.RawOrder, error) {
	listing, err := c.list(ctx, PathListAsks, ListRequest{Market: symbol.String(), Limit: limit})
	if err != nil {
		return nil, err
	}
	return append(listing.Asks, listing.Unsided...), nil
}

// ListExecuted returns filled orders. Records arriving in the bids or asks
// array are tagged with that side when the node left executedType out.
func (c *Client) ListExecuted(ctx context.Context, req ListRequest) ([]models.RawOrder, error) {
	if req.Sort == "" {
		req.Sort, req.Order = "timestamp", "desc"
	}
	listing, err := c.list(ctx, PathListExecuted, req)
	if err != nil {
		return nil, err
	}

	out := make([]models.RawOrder, 0, len(listing.Bids)+len(listing.Asks)+len(listing.Unsided))
	for _, o := range listing.Bids {
		if o.ExecutedType == "" {
			o.ExecutedType = models.Bid
		}
		out = append(out, o)
	}
	for _, o := range listing.Asks {
		if o.ExecutedType == "" {
			o.ExecutedType = models.Ask
		}
		out = append(out, o)
	}
	return append(out, listing.Unsided...), nil
}

// ExecutedSince returns filled orders for a market at or after since
func (c *Client) ExecutedSince(ctx context.Context, symbol models.MarketSymbol, since time.Time, limit int) ([]models.RawOrder, error) {
	return c.ListExecuted(ctx, ListRequest{
		Market: symbol.String(),
		Limit:  limit,
		Where:  fmt.Sprintf("timestamp>=%d", since.Unix()),
	})
}

// ListOrders returns all open orders for a market
func (c *Client) ListOrders(ctx context.Context, symbol models.MarketSymbol, limit int) (Listing, error) {
	return c.list(ctx, PathListOrders, ListRequest{Market: symbol.String(), Limit: limit})
}

// FetchBook fetches bids and asks in parallel and waits for both
func (c *Client) FetchBook(ctx context.Context, symbol models.MarketSymbol, depth int) (Listing, error) {
	var book Listing
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bids, err := c.ListBids(gctx, symbol, depth)
		book.Bids = bids
		return err
	})
	g.Go(func() error {
		asks, err := c.ListAsks(gctx, symbol, depth)
		book.Asks = asks
		return err
	})
	if err := g.Wait(); err != nil {
		return Listing{}, fmt.Errorf("fetch %s book: %w", symbol, err)
	}
	return book, nil
}

// FetchSide fetches the counter-orders a trade in the given direction consumes
func (c *Client) FetchSide(ctx context.Context, symbol models.MarketSymbol, side models.BookSide, depth int) ([]models.RawOrder, error) {
	if side == models.Bid {
		return c.ListBids(ctx, symbol, depth)
	}
	return c.ListAsks(ctx, symbol, depth)
}

func (c *Client) list(ctx context.Context, path string, req ListRequest) (Listing, error) {
	body, err := c.postWithRetry(ctx, path, req)
	if err != nil {
		return Listing{}, err
	}
	listing, err := decodeListing(body)
	if err != nil {
		return Listing{}, fmt.Errorf("%s: %w", path, err)
	}
	c.logger.WithFields(logrus.Fields{
		"path":   path,
		"market": req.Market,
		"bids":   len(listing.Bids),
		"asks":   len(listing.Asks),
		"other":  len(listing.Unsided),
	}).Debug("listed market records")
	return listing, nil
}

// postWithRetry implements exponential backoff with storm protection
func (c *Client) postWithRetry(ctx context.Context, path string, req ListRequest) ([]byte, error) {
	schedule := backoff.WithContext(c.currentRetryConfig().newBackOff(), ctx)

	var body []byte
	operation := func() error {
		if c.isInStormMode() {
			return backoff.Permanent(ErrStormMode)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var err error
		if c.fetchFunc != nil {
			body, err = c.fetchFunc(ctx, path, req)
		} else {
			body, err = c.post(ctx, path, req)
		}
		if err != nil {
			// client errors don't count towards storm mode
			var permanent *backoff.PermanentError
			if !errors.As(err, &permanent) {
				c.recordFailure()
			}
			c.logger.WithFields(logrus.Fields{
				"path":    path,
				"market":  req.Market,
				"attempt": c.GetHealth().RetryAttempt,
			}).WithError(err).Warn("Nexus API request failed")
			return err
		}

		c.recordSuccess()
		return nil
	}

	if err := backoff.Retry(operation, schedule); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return body, nil
}

// post performs one HTTP round trip
func (c *Client) post(ctx context.Context, path string, req ListRequest) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}

	status := resp.StatusCode()
	switch {
	case status >= http.StatusInternalServerError || status == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status())
	case status >= http.StatusBadRequest:
		return nil, backoff.Permanent(fmt.Errorf("%w: %s: %s", ErrBadStatus, resp.Status(), strings.TrimSpace(resp.String())))
	}
	return resp.Body(), nil
}
