package ohlc

import (
	"math"
	"sort"
	"time"

	"github.com/linluma/nexusdex/dex/pricing"
	"github.com/linluma/nexusdex/shared/models"
)

// bucket accumulates trades falling into one aligned interval
type bucket struct {
	ohlc   models.OHLC
	volume float64
	trades int32
}

func (b *bucket) add(price, volume float64) {
	if b.trades == 0 {
		b.ohlc = models.OHLC{Open: price, High: price, Low: price, Close: price}
	} else {
		b.ohlc.High = math.Max(b.ohlc.High, price)
		b.ohlc.Low = math.Min(b.ohlc.Low, price)
		b.ohlc.Close = price
	}
	b.volume += volume
	b.trades++
}

// Align returns the start of the bucket containing t, in UTC.
// The zero time is a Monday at midnight, so truncating by whole days or
// weeks lands on UTC midnight or Monday 00:00 UTC respectively.
func Align(t time.Time, interval models.Interval) time.Time {
	return t.UTC().Truncate(interval.BucketWidth())
}

// Range returns the default chart window for an interval ending at now
func Range(interval models.Interval, now time.Time) (time.Time, time.Time) {
	return now.Add(-interval.Lookback()), now
}

// BuildCandles buckets executed trades into aligned candles between start
// and end inclusive. Every bucket in the range is present: empty buckets
// repeat the previous close with zero volume, or carry no price when no
// earlier bucket in the range had trades.
func BuildCandles(trades []models.RawOrder, market models.MarketSymbol, interval models.Interval, start, end time.Time) models.CandleSeries {
	width := interval.BucketWidth()
	series := models.CandleSeries{
		Pair:     market.String(),
		Interval: interval,
		Width:    width,
		Candles:  []models.Candle{},
	}

	from, to := Align(start, interval), Align(end, interval)
	if to.Before(from) {
		return series
	}
	series.From, series.To = from, to

	ordered := make([]models.RawOrder, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Timestamp < ordered[j].Timestamp })

	buckets := make(map[int64]*bucket)
	for _, t := range ordered {
		price := pricing.DerivePrice(t, market)
		volume := pricing.Normalize(t.Contract)
		if price <= 0 || volume <= 0 {
			continue
		}

		key := Align(time.Unix(t.Timestamp, 0), interval).Unix()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.add(price, volume)
	}

	var last *models.OHLC
	for ts := from; !ts.After(to); ts = ts.Add(width) {
		candle := models.Candle{Start: ts}
		if b, ok := buckets[ts.Unix()]; ok {
			ohlc := b.ohlc
			candle.Price = &ohlc
			candle.Volume = b.volume
			candle.TradeCount = b.trades
			last = &ohlc
		} else if last != nil {
			c := last.Close
			candle.Price = &models.OHLC{Open: c, High: c, Low: c, Close: c}
		}
		series.Candles = append(series.Candles, candle)
	}
	return series
}
