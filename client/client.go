package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/linluma/nexusdex/shared/format"
	"github.com/linluma/nexusdex/shared/models"
)

// WriteJSON writes v as a single JSON line
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}

// DisplaySnapshot formats and displays one pair snapshot
func DisplaySnapshot(w io.Writer, snap models.Snapshot, depth int) {
	summary := snap.Summary

	// Choose emoji based on the 24h direction
	emoji := "⚪"
	switch {
	case summary.Change24h > 0:
		emoji = "🟢"
	case summary.Change24h < 0:
		emoji = "🔴"
	}

	fmt.Fprintf(w, "%s %s | last %s %s | 24h %s | vol %s | H:%s L:%s | %d trades | %s\n",
		emoji, snap.Pair,
		format.Price(summary.LastPrice), summary.Quote,
		format.Percent(summary.Change24h),
		format.Number(summary.Volume24h),
		format.Price(summary.High24h), format.Price(summary.Low24h),
		summary.TradeCount,
		snap.TakenAt.Format("15:04:05"))

	if snap.Spread != nil {
		fmt.Fprintf(w, "   spread %s (%.2f%%)  bid %s / ask %s\n",
			format.Price(snap.Spread.Spread), snap.Spread.Percent,
			format.Price(snap.Spread.BestBid), format.Price(snap.Spread.BestAsk))
	} else {
		fmt.Fprintln(w, "   spread n/a")
	}

	displayLevels(w, "asks", snap.Asks, depth)
	displayLevels(w, "bids", snap.Bids, depth)
	displayCandle(w, snap.Candles)

	for _, trade := range snap.Trades {
		fmt.Fprintf(w, "   %s %-4s %s @ %s = %s\n",
			trade.Time.Format("01-02 15:04"), trade.Type,
			format.Number(trade.Amount), format.Price(trade.Price), format.Number(trade.Total))
	}
}

func displayLevels(w io.Writer, label string, levels []models.PriceLevel, depth int) {
	if depth > 0 && len(levels) > depth {
		levels = levels[:depth]
	}
	if len(levels) == 0 {
		fmt.Fprintf(w, "   %s: empty\n", label)
		return
	}

	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprintf("%s x %s", format.Price(l.Price), format.Number(l.Amount))
	}
	fmt.Fprintf(w, "   %s: %s\n", label, strings.Join(parts, " | "))
}

// displayCandle shows the most recent bucket of the series
func displayCandle(w io.Writer, series models.CandleSeries) {
	if len(series.Candles) == 0 {
		return
	}
	last := series.Candles[len(series.Candles)-1]
	if last.Price == nil {
		fmt.Fprintf(w, "   %s candle %s: no trades yet\n", series.Interval, last.Start.Format("2006-01-02"))
		return
	}
	fmt.Fprintf(w, "   %s candle %s: O:%s H:%s L:%s C:%s V:%s\n",
		series.Interval, last.Start.Format("2006-01-02"),
		format.Price(last.Price.Open), format.Price(last.Price.High),
		format.Price(last.Price.Low), format.Price(last.Price.Close),
		format.Number(last.Volume))
}
