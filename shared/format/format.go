// Package format renders prices and volumes for terminal output.
package format

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Price formats a price with precision chosen by magnitude
func Price(p float64) string {
	if p == 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return "0.00"
	}

	switch {
	case p < 0.000001:
		return strconv.FormatFloat(p, 'e', 4, 64)
	case p < 0.01:
		return fixed(p, 8)
	case p < 1:
		return fixed(p, 6)
	case p < 100:
		return fixed(p, 4)
	}
	return fixed(p, 2)
}

// Number abbreviates large amounts with K, M or B
func Number(n float64) string {
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return "0"
	}

	switch {
	case n >= 1e9:
		return fixed(n/1e9, 2) + "B"
	case n >= 1e6:
		return fixed(n/1e6, 2) + "M"
	case n >= 1e3:
		return fixed(n/1e3, 2) + "K"
	}
	return fixed(n, 2)
}

// Percent formats a signed percentage change
func Percent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	s := fixed(p, 2) + "%"
	if p > 0 {
		return "+" + s
	}
	return s
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
