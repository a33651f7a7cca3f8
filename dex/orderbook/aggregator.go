package orderbook

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/linluma/nexusdex/shared/models"
)

// LevelPrecision is the number of decimals two prices must share to merge
const LevelPrecision = 8

// levelAcc accumulates one price level while merging
type levelAcc struct {
	price  float64
	amount decimal.Decimal
	total  decimal.Decimal
	txids  []string
	seen   map[string]struct{}
}

// LevelKey is the map key a price merges under. It rounds the exact binary
// value of price, not its shortest decimal form.
func LevelKey(price float64) string {
	return strconv.FormatFloat(price, 'f', LevelPrecision, 64)
}

// Aggregate merges entries whose prices agree to 8 decimals.
// Levels come out in the order their key was first seen; the input is
// expected to be sorted already and is not re-sorted here.
func Aggregate(entries []models.OrderEntry) []models.PriceLevel {
	order := make([]string, 0, len(entries))
	levels := make(map[string]*levelAcc, len(entries))

	for _, e := range entries {
		if !finite(e.Price, e.Amount, e.Total) {
			continue
		}
		key := LevelKey(e.Price)
		acc, ok := levels[key]
		if !ok {
			acc = &levelAcc{
				price: e.Price,
				seen:  make(map[string]struct{}),
			}
			levels[key] = acc
			order = append(order, key)
		}

		acc.amount = acc.amount.Add(decimal.NewFromFloat(e.Amount))
		acc.total = acc.total.Add(decimal.NewFromFloat(e.Total))
		for _, id := range e.TxIDs {
			if id == "" {
				continue
			}
			if _, dup := acc.seen[id]; dup {
				continue
			}
			acc.seen[id] = struct{}{}
			acc.txids = append(acc.txids, id)
		}
	}

	out := make([]models.PriceLevel, 0, len(order))
	for _, key := range order {
		acc := levels[key]
		txids := acc.txids
		if txids == nil {
			txids = []string{}
		}
		out = append(out, models.PriceLevel{
			Price:  acc.price,
			Amount: acc.amount.Round(LevelPrecision).InexactFloat64(),
			Total:  acc.total.InexactFloat64(),
			TxIDs:  txids,
		})
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
