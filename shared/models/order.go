package models

import (
	"bytes"
	"math"
	"strconv"
)

// Amount is a wire amount that may be a JSON number, a numeric string,
// null or missing. Valid is false for anything that isn't a finite number.
type Amount struct {
	Value float64
	Valid bool
}

// NewAmount returns a valid amount
func NewAmount(v float64) Amount {
	return Amount{Value: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

// UnmarshalJSON accepts numbers and numeric strings; anything else leaves
// the amount invalid instead of failing the whole record.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return nil
		}
		data = bytes.TrimSpace([]byte(s))
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	*a = NewAmount(v)
	return nil
}

// MarshalJSON writes the number, or null when invalid
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, a.Value, 'f', -1, 64), nil
}

// Leg is one side of a two-legged trade record
type Leg struct {
	Amount Amount `json:"amount"`
	Ticker string `json:"ticker"`
}

// RawOrder is a contract/order record as returned by the Nexus market API.
// Contract is what the creator gives up, Order is what they want back.
type RawOrder struct {
	Contract     Leg      `json:"contract"`
	Order        Leg      `json:"order"`
	Timestamp    int64    `json:"timestamp,omitempty"`
	TxID         string   `json:"txid,omitempty"`
	OwnerAddr    string   `json:"owner,omitempty"`
	Address      string   `json:"address,omitempty"`
	Market       string   `json:"market,omitempty"`
	ExecutedType BookSide `json:"executedType,omitempty"`
}

// Owner returns the owner field, falling back to address
func (o RawOrder) Owner() string {
	if o.OwnerAddr != "" {
		return o.OwnerAddr
	}
	return o.Address
}
