package nexus

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/linluma/nexusdex/shared/models"
)

// ErrDecode wraps responses that aren't a market listing
var ErrDecode = errors.New("decode nexus response")

// Listing holds the records of one list call.
// The node answers either with a flat array, kept in Unsided, or with an
// object splitting records into bids and asks.
type Listing struct {
	Bids    []models.RawOrder `json:"bids"`
	Asks    []models.RawOrder `json:"asks"`
	Unsided []models.RawOrder `json:"-"`
}

// All returns every record in the listing
func (l Listing) All() []models.RawOrder {
	out := make([]models.RawOrder, 0, len(l.Bids)+len(l.Asks)+len(l.Unsided))
	out = append(out, l.Bids...)
	out = append(out, l.Asks...)
	return append(out, l.Unsided...)
}

// APIError is the error object a Nexus node returns in place of a result
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nexus API error %d: %s", e.Code, e.Message)
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *APIError       `json:"error"`
}

// decodeListing unwraps a {"result": ...} response
func decodeListing(body []byte) (Listing, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Listing{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if env.Error != nil {
		return Listing{}, env.Error
	}

	result := bytes.TrimSpace(env.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return Listing{}, nil
	}

	var listing Listing
	switch result[0] {
	case '[':
		if err := json.Unmarshal(result, &listing.Unsided); err != nil {
			return Listing{}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	case '{':
		if err := json.Unmarshal(result, &listing); err != nil {
			return Listing{}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	default:
		return Listing{}, fmt.Errorf("%w: unexpected result %.32q", ErrDecode, result)
	}
	return listing, nil
}
