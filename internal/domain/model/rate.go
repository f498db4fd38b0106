package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateQuery identifies one conversion-rate lookup: a document currency within a company.
type RateQuery struct {
	CurrencyCode   Currency `json:"currency"`
	OrganizationID string   `json:"company"`
}

func (q RateQuery) String() string {
	return fmt.Sprintf("%s@%s", q.CurrencyCode, q.OrganizationID)
}

// RateResult is the normalized outcome of a rate lookup. Rate is invalid when the
// authority returned nothing usable.
type RateResult struct {
	Success bool                `json:"success"`
	Rate    decimal.NullDecimal `json:"rate"`
	Message string              `json:"message,omitempty"`
}

// RateResponse is the raw reply of the ERP get_exchange_rate method. Rate keeps
// the wire text so that string and numeric encodings parse the same way.
type RateResponse struct {
	Success *bool
	Rate    string
	Message string
}
