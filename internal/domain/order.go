package domain

import "github.com/shopspring/decimal"

// Order is the payable view of an order owned by the sales backend.
// The payment core never mutates orders; it only reads the amount and
// currency to build gateway requests.
type Order struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

// AmountString renders the order amount in the gateway's major-unit
// decimal format (25000 minor units -> "250").
func (o *Order) AmountString() string {
	return MinorToGatewayAmount(o.AmountMinor)
}

// MinorToGatewayAmount converts minor units to the decimal string the
// gateway expects in pg_amount / pg_refund_amount.
func MinorToGatewayAmount(minor int64) string {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100)).String()
}
