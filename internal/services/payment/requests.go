package payment

import (
	"strings"

	"github.com/projetto/freedompay-service/internal/domain"
)

// PayRequest initiates a card payment for an order. The amount is never
// part of the request: it is resolved server-side from the order.
type PayRequest struct {
	OrderID     string `json:"order_id"`
	Description string `json:"description"`

	CardName  string `json:"card_name"`
	CardPAN   string `json:"card_pan"`
	CardCVC   string `json:"card_cvc"`
	CardMonth string `json:"card_month"`
	CardYear  string `json:"card_year"`

	AutoClearing     bool   `json:"auto_clearing"`
	ThreeDSChallenge bool   `json:"three_ds_challenge"`
	TestingMode      bool   `json:"testing_mode"`
	ResultURL        string `json:"result_url"`

	// Opaque passthrough parameters echoed back by the gateway
	Param1 string `json:"param1"`
	Param2 string `json:"param2"`
	Param3 string `json:"param3"`

	// Extra carries additional pg_* fields. Reserved fields (amount,
	// currency, merchant identity, signature material) are stripped.
	Extra map[string]string `json:"extra,omitempty"`
}

func (r *PayRequest) validate() error {
	required := []struct{ name, value string }{
		{"order_id", r.OrderID},
		{"card_name", r.CardName},
		{"card_pan", r.CardPAN},
		{"card_cvc", r.CardCVC},
		{"card_month", r.CardMonth},
		{"card_year", r.CardYear},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return missingField(f.name)
		}
	}
	return nil
}

// Continue3DSRequest resumes a payment after the payer completed the
// 3-D Secure challenge
type Continue3DSRequest struct {
	PaymentID string `json:"payment_id"`
	MD        string `json:"md"`
	PaRes     string `json:"pares"`
}

func (r *Continue3DSRequest) validate() error {
	switch {
	case r.PaymentID == "":
		return missingField("payment_id")
	case r.MD == "":
		return missingField("md")
	case r.PaRes == "":
		return missingField("pares")
	}
	return nil
}

// StatusRequest queries the gateway-side transaction state. At least one
// of PaymentID and OrderID is required.
type StatusRequest struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
}

func (r *StatusRequest) validate() error {
	if r.PaymentID == "" && r.OrderID == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationFailed,
			"payment_id or order_id is required")
	}
	return nil
}

// CancelRequest voids a payment before capture
type CancelRequest struct {
	PaymentID string `json:"payment_id"`
}

func (r *CancelRequest) validate() error {
	if r.PaymentID == "" {
		return missingField("payment_id")
	}
	return nil
}

// RevokeRequest refunds a captured payment. RefundAmountMinor of zero
// means full refund per gateway semantics; a positive value requests a
// partial refund and may not exceed the order amount.
type RevokeRequest struct {
	OrderID           string `json:"order_id"`
	PaymentID         string `json:"payment_id"`
	RefundAmountMinor int64  `json:"refund_amount_minor"`
}

func (r *RevokeRequest) validate() error {
	switch {
	case r.OrderID == "":
		return missingField("order_id")
	case r.PaymentID == "":
		return missingField("payment_id")
	case r.RefundAmountMinor < 0:
		return domain.NewDomainError(domain.ErrorCodeValidationAmount,
			"refund amount must not be negative")
	}
	return nil
}

func missingField(name string) error {
	return domain.NewDomainError(domain.ErrorCodeValidationMissingField,
		"required field missing").WithDetail("field", name)
}

// reservedFields are never taken from caller-supplied extras: amounts and
// currency come from the order, identity and signature material from the
// gateway client.
var reservedFields = map[string]bool{
	"pg_amount":        true,
	"pg_refund_amount": true,
	"pg_currency":      true,
	"pg_merchant_id":   true,
	"pg_order_id":      true,
	"pg_salt":          true,
	"pg_sig":           true,
	"pg_testing_mode":  true,
}
