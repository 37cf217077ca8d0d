package domain

import "github.com/shopspring/decimal"

// StatusOK is the pg_status value the gateway uses for accepted requests
const StatusOK = "ok"

// GatewayResponse is a parsed gateway XML envelope. The gateway may add
// fields at any time, so the full set is kept as a string map; the typed
// accessors below cover the fields the rest of the system acts on.
type GatewayResponse struct {
	Fields map[string]string
	RawXML []byte
}

// Get returns the named field, or "" when absent
func (r *GatewayResponse) Get(name string) string {
	return r.Fields[name]
}

// IsOK reports whether the gateway accepted the request
func (r *GatewayResponse) IsOK() bool {
	return r.Fields["pg_status"] == StatusOK
}

func (r *GatewayResponse) Status() string      { return r.Fields["pg_status"] }
func (r *GatewayResponse) Description() string { return r.Fields["pg_description"] }
func (r *GatewayResponse) PaymentID() string   { return r.Fields["pg_payment_id"] }

// 3-D Secure challenge parameters returned by payment initiation
func (r *GatewayResponse) RedirectURL() string     { return r.Fields["pg_redirect_url"] }
func (r *GatewayResponse) RedirectURLType() string { return r.Fields["pg_redirect_url_type"] }
func (r *GatewayResponse) RedirectQR() string      { return r.Fields["pg_redirect_qr"] }

// RequiresChallenge reports whether the payer must complete a 3-D Secure
// redirect before the payment can settle
func (r *GatewayResponse) RequiresChallenge() bool {
	return r.RedirectURL() != ""
}

// Status snapshot fields
func (r *GatewayResponse) TransactionStatus() string  { return r.Fields["pg_transaction_status"] }
func (r *GatewayResponse) TestingMode() string        { return r.Fields["pg_testing_mode"] }
func (r *GatewayResponse) CreateDate() string         { return r.Fields["pg_create_date"] }
func (r *GatewayResponse) CanReject() bool            { return r.Fields["pg_can_reject"] == "1" }
func (r *GatewayResponse) Captured() bool             { return r.Fields["pg_captured"] == "1" }
func (r *GatewayResponse) CardPAN() string            { return r.Fields["pg_card_pan"] }
func (r *GatewayResponse) CardID() string             { return r.Fields["pg_card_id"] }
func (r *GatewayResponse) CardToken() string          { return r.Fields["pg_card_token"] }
func (r *GatewayResponse) CardHash() string           { return r.Fields["pg_card_hash"] }
func (r *GatewayResponse) FailureCode() string        { return r.Fields["pg_failure_code"] }
func (r *GatewayResponse) FailureDescription() string { return r.Fields["pg_failure_description"] }

// Business rejection fields
func (r *GatewayResponse) ErrorCode() string        { return r.Fields["pg_error_code"] }
func (r *GatewayResponse) ErrorDescription() string { return r.Fields["pg_error_description"] }

// Refund fields
func (r *GatewayResponse) RefundStatus() string { return r.Fields["pg_refund_status"] }
func (r *GatewayResponse) RevokeStatus() string { return r.Fields["pg_revoke_status"] }

// Amount parses pg_amount out of a status snapshot. The second return is
// false when the field is absent or not a decimal number.
func (r *GatewayResponse) Amount() (decimal.Decimal, bool) {
	return r.decimalField("pg_amount")
}

// NetAmount parses pg_net_amount, the amount after gateway fees
func (r *GatewayResponse) NetAmount() (decimal.Decimal, bool) {
	return r.decimalField("pg_net_amount")
}

func (r *GatewayResponse) decimalField(name string) (decimal.Decimal, bool) {
	raw, ok := r.Fields[name]
	if !ok || raw == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
