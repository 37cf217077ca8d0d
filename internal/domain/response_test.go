package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGatewayResponseAccessors(t *testing.T) {
	resp := &GatewayResponse{Fields: map[string]string{
		"pg_status":       "ok",
		"pg_payment_id":   "12345",
		"pg_redirect_url": "https://acs.bank.example/challenge",
		"pg_amount":       "250.5",
		"pg_captured":     "1",
	}}

	assert.True(t, resp.IsOK())
	assert.Equal(t, "12345", resp.PaymentID())
	assert.True(t, resp.RequiresChallenge())
	assert.True(t, resp.Captured())

	amount, ok := resp.Amount()
	assert.True(t, ok)
	assert.Equal(t, "250.5", amount.String())

	_, ok = resp.NetAmount()
	assert.False(t, ok)
}

func TestGatewayResponseDeclined(t *testing.T) {
	resp := &GatewayResponse{Fields: map[string]string{
		"pg_status":            "error",
		"pg_error_code":        "100",
		"pg_error_description": "Insufficient funds",
	}}

	assert.False(t, resp.IsOK())
	assert.Equal(t, "100", resp.ErrorCode())
	assert.False(t, resp.RequiresChallenge())
}

func TestAmountNotNumeric(t *testing.T) {
	resp := &GatewayResponse{Fields: map[string]string{"pg_amount": "not-a-number"}}
	_, ok := resp.Amount()
	assert.False(t, ok)
}
