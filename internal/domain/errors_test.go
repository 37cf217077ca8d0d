package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	err := NewDomainError(ErrorCodeOrderNotFound, "order not found").
		WithDetail("order_id", "order-77")

	assert.Equal(t, "ORDER_NOT_FOUND: order not found", err.Error())
	assert.Equal(t, "order-77", err.Details["order_id"])
	assert.Equal(t, ErrorCodeOrderNotFound, GetErrorCode(err))
	assert.True(t, IsDomainError(err, ErrorCodeOrderNotFound))
	assert.False(t, IsDomainError(err, ErrorCodeGatewayTransport))
}

func TestWrapError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(ErrorCodeGatewayTransport, "post request", cause)

	assert.Equal(t, "GATEWAY_TRANSPORT: post request: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrorCodeGatewayTransport, GetErrorCode(err))
}

func TestGetErrorCode_NonDomainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(nil))
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(NewDomainError(ErrorCodeValidationFailed, "bad input")))
	assert.True(t, IsValidationError(NewDomainError(ErrorCodeValidationMissingField, "missing")))
	assert.True(t, IsValidationError(NewDomainError(ErrorCodeValidationAmount, "amount")))
	assert.False(t, IsValidationError(NewDomainError(ErrorCodeOrderNotFound, "not found")))
	assert.False(t, IsValidationError(errors.New("plain")))
}
