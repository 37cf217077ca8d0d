package domain

import "github.com/google/uuid"

// OutcomeKind classifies the normalized result of a gateway operation
type OutcomeKind string

const (
	// OutcomeApproved means the gateway accepted the request (pg_status=ok)
	OutcomeApproved OutcomeKind = "approved"
	// OutcomeDeclined means the gateway rejected the request as a business
	// decision. This is a normal outcome, never retried automatically.
	OutcomeDeclined OutcomeKind = "declined"
	// OutcomeTransportFailed means the request may or may not have reached
	// the gateway (DNS, connect, timeout). The outbound attempt is already
	// journaled; reconciliation goes through the Status operation.
	OutcomeTransportFailed OutcomeKind = "transport_failed"
	// OutcomeMalformedResponse means the gateway answered with something
	// that is not a well-formed XML envelope
	OutcomeMalformedResponse OutcomeKind = "malformed_response"
)

// Outcome is the normalized result handed back to checkout callers.
// Response is nil for transport failures and malformed responses.
type Outcome struct {
	Kind             OutcomeKind      `json:"kind"`
	Response         *GatewayResponse `json:"response,omitempty"`
	ErrorCode        string           `json:"error_code,omitempty"`
	ErrorDescription string           `json:"error_description,omitempty"`
	Err              error            `json:"-"`
	OutboundRecordID uuid.UUID        `json:"outbound_record_id"`
	InboundRecordID  *uuid.UUID       `json:"inbound_record_id,omitempty"`
}

// Approved reports whether the operation was accepted by the gateway
func (o *Outcome) Approved() bool {
	return o.Kind == OutcomeApproved
}
