package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operation identifies a gateway operation. Outbound operations map to a
// gateway script; inbound operations are callbacks initiated by the gateway.
type Operation string

const (
	OperationPayment       Operation = "payment"
	OperationPayment3DS    Operation = "payment_3ds_continue"
	OperationStatus        Operation = "status"
	OperationCancel        Operation = "cancel"
	OperationRevoke        Operation = "revoke"
	OperationInboundCheck  Operation = "inbound_check"
	OperationInboundResult Operation = "inbound_result"
)

// IsInbound reports whether the operation is a gateway-initiated callback
func (op Operation) IsInbound() bool {
	return op == OperationInboundCheck || op == OperationInboundResult
}

// Direction distinguishes requests we sent from responses/callbacks we received
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// GatewayRecord is one row of the append-only audit trail. Every outbound
// request and every parsed inbound field set is stored verbatim, including
// fields the schema does not know about. Records are created once and never
// updated or deleted.
type GatewayRecord struct {
	ID              uuid.UUID         `json:"id"`
	Operation       Operation         `json:"operation"`
	Direction       Direction         `json:"direction"`
	OrderID         *string           `json:"order_id"`
	ScriptName      string            `json:"script_name"`
	ProtocolVersion string            `json:"protocol_version"`
	Fields          map[string]string `json:"fields"`
	SigVerified     *bool             `json:"sig_verified"` // inbound callbacks only
	CreatedAt       time.Time         `json:"created_at"`
}

// PaymentID returns the gateway payment id carried by the record, if any
func (r *GatewayRecord) PaymentID() string {
	return r.Fields["pg_payment_id"]
}
