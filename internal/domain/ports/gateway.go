package ports

import (
	"context"

	"github.com/projetto/freedompay-service/internal/domain"
)

// SignedRequest is a fully assembled, signed gateway request that has not
// been sent yet. Splitting Prepare from Send lets callers journal the
// outbound attempt before any bytes leave the process.
type SignedRequest struct {
	Operation       domain.Operation
	ScriptName      string
	URL             string
	ProtocolVersion string
	// Fields includes pg_merchant_id, pg_salt and pg_sig
	Fields map[string]string
}

// Gateway builds and executes signed requests against the payment gateway.
//
// Send returns a DomainError with code GATEWAY_TRANSPORT when the request
// failed at the network layer and GATEWAY_MALFORMED_RESPONSE when the body
// was not a well-formed XML envelope. A business rejection (pg_status!=ok)
// is a successful Send; callers classify it from the response. Send never
// retries: payment creation is not idempotent on the gateway side.
type Gateway interface {
	Prepare(op domain.Operation, fields map[string]string) (*SignedRequest, error)
	Send(ctx context.Context, req *SignedRequest) (*domain.GatewayResponse, error)
}
