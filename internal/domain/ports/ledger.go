package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/projetto/freedompay-service/internal/domain"
)

// Ledger is the append-only audit trail of gateway traffic. Implementations
// must expose no update or delete path; every record is independently
// insertable and immutable once written.
type Ledger interface {
	// RecordOutbound journals a request before it is sent to the gateway
	RecordOutbound(ctx context.Context, rec *domain.GatewayRecord) (uuid.UUID, error)

	// RecordInbound journals a parsed gateway response or callback
	RecordInbound(ctx context.Context, rec *domain.GatewayRecord) (uuid.UUID, error)

	// ListByOrder returns all records linked to an order, created_at ASC
	ListByOrder(ctx context.Context, orderID string) ([]domain.GatewayRecord, error)

	// ListByPaymentID returns all records carrying the gateway payment id,
	// created_at ASC. Used to reconstruct the payment state machine.
	ListByPaymentID(ctx context.Context, paymentID string) ([]domain.GatewayRecord, error)
}
