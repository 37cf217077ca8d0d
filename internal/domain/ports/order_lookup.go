package ports

import (
	"context"

	"github.com/projetto/freedompay-service/internal/domain"
)

// OrderLookup resolves the authoritative payable amount for an order.
// The payment core never trusts a client-supplied amount; everything sent
// to the gateway is derived from this interface.
type OrderLookup interface {
	// GetOrder returns the order or domain.ErrOrderNotFound
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}
