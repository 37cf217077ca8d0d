package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projetto/freedompay-service/internal/domain"
)

// OrderLookup implements ports.OrderLookup by reading the orders table
// owned by the sales backend. Read-only: order lifecycle is driven outside
// the payment core.
type OrderLookup struct {
	pool *pgxpool.Pool
}

// NewOrderLookup creates a new order lookup
func NewOrderLookup(pool *pgxpool.Pool) *OrderLookup {
	return &OrderLookup{pool: pool}
}

const selectOrderSQL = `
SELECT id, amount_minor, currency
FROM orders
WHERE id = $1`

// GetOrder returns the payable view of an order or domain.ErrOrderNotFound
func (l *OrderLookup) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	err := l.pool.QueryRow(ctx, selectOrderSQL, orderID).Scan(&order.ID, &order.AmountMinor, &order.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewDomainError(domain.ErrorCodeOrderNotFound, "order not found").WithDetail("order_id", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}
