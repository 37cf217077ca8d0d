package mocks

import (
	"context"
	"sync"

	"github.com/projetto/freedompay-service/internal/domain"
)

// MockOrderLookup is an in-memory OrderLookup for testing
type MockOrderLookup struct {
	mu     sync.Mutex
	orders map[string]*domain.Order

	GetOrderCalls int
	LastOrderID   string
}

// NewMockOrderLookup creates a new mock order lookup
func NewMockOrderLookup() *MockOrderLookup {
	return &MockOrderLookup{orders: make(map[string]*domain.Order)}
}

// AddOrder registers an order to be returned by GetOrder
func (m *MockOrderLookup) AddOrder(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

// GetOrder returns a registered order or domain.ErrOrderNotFound
func (m *MockOrderLookup) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetOrderCalls++
	m.LastOrderID = orderID

	order, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}
