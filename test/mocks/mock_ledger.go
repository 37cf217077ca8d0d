package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/projetto/freedompay-service/internal/domain"
)

// MockLedger is an in-memory append-only ledger for testing. It keeps
// every record in insertion order and never mutates one after the fact,
// matching the contract of the Postgres implementation.
type MockLedger struct {
	mu      sync.Mutex
	records []domain.GatewayRecord

	// Errors to return
	OutboundErr error
	InboundErr  error
}

// NewMockLedger creates a new mock ledger
func NewMockLedger() *MockLedger {
	return &MockLedger{}
}

// RecordOutbound appends an outbound record
func (m *MockLedger) RecordOutbound(_ context.Context, rec *domain.GatewayRecord) (uuid.UUID, error) {
	if m.OutboundErr != nil {
		return uuid.Nil, m.OutboundErr
	}
	return m.append(rec, domain.DirectionOutbound), nil
}

// RecordInbound appends an inbound record
func (m *MockLedger) RecordInbound(_ context.Context, rec *domain.GatewayRecord) (uuid.UUID, error) {
	if m.InboundErr != nil {
		return uuid.Nil, m.InboundErr
	}
	return m.append(rec, domain.DirectionInbound), nil
}

func (m *MockLedger) append(rec *domain.GatewayRecord, dir domain.Direction) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	stored.ID = uuid.New()
	stored.Direction = dir
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.Fields = make(map[string]string, len(rec.Fields))
	for k, v := range rec.Fields {
		stored.Fields[k] = v
	}
	m.records = append(m.records, stored)
	return stored.ID
}

// ListByOrder returns records linked to an order in insertion order
func (m *MockLedger) ListByOrder(_ context.Context, orderID string) ([]domain.GatewayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.GatewayRecord
	for _, rec := range m.records {
		if rec.OrderID != nil && *rec.OrderID == orderID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ListByPaymentID returns records carrying the payment id in insertion order
func (m *MockLedger) ListByPaymentID(_ context.Context, paymentID string) ([]domain.GatewayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.GatewayRecord
	for _, rec := range m.records {
		if rec.Fields["pg_payment_id"] == paymentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Records returns a copy of everything appended so far
func (m *MockLedger) Records() []domain.GatewayRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.GatewayRecord, len(m.records))
	copy(out, m.records)
	return out
}

// RecordsBy returns appended records filtered by operation and direction
func (m *MockLedger) RecordsBy(op domain.Operation, dir domain.Direction) []domain.GatewayRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.GatewayRecord
	for _, rec := range m.records {
		if rec.Operation == op && rec.Direction == dir {
			out = append(out, rec)
		}
	}
	return out
}
