package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/projetto/freedompay-service/internal/domain"
	"github.com/projetto/freedompay-service/internal/domain/ports"
)

// MockGateway is a scriptable gateway for testing. Responses and errors
// are keyed by operation so a single test can exercise mixed flows.
type MockGateway struct {
	mu sync.Mutex

	responses map[domain.Operation]*domain.GatewayResponse
	sendErrs  map[domain.Operation]error

	PrepareErr error

	// Captured calls
	PreparedRequests []ports.SignedRequest
	SentRequests     []ports.SignedRequest
}

// NewMockGateway creates a new mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{
		responses: make(map[domain.Operation]*domain.GatewayResponse),
		sendErrs:  make(map[domain.Operation]error),
	}
}

// SetResponse configures the response Send returns for an operation
func (m *MockGateway) SetResponse(op domain.Operation, fields map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[op] = &domain.GatewayResponse{
		Fields: fields,
		RawXML: []byte("<response/>"),
	}
}

// SetSendError configures the error Send returns for an operation
func (m *MockGateway) SetSendError(op domain.Operation, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErrs[op] = err
}

// Prepare assembles a signed request with stand-in signature fields
func (m *MockGateway) Prepare(op domain.Operation, fields map[string]string) (*ports.SignedRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PrepareErr != nil {
		return nil, m.PrepareErr
	}

	merged := make(map[string]string, len(fields)+3)
	for k, v := range fields {
		merged[k] = v
	}
	merged["pg_merchant_id"] = "548856"
	merged["pg_salt"] = "testsalttestsalt"
	merged["pg_sig"] = "00000000000000000000000000000000"

	req := ports.SignedRequest{
		Operation:       op,
		ScriptName:      string(op) + ".php",
		URL:             "https://gateway.test/" + string(op) + ".php",
		ProtocolVersion: "v2",
		Fields:          merged,
	}
	m.PreparedRequests = append(m.PreparedRequests, req)
	return &req, nil
}

// Send returns the configured response or error for the request's operation
func (m *MockGateway) Send(_ context.Context, req *ports.SignedRequest) (*domain.GatewayResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentRequests = append(m.SentRequests, *req)

	if err, ok := m.sendErrs[req.Operation]; ok {
		return nil, err
	}
	if resp, ok := m.responses[req.Operation]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("mock gateway: no response configured for operation %s", req.Operation)
}
