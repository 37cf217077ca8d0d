package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/projetto/freedompay-service/internal/domain"
	"github.com/projetto/freedompay-service/internal/services/payment"
)

// stubService returns canned outcomes and records what it was called with
type stubService struct {
	outcome *domain.Outcome
	err     error
	state   domain.PaymentState
	records []domain.GatewayRecord

	lastPay    *payment.PayRequest
	lastRevoke *payment.RevokeRequest
}

func (s *stubService) Pay(_ context.Context, req *payment.PayRequest) (*domain.Outcome, error) {
	s.lastPay = req
	return s.outcome, s.err
}

func (s *stubService) Continue3DS(context.Context, *payment.Continue3DSRequest) (*domain.Outcome, error) {
	return s.outcome, s.err
}

func (s *stubService) Status(context.Context, *payment.StatusRequest) (*domain.Outcome, error) {
	return s.outcome, s.err
}

func (s *stubService) Cancel(context.Context, *payment.CancelRequest) (*domain.Outcome, error) {
	return s.outcome, s.err
}

func (s *stubService) Revoke(_ context.Context, req *payment.RevokeRequest) (*domain.Outcome, error) {
	s.lastRevoke = req
	return s.outcome, s.err
}

func (s *stubService) PaymentState(context.Context, string) (domain.PaymentState, error) {
	return s.state, s.err
}

func (s *stubService) OrderTrail(context.Context, string) ([]domain.GatewayRecord, error) {
	return s.records, s.err
}

func newTestRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func approvedOutcome(fields map[string]string) *domain.Outcome {
	return &domain.Outcome{
		Kind:     domain.OutcomeApproved,
		Response: &domain.GatewayResponse{Fields: fields},
	}
}

func TestHandlePay_Approved(t *testing.T) {
	svc := &stubService{outcome: approvedOutcome(map[string]string{
		"pg_status":     "ok",
		"pg_payment_id": "12345",
	})}
	router := newTestRouter(svc)

	rec := postJSON(t, router, "/payments", map[string]any{
		"order_id":   "order-77",
		"card_name":  "IVAN IVANOV",
		"card_pan":   "4400123456781234",
		"card_cvc":   "123",
		"card_month": "12",
		"card_year":  "29",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp outcomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "approved", resp.Outcome)
	assert.Equal(t, "12345", resp.PaymentID)
	assert.False(t, resp.RequiresChallenge)

	require.NotNil(t, svc.lastPay)
	assert.Equal(t, "order-77", svc.lastPay.OrderID)
}

func TestHandlePay_ChallengeRedirect(t *testing.T) {
	svc := &stubService{outcome: approvedOutcome(map[string]string{
		"pg_status":       "ok",
		"pg_payment_id":   "12345",
		"pg_redirect_url": "https://acs.bank.example/challenge",
	})}
	router := newTestRouter(svc)

	rec := postJSON(t, router, "/payments", map[string]any{"order_id": "order-77"})

	var resp outcomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.RequiresChallenge)
	assert.Equal(t, "https://acs.bank.example/challenge", resp.RedirectURL)
}

func TestHandlePay_Declined(t *testing.T) {
	svc := &stubService{outcome: &domain.Outcome{
		Kind:             domain.OutcomeDeclined,
		Response:         &domain.GatewayResponse{Fields: map[string]string{"pg_status": "error"}},
		ErrorCode:        "100",
		ErrorDescription: "Insufficient funds",
	}}
	router := newTestRouter(svc)

	rec := postJSON(t, router, "/payments", map[string]any{"order_id": "order-77"})

	// Declines are business outcomes, not HTTP failures
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp outcomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "declined", resp.Outcome)
	assert.Equal(t, "100", resp.ErrorCode)
	assert.Equal(t, "Insufficient funds", resp.ErrorDescription)
}

func TestHandlePay_TransportFailure(t *testing.T) {
	svc := &stubService{outcome: &domain.Outcome{
		Kind: domain.OutcomeTransportFailed,
		Err:  domain.NewDomainError(domain.ErrorCodeGatewayTransport, "request timed out"),
	}}
	router := newTestRouter(svc)

	rec := postJSON(t, router, "/payments", map[string]any{"order_id": "order-77"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp outcomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "transport_failed", resp.Outcome)
}

func TestHandlePay_ValidationError(t *testing.T) {
	svc := &stubService{err: domain.NewDomainError(domain.ErrorCodeValidationMissingField,
		"required field missing").WithDetail("field", "card_pan")}
	router := newTestRouter(svc)

	rec := postJSON(t, router, "/payments", map[string]any{"order_id": "order-77"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_MISSING_FIELD", resp.Error.Code)
	assert.Equal(t, "card_pan", resp.Error.Details["field"])
}

func TestHandlePay_OrderNotFound(t *testing.T) {
	svc := &stubService{err: domain.NewDomainError(domain.ErrorCodeOrderNotFound, "order not found")}
	router := newTestRouter(svc)

	rec := postJSON(t, router, "/payments", map[string]any{"order_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePay_MalformedBody(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRevoke(t *testing.T) {
	svc := &stubService{outcome: approvedOutcome(map[string]string{
		"pg_status":        "ok",
		"pg_refund_status": "approved",
	})}
	router := newTestRouter(svc)

	rec := postJSON(t, router, "/payments/revoke", map[string]any{
		"order_id":            "order-77",
		"payment_id":          "12345",
		"refund_amount_minor": 1000000,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastRevoke)
	assert.Equal(t, int64(1000000), svc.lastRevoke.RefundAmountMinor)
}

func TestHandlePaymentState(t *testing.T) {
	svc := &stubService{state: domain.PaymentStateCaptured}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/payments/12345/state", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "captured", resp["state"])
	assert.Equal(t, false, resp["terminal"])
}

func TestHandleOrderTrail(t *testing.T) {
	svc := &stubService{records: []domain.GatewayRecord{
		{Operation: domain.OperationPayment, Direction: domain.DirectionOutbound},
		{Operation: domain.OperationPayment, Direction: domain.DirectionInbound},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/order-77/records", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OrderID string           `json:"order_id"`
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "order-77", resp.OrderID)
	assert.Len(t, resp.Records, 2)
}
