package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/projetto/freedompay-service/internal/domain"
	"github.com/projetto/freedompay-service/internal/services/payment"
)

// Service is the payment service surface the handler consumes
type Service interface {
	Pay(ctx context.Context, req *payment.PayRequest) (*domain.Outcome, error)
	Continue3DS(ctx context.Context, req *payment.Continue3DSRequest) (*domain.Outcome, error)
	Status(ctx context.Context, req *payment.StatusRequest) (*domain.Outcome, error)
	Cancel(ctx context.Context, req *payment.CancelRequest) (*domain.Outcome, error)
	Revoke(ctx context.Context, req *payment.RevokeRequest) (*domain.Outcome, error)
	PaymentState(ctx context.Context, paymentID string) (domain.PaymentState, error)
	OrderTrail(ctx context.Context, orderID string) ([]domain.GatewayRecord, error)
}

// Handler exposes the payment operations as a JSON API
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new payment handler
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the payment API on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/payments", h.HandlePay)
	r.Post("/payments/3ds", h.HandleContinue3DS)
	r.Post("/payments/status", h.HandleStatus)
	r.Post("/payments/cancel", h.HandleCancel)
	r.Post("/payments/revoke", h.HandleRevoke)
	r.Get("/payments/{paymentID}/state", h.HandlePaymentState)
	r.Get("/orders/{orderID}/records", h.HandleOrderTrail)
}

// HandlePay initiates a card payment
// POST /api/v1/payments
func (h *Handler) HandlePay(w http.ResponseWriter, r *http.Request) {
	var req payment.PayRequest
	if !h.decode(w, r, &req) {
		return
	}

	outcome, err := h.service.Pay(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

// HandleContinue3DS resumes a payment after the 3-D Secure challenge
// POST /api/v1/payments/3ds
func (h *Handler) HandleContinue3DS(w http.ResponseWriter, r *http.Request) {
	var req payment.Continue3DSRequest
	if !h.decode(w, r, &req) {
		return
	}

	outcome, err := h.service.Continue3DS(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

// HandleStatus queries the gateway-side transaction state
// POST /api/v1/payments/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req payment.StatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	outcome, err := h.service.Status(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

// HandleCancel voids a payment before capture
// POST /api/v1/payments/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	var req payment.CancelRequest
	if !h.decode(w, r, &req) {
		return
	}

	outcome, err := h.service.Cancel(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

// HandleRevoke refunds a captured payment
// POST /api/v1/payments/revoke
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	var req payment.RevokeRequest
	if !h.decode(w, r, &req) {
		return
	}

	outcome, err := h.service.Revoke(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

// HandlePaymentState returns the lifecycle state replayed from the ledger
// GET /api/v1/payments/{paymentID}/state
func (h *Handler) HandlePaymentState(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	state, err := h.service.PaymentState(r.Context(), paymentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"payment_id": paymentID,
		"state":      state,
		"terminal":   state.Terminal(),
	})
}

// HandleOrderTrail returns the audit trail for an order
// GET /api/v1/orders/{orderID}/records
func (h *Handler) HandleOrderTrail(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	records, err := h.service.OrderTrail(r.Context(), orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"order_id": orderID,
		"records":  records,
	})
}

// outcomeResponse is the JSON shape of a normalized gateway outcome
type outcomeResponse struct {
	Outcome           string            `json:"outcome"`
	PaymentID         string            `json:"payment_id,omitempty"`
	RedirectURL       string            `json:"redirect_url,omitempty"`
	RequiresChallenge bool              `json:"requires_challenge,omitempty"`
	ErrorCode         string            `json:"error_code,omitempty"`
	ErrorDescription  string            `json:"error_description,omitempty"`
	Fields            map[string]string `json:"fields,omitempty"`
}

func (h *Handler) writeOutcome(w http.ResponseWriter, outcome *domain.Outcome) {
	resp := outcomeResponse{Outcome: string(outcome.Kind)}
	httpStatus := http.StatusOK

	switch outcome.Kind {
	case domain.OutcomeApproved:
		resp.PaymentID = outcome.Response.PaymentID()
		resp.RedirectURL = outcome.Response.RedirectURL()
		resp.RequiresChallenge = outcome.Response.RequiresChallenge()
		resp.Fields = outcome.Response.Fields

	case domain.OutcomeDeclined:
		// A decline is a complete, successful exchange with the gateway
		resp.ErrorCode = outcome.ErrorCode
		resp.ErrorDescription = outcome.ErrorDescription
		resp.Fields = outcome.Response.Fields

	case domain.OutcomeTransportFailed, domain.OutcomeMalformedResponse:
		httpStatus = http.StatusBadGateway
		if outcome.Err != nil {
			resp.ErrorDescription = outcome.Err.Error()
		}
	}

	h.writeJSON(w, httpStatus, resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", err))
		return false
	}
	return true
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	body := errorBody{
		Code:    string(domain.ErrorCodeInternalError),
		Message: "internal error",
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		body.Code = string(domainErr.Code)
		body.Message = domainErr.Message
		if len(domainErr.Details) > 0 {
			body.Details = domainErr.Details
		}
	}

	httpStatus := http.StatusInternalServerError
	switch {
	case domain.IsValidationError(err):
		httpStatus = http.StatusBadRequest
	case domain.IsDomainError(err, domain.ErrorCodeOrderNotFound):
		httpStatus = http.StatusNotFound
	default:
		h.logger.Error("request failed", zap.Error(err))
	}

	h.writeJSON(w, httpStatus, errorResponse{Error: body})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
