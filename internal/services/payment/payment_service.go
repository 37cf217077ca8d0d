package payment

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/projetto/freedompay-service/internal/domain"
	"github.com/projetto/freedompay-service/internal/domain/ports"
	"github.com/projetto/freedompay-service/pkg/observability"
)

// Service orchestrates the gateway operations. Each method is a thin
// pipeline: validate input, resolve the order where money moves, journal
// the outbound request, call the gateway, journal the parsed response and
// map it to a normalized outcome.
//
// Invocations are synchronous and independent; concurrent payments for
// the same order are journaled as distinct attempts, never deduplicated.
type Service struct {
	orders  ports.OrderLookup
	ledger  ports.Ledger
	gateway ports.Gateway
	logger  *zap.Logger
}

// NewService creates a new payment service
func NewService(orders ports.OrderLookup, ledger ports.Ledger, gateway ports.Gateway, logger *zap.Logger) *Service {
	return &Service{
		orders:  orders,
		ledger:  ledger,
		gateway: gateway,
		logger:  logger,
	}
}

// Pay initiates a card payment for an order. The transmitted amount always
// equals the order's payable amount; any caller-supplied amount is ignored.
func (s *Service) Pay(ctx context.Context, req *PayRequest) (*domain.Outcome, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(req.Extra)+16)
	for k, v := range req.Extra {
		if !reservedFields[k] {
			fields[k] = v
		}
	}
	fields["pg_order_id"] = order.ID
	fields["pg_amount"] = order.AmountString()
	fields["pg_currency"] = order.Currency
	fields["pg_description"] = req.Description
	fields["pg_card_name"] = req.CardName
	fields["pg_card_pan"] = req.CardPAN
	fields["pg_card_cvc"] = req.CardCVC
	fields["pg_card_month"] = req.CardMonth
	fields["pg_card_year"] = req.CardYear
	fields["pg_auto_clearing"] = boolFlag(req.AutoClearing)
	fields["pg_3ds_challenge"] = boolFlag(req.ThreeDSChallenge)
	fields["pg_testing_mode"] = boolFlag(req.TestingMode)
	if req.ResultURL != "" {
		fields["pg_result_url"] = req.ResultURL
	}
	if req.Param1 != "" {
		fields["pg_param1"] = req.Param1
	}
	if req.Param2 != "" {
		fields["pg_param2"] = req.Param2
	}
	if req.Param3 != "" {
		fields["pg_param3"] = req.Param3
	}

	s.logger.Info("initiating payment",
		zap.String("order_id", order.ID),
		zap.String("amount", order.AmountString()),
		zap.String("currency", order.Currency),
		zap.String("card_pan", MaskPAN(req.CardPAN)),
	)

	return s.execute(ctx, domain.OperationPayment, fields, &order.ID)
}

// Continue3DS resumes a payment after the issuer's 3-D Secure challenge
func (s *Service) Continue3DS(ctx context.Context, req *Continue3DSRequest) (*domain.Outcome, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"pg_payment_id": req.PaymentID,
		"pg_md":         req.MD,
		"pg_pares":      req.PaRes,
	}

	return s.execute(ctx, domain.OperationPayment3DS, fields, nil)
}

// Status queries the full gateway-side transaction snapshot. Every call
// appends a fresh pair of ledger rows; the operation mutates nothing.
func (s *Service) Status(ctx context.Context, req *StatusRequest) (*domain.Outcome, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	fields := make(map[string]string, 2)
	if req.PaymentID != "" {
		fields["pg_payment_id"] = req.PaymentID
	}
	var orderRef *string
	if req.OrderID != "" {
		fields["pg_order_id"] = req.OrderID
		orderRef = &req.OrderID
	}

	return s.execute(ctx, domain.OperationStatus, fields, orderRef)
}

// Cancel voids a payment before capture. A gateway refusal (for example
// when the payment is already captured) is surfaced as Declined, never
// retried.
func (s *Service) Cancel(ctx context.Context, req *CancelRequest) (*domain.Outcome, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	fields := map[string]string{"pg_payment_id": req.PaymentID}

	return s.execute(ctx, domain.OperationCancel, fields, nil)
}

// Revoke refunds a captured payment. The refund ceiling is re-derived from
// the order, mirroring Pay: RefundAmountMinor of zero requests a full
// refund, a positive value a partial one bounded by the order amount.
func (s *Service) Revoke(ctx context.Context, req *RevokeRequest) (*domain.Outcome, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if req.RefundAmountMinor > order.AmountMinor {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationAmount,
			"refund amount exceeds order amount").
			WithDetail("refund_amount_minor", req.RefundAmountMinor).
			WithDetail("order_amount_minor", order.AmountMinor)
	}

	refund := "0"
	if req.RefundAmountMinor > 0 {
		refund = domain.MinorToGatewayAmount(req.RefundAmountMinor)
	}

	fields := map[string]string{
		"pg_payment_id":    req.PaymentID,
		"pg_refund_amount": refund,
	}

	return s.execute(ctx, domain.OperationRevoke, fields, &order.ID)
}

// PaymentState reconstructs the lifecycle state of a gateway payment from
// the ledger trail
func (s *Service) PaymentState(ctx context.Context, paymentID string) (domain.PaymentState, error) {
	if paymentID == "" {
		return domain.PaymentStateUnknown, missingField("payment_id")
	}

	records, err := s.ledger.ListByPaymentID(ctx, paymentID)
	if err != nil {
		return domain.PaymentStateUnknown, domain.WrapError(domain.ErrorCodeLedgerError, "list payment records", err)
	}

	return domain.ReconstructPaymentState(records), nil
}

// OrderTrail returns the full audit trail for an order
func (s *Service) OrderTrail(ctx context.Context, orderID string) ([]domain.GatewayRecord, error) {
	if orderID == "" {
		return nil, missingField("order_id")
	}

	records, err := s.ledger.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeLedgerError, "list order records", err)
	}
	return records, nil
}

// execute runs the shared request pipeline. The outbound record is
// journaled before any bytes are sent: if the gateway call then times out,
// the attempt is still on file for reconciliation via Status.
func (s *Service) execute(ctx context.Context, op domain.Operation, fields map[string]string, orderID *string) (*domain.Outcome, error) {
	start := time.Now()

	req, err := s.gateway.Prepare(op, fields)
	if err != nil {
		return nil, err
	}

	outRec := &domain.GatewayRecord{
		Operation:       op,
		OrderID:         orderID,
		ScriptName:      req.ScriptName,
		ProtocolVersion: req.ProtocolVersion,
		Fields:          sanitizeCardData(req.Fields),
	}
	outID, err := s.ledger.RecordOutbound(ctx, outRec)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeLedgerError, "journal outbound request", err)
	}
	observability.ObserveLedgerRecord(string(op), string(domain.DirectionOutbound))

	resp, err := s.gateway.Send(ctx, req)
	if err != nil {
		kind := domain.OutcomeTransportFailed
		if domain.GetErrorCode(err) == domain.ErrorCodeGatewayMalformed {
			kind = domain.OutcomeMalformedResponse
		}
		observability.ObserveGatewayOperation(string(op), string(kind), time.Since(start))
		s.logger.Warn("gateway operation did not complete",
			zap.String("operation", string(op)),
			zap.String("outcome", string(kind)),
			zap.Error(err),
		)
		return &domain.Outcome{Kind: kind, Err: err, OutboundRecordID: outID}, nil
	}

	inRec := &domain.GatewayRecord{
		Operation:       op,
		OrderID:         orderID,
		ScriptName:      req.ScriptName,
		ProtocolVersion: req.ProtocolVersion,
		Fields:          resp.Fields,
	}
	inID, err := s.ledger.RecordInbound(ctx, inRec)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeLedgerError, "journal gateway response", err)
	}
	observability.ObserveLedgerRecord(string(op), string(domain.DirectionInbound))

	outcome := &domain.Outcome{
		Response:         resp,
		OutboundRecordID: outID,
		InboundRecordID:  &inID,
	}
	if resp.IsOK() {
		outcome.Kind = domain.OutcomeApproved
	} else {
		outcome.Kind = domain.OutcomeDeclined
		outcome.ErrorCode = resp.ErrorCode()
		outcome.ErrorDescription = resp.ErrorDescription()
	}
	observability.ObserveGatewayOperation(string(op), string(outcome.Kind), time.Since(start))

	s.logger.Info("gateway operation completed",
		zap.String("operation", string(op)),
		zap.String("outcome", string(outcome.Kind)),
		zap.String("pg_payment_id", resp.PaymentID()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return outcome, nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// MaskPAN keeps the BIN and last four digits of a card number. Used for
// both log output and the journaled copy of outbound requests: raw card
// data never reaches the ledger.
func MaskPAN(pan string) string {
	if len(pan) < 10 {
		return strings.Repeat("*", len(pan))
	}
	return pan[:6] + strings.Repeat("*", len(pan)-10) + pan[len(pan)-4:]
}

func sanitizeCardData(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	if pan, ok := out["pg_card_pan"]; ok {
		out["pg_card_pan"] = MaskPAN(pan)
	}
	if _, ok := out["pg_card_cvc"]; ok {
		out["pg_card_cvc"] = "***"
	}
	return out
}
