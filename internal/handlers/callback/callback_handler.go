package callback

import (
	"context"
	"encoding/xml"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/projetto/freedompay-service/internal/adapters/freedompay"
	"github.com/projetto/freedompay-service/internal/domain"
	"github.com/projetto/freedompay-service/internal/domain/ports"
	"github.com/projetto/freedompay-service/pkg/observability"
)

const (
	// Default signing namespaces for the two inbound endpoints. The
	// gateway signs callbacks with the script name it was configured to
	// call, so these are overridable.
	DefaultCheckScript  = "check"
	DefaultResultScript = "result"

	descriptionAllowed    = "Платеж разрешен"
	descriptionNotAllowed = "Платеж не разрешен"

	statusRejected = "rejected"
	statusError    = "error"
)

// Policy decides whether a verified callback may be answered with ok.
// Business rules (stock checks, fraud screening) plug in here. It runs
// only after the signature check passed: an unverified payload never
// reaches a policy.
type Policy interface {
	Allow(ctx context.Context, op domain.Operation, fields map[string]string) error
}

// AllowAll accepts every verified callback
type AllowAll struct{}

func (AllowAll) Allow(context.Context, domain.Operation, map[string]string) error { return nil }

// Handler serves the gateway's check and result webhooks. Every inbound
// payload is journaled with its verification outcome; only payloads with
// a valid signature can advance a payment or reach the policy.
type Handler struct {
	ledger ports.Ledger
	policy Policy
	logger *zap.Logger

	secret       string
	encoding     freedompay.SigningEncoding
	version      freedompay.ProtocolVersion
	checkScript  string
	resultScript string
}

// Config holds the callback verification settings
type Config struct {
	Secret       string
	Version      freedompay.ProtocolVersion
	CheckScript  string
	ResultScript string
}

// NewHandler creates a new callback handler
func NewHandler(cfg Config, ledger ports.Ledger, policy Policy, logger *zap.Logger) *Handler {
	if cfg.CheckScript == "" {
		cfg.CheckScript = DefaultCheckScript
	}
	if cfg.ResultScript == "" {
		cfg.ResultScript = DefaultResultScript
	}
	if policy == nil {
		policy = AllowAll{}
	}
	return &Handler{
		ledger:       ledger,
		policy:       policy,
		logger:       logger,
		secret:       cfg.Secret,
		encoding:     cfg.Version.SigningEncoding(),
		version:      cfg.Version,
		checkScript:  cfg.CheckScript,
		resultScript: cfg.ResultScript,
	}
}

// HandleCheck answers the gateway's "may this payment proceed" probe
// POST /callbacks/check
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, domain.OperationInboundCheck, h.checkScript, "check")
}

// HandleResult records the gateway's final settlement report
// POST /callbacks/result
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, domain.OperationInboundResult, h.resultScript, "result")
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, op domain.Operation, script, endpoint string) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.logger.Warn("callback body is not a form",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		observability.ObserveCallback(endpoint, "bad_request")
		h.reply(w, script, http.StatusBadRequest, statusError, "Invalid request")
		return
	}

	fields := formFields(r.PostForm)

	verified, err := freedompay.Verify(script, fields, h.secret, h.encoding)
	if err != nil {
		h.logger.Error("callback signature check failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		observability.ObserveCallback(endpoint, "error")
		h.reply(w, script, http.StatusInternalServerError, statusError, "Verification error")
		return
	}

	// The payload is journaled either way; the flag tells a verified
	// callback apart from a rejected forgery attempt in the audit trail.
	if err := h.journal(ctx, op, script, fields, verified); err != nil {
		// The gateway retries callbacks answered with a non-ok status.
		// Acknowledging a payload we failed to journal would drop it from
		// the audit trail for good.
		h.logger.Error("failed to journal callback",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		observability.ObserveCallback(endpoint, "journal_error")
		h.reply(w, script, http.StatusInternalServerError, statusError, "Processing error")
		return
	}

	if !verified {
		h.logger.Warn("rejected callback with invalid signature",
			zap.String("endpoint", endpoint),
			zap.String("pg_order_id", fields["pg_order_id"]),
			zap.String("pg_payment_id", fields["pg_payment_id"]),
		)
		observability.ObserveCallback(endpoint, "rejected_signature")
		h.reply(w, script, http.StatusForbidden, statusError, "Invalid signature")
		return
	}

	if err := h.policy.Allow(ctx, op, fields); err != nil {
		h.logger.Info("callback rejected by policy",
			zap.String("endpoint", endpoint),
			zap.String("pg_order_id", fields["pg_order_id"]),
			zap.Error(err),
		)
		observability.ObserveCallback(endpoint, "rejected_policy")
		h.reply(w, script, http.StatusOK, statusRejected, descriptionNotAllowed)
		return
	}

	h.logger.Info("callback accepted",
		zap.String("endpoint", endpoint),
		zap.String("pg_order_id", fields["pg_order_id"]),
		zap.String("pg_payment_id", fields["pg_payment_id"]),
		zap.String("pg_result", fields["pg_result"]),
	)
	observability.ObserveCallback(endpoint, "accepted")
	h.reply(w, script, http.StatusOK, domain.StatusOK, descriptionAllowed)
}

func (h *Handler) journal(ctx context.Context, op domain.Operation, script string, fields map[string]string, verified bool) error {
	rec := &domain.GatewayRecord{
		Operation:       op,
		ScriptName:      script,
		ProtocolVersion: string(h.version),
		Fields:          fields,
		SigVerified:     &verified,
	}
	if orderID := fields["pg_order_id"]; orderID != "" {
		rec.OrderID = &orderID
	}

	if _, err := h.ledger.RecordInbound(ctx, rec); err != nil {
		return domain.WrapError(domain.ErrorCodeLedgerError, "journal callback", err)
	}
	observability.ObserveLedgerRecord(string(op), string(domain.DirectionInbound))
	return nil
}

// reply writes the signed XML envelope the gateway expects. The reply is
// signed with the same namespace the inbound payload was verified under.
func (h *Handler) reply(w http.ResponseWriter, script string, httpStatus int, status, description string) {
	fields := map[string]string{
		"pg_status":      status,
		"pg_description": description,
		"pg_salt":        freedompay.NewSalt(),
	}

	sig, err := freedompay.Sign(script, fields, h.secret, h.encoding)
	if err != nil {
		h.logger.Error("failed to sign callback reply", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	fields[freedompay.SigField] = sig

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(httpStatus)
	w.Write(encodeEnvelope(fields))
}

// formFields flattens url.Values to the first value per key, the shape
// the signature canon is defined over
func formFields(values map[string][]string) map[string]string {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}

// encodeEnvelope renders a flat <response> document with elements in
// sorted key order
func encodeEnvelope(fields map[string]string) []byte {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString("<response>")
	for _, k := range keys {
		b.WriteString("<" + k + ">")
		xml.EscapeText(&b, []byte(fields[k]))
		b.WriteString("</" + k + ">")
	}
	b.WriteString("</response>")
	return []byte(b.String())
}
