package freedompay

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/projetto/freedompay-service/internal/domain"
	"github.com/projetto/freedompay-service/internal/domain/ports"
)

// Client implements ports.Gateway against the FreedomPay/Paybox form+XML
// protocol. It composes per-operation parameter sets, signs them, POSTs
// url-encoded bodies and parses the flat <response> XML envelope.
//
// The client performs no retries. Payment creation is not idempotent on
// the gateway side: re-sending creates a new payment, so retrying is the
// caller's decision, usually after a Status reconciliation.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a gateway client. The configuration is validated once
// here so a misconfigured secret fails startup instead of every request.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gateway config: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}, nil
}

// Prepare merges the caller fields with merchant identity and operation
// defaults, generates a fresh salt and signs the result. The returned
// request is ready to journal and send.
func (c *Client) Prepare(op domain.Operation, fields map[string]string) (*ports.SignedRequest, error) {
	script, err := c.cfg.scriptFor(op)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInternalError, "resolve gateway script", err)
	}

	merged := make(map[string]string, len(fields)+3)
	for k, v := range fields {
		merged[k] = v
	}
	merged["pg_merchant_id"] = c.cfg.MerchantID
	if c.cfg.TestingMode && merged["pg_testing_mode"] == "" {
		merged["pg_testing_mode"] = "1"
	}
	merged[saltField] = NewSalt()

	sig, err := Sign(script, merged, c.cfg.Secret, c.cfg.Version.SigningEncoding())
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeSigEncoding, "sign gateway request", err)
	}
	merged[SigField] = sig

	return &ports.SignedRequest{
		Operation:       op,
		ScriptName:      script,
		URL:             c.cfg.urlFor(script),
		ProtocolVersion: string(c.cfg.Version),
		Fields:          merged,
	}, nil
}

// Send POSTs the signed request and parses the XML envelope. Transport
// failures and unparseable bodies come back as DomainErrors; a well-formed
// rejection (pg_status != ok) is a normal response.
func (c *Client) Send(ctx context.Context, req *ports.SignedRequest) (*domain.GatewayResponse, error) {
	form := url.Values{}
	for k, v := range req.Fields {
		form.Set(k, v)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInternalError, "build gateway request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("gateway request failed",
			zap.String("operation", string(req.Operation)),
			zap.String("script", req.ScriptName),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, domain.WrapError(domain.ErrorCodeGatewayTransport, "send gateway request", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeGatewayTransport, "read gateway response", err)
	}

	fields, err := parseEnvelope(body)
	if err != nil {
		c.logger.Error("malformed gateway response",
			zap.String("operation", string(req.Operation)),
			zap.Int("status_code", httpResp.StatusCode),
			zap.Int("body_length", len(body)),
			zap.Error(err),
		)
		return nil, domain.WrapError(domain.ErrorCodeGatewayMalformed, "parse gateway response", err)
	}

	c.logger.Info("gateway response received",
		zap.String("operation", string(req.Operation)),
		zap.String("script", req.ScriptName),
		zap.String("pg_status", fields["pg_status"]),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &domain.GatewayResponse{Fields: fields, RawXML: body}, nil
}

// parseEnvelope decodes the gateway's flat <response> document into a
// string map. Unknown child elements are captured as-is: the gateway adds
// fields over time and the parser must only fail on malformed XML or a
// missing pg_status.
func parseEnvelope(body []byte) (map[string]string, error) {
	dec := xml.NewDecoder(strings.NewReader(string(body)))

	fields := make(map[string]string)
	var rootSeen bool
	var current string
	var text strings.Builder
	depth := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				if t.Name.Local != "response" {
					return nil, fmt.Errorf("unexpected root element %q", t.Name.Local)
				}
				rootSeen = true
			}
			if depth == 2 {
				current = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if depth >= 2 {
				text.Write(t)
			}
		case xml.EndElement:
			if depth == 2 && current != "" {
				fields[current] = strings.TrimSpace(text.String())
				current = ""
			}
			depth--
		}
	}

	if !rootSeen {
		return nil, fmt.Errorf("no response envelope in body")
	}
	if _, ok := fields["pg_status"]; !ok {
		return nil, fmt.Errorf("response envelope has no pg_status")
	}

	return fields, nil
}
