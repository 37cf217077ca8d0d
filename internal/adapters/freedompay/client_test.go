package freedompay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/projetto/freedompay-service/internal/domain"
)

func testConfig(baseURL string) Config {
	return Config{
		MerchantID: "548856",
		Secret:     "lU86k8y7lBrdj0E6",
		Version:    ProtocolV2,
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(testConfig(baseURL), zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClientValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing merchant id", func(c *Config) { c.MerchantID = "" }},
		{"missing secret", func(c *Config) { c.Secret = "" }},
		{"bad version", func(c *Config) { c.Version = "v9" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("http://example.invalid")
			tt.mutate(&cfg)
			_, err := NewClient(cfg, zap.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestPrepare(t *testing.T) {
	c := newTestClient(t, "https://gw.example.test")

	req, err := c.Prepare(domain.OperationPayment, map[string]string{
		"pg_order_id": "1244",
		"pg_amount":   "250",
		"pg_currency": "KZT",
	})
	require.NoError(t, err)

	assert.Equal(t, "init_payment.php", req.ScriptName)
	assert.Equal(t, "https://gw.example.test/init_payment.php", req.URL)
	assert.Equal(t, "548856", req.Fields["pg_merchant_id"])
	assert.Len(t, req.Fields["pg_salt"], 16)

	ok, err := Verify(req.ScriptName, req.Fields, "lU86k8y7lBrdj0E6", EncodingUTF8)
	require.NoError(t, err)
	assert.True(t, ok, "prepared request must carry a verifiable signature")
}

func TestPrepareFreshSaltPerRequest(t *testing.T) {
	c := newTestClient(t, "https://gw.example.test")

	req1, err := c.Prepare(domain.OperationStatus, map[string]string{"pg_payment_id": "12345"})
	require.NoError(t, err)
	req2, err := c.Prepare(domain.OperationStatus, map[string]string{"pg_payment_id": "12345"})
	require.NoError(t, err)

	assert.NotEqual(t, req1.Fields["pg_salt"], req2.Fields["pg_salt"])
	assert.NotEqual(t, req1.Fields["pg_sig"], req2.Fields["pg_sig"])
}

func TestPrepareScriptOverride(t *testing.T) {
	cfg := testConfig("https://gw.example.test")
	cfg.Scripts = map[domain.Operation]string{domain.OperationPayment: "init_payment_v2.php"}
	c, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)

	req, err := c.Prepare(domain.OperationPayment, nil)
	require.NoError(t, err)
	assert.Equal(t, "init_payment_v2.php", req.ScriptName)
}

func TestSendParsesEnvelope(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<response>
	<pg_status>ok</pg_status>
	<pg_payment_id>12345</pg_payment_id>
	<pg_redirect_url>https://acs.example.test/3ds</pg_redirect_url>
	<pg_brand_new_field>tolerated</pg_brand_new_field>
	<pg_salt>abcdefgh12345678</pg_salt>
</response>`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	req, err := c.Prepare(domain.OperationPayment, map[string]string{"pg_order_id": "1244", "pg_amount": "250"})
	require.NoError(t, err)

	resp, err := c.Send(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.IsOK())
	assert.Equal(t, "12345", resp.PaymentID())
	assert.True(t, resp.RequiresChallenge())
	assert.Equal(t, "tolerated", resp.Get("pg_brand_new_field"), "unknown fields are kept")

	// The form body carried the signed field set
	assert.Equal(t, "548856", gotForm.Get("pg_merchant_id"))
	assert.NotEmpty(t, gotForm.Get("pg_salt"))
	assert.NotEmpty(t, gotForm.Get("pg_sig"))
	assert.Equal(t, "250", gotForm.Get("pg_amount"))
}

func TestSendDeclinedIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<response><pg_status>error</pg_status><pg_error_code>101</pg_error_code><pg_error_description>Incorrect merchant</pg_error_description></response>`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	req, err := c.Prepare(domain.OperationCancel, map[string]string{"pg_payment_id": "12345"})
	require.NoError(t, err)

	resp, err := c.Send(context.Background(), req)
	require.NoError(t, err, "a well-formed rejection is a response, not a transport error")
	assert.False(t, resp.IsOK())
	assert.Equal(t, "101", resp.ErrorCode())
	assert.Equal(t, "Incorrect merchant", resp.ErrorDescription())
}

func TestSendMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not xml", "Fatal error: something broke"},
		{"wrong root", "<error>nope</error>"},
		{"missing pg_status", "<response><pg_payment_id>1</pg_payment_id></response>"},
		{"truncated", "<response><pg_status>ok"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			req, err := c.Prepare(domain.OperationStatus, map[string]string{"pg_payment_id": "12345"})
			require.NoError(t, err)

			_, err = c.Send(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, domain.ErrorCodeGatewayMalformed, domain.GetErrorCode(err))
		})
	}
}

func TestSendTransportFailure(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // nothing listens anymore

		c := newTestClient(t, srv.URL)
		req, err := c.Prepare(domain.OperationStatus, map[string]string{"pg_payment_id": "12345"})
		require.NoError(t, err)

		_, err = c.Send(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeGatewayTransport, domain.GetErrorCode(err))
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.Timeout = 50 * time.Millisecond
		c, err := NewClient(cfg, zap.NewNop())
		require.NoError(t, err)

		req, err := c.Prepare(domain.OperationStatus, map[string]string{"pg_payment_id": "12345"})
		require.NoError(t, err)

		_, err = c.Send(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeGatewayTransport, domain.GetErrorCode(err))
	})
}

func TestParseEnvelopeNestedElements(t *testing.T) {
	// Status snapshots can nest sub-records; depth-one children are kept,
	// deeper structure is flattened into the parent value.
	fields, err := parseEnvelope([]byte(`<response><pg_status>ok</pg_status><pg_revoked_payments><item>1</item></pg_revoked_payments></response>`))
	require.NoError(t, err)
	assert.Equal(t, "ok", fields["pg_status"])
	assert.Contains(t, fields, "pg_revoked_payments")
}
