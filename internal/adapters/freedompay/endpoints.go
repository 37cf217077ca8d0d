package freedompay

import (
	"fmt"
	"strings"
	"time"

	"github.com/projetto/freedompay-service/internal/domain"
)

// ProtocolVersion selects the endpoint host, script set and signing
// encoding. Two incompatible wire protocols exist across gateway API
// generations; everything version-dependent hangs off this value instead
// of duplicating client code per version.
type ProtocolVersion string

const (
	// ProtocolV1 is the legacy paybox.money API (latin-1 signing)
	ProtocolV1 ProtocolVersion = "v1"
	// ProtocolV2 is the current freedompay.kz API (utf-8 signing)
	ProtocolV2 ProtocolVersion = "v2"
)

// SigningEncoding returns the byte encoding the version hashes over
func (v ProtocolVersion) SigningEncoding() SigningEncoding {
	if v == ProtocolV1 {
		return EncodingLatin1
	}
	return EncodingUTF8
}

// DefaultBaseURL returns the API host observed for the version
func (v ProtocolVersion) DefaultBaseURL() string {
	if v == ProtocolV1 {
		return "https://api.paybox.money"
	}
	return "https://api.freedompay.kz"
}

// defaultScripts maps outbound operations to their gateway script names.
// Base URL and script names are configuration, not constants; these are
// only the defaults for a plain deployment.
var defaultScripts = map[domain.Operation]string{
	domain.OperationPayment:     "init_payment.php",
	domain.OperationPayment3DS:  "finish_3ds.php",
	domain.OperationStatus:      "get_status.php",
	domain.OperationCancel:      "cancel.php",
	domain.OperationRevoke:      "revoke.php",
}

// Config holds the gateway client configuration. Merchant identity and the
// shared secret are injected here at construction; nothing reads them from
// ambient state.
type Config struct {
	MerchantID string
	Secret     string
	Version    ProtocolVersion

	// BaseURL overrides the version default when set
	BaseURL string
	// Scripts overrides individual script names when set
	Scripts map[domain.Operation]string

	Timeout time.Duration
	// TestingMode asks the gateway to process payments in its sandbox mode
	TestingMode bool
}

// Validate checks that the configuration can produce signable requests
func (c *Config) Validate() error {
	if c.MerchantID == "" {
		return fmt.Errorf("merchant id is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("gateway secret is required")
	}
	if c.Version != ProtocolV1 && c.Version != ProtocolV2 {
		return fmt.Errorf("unknown protocol version: %q", c.Version)
	}
	return nil
}

func (c *Config) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return c.Version.DefaultBaseURL()
}

func (c *Config) scriptFor(op domain.Operation) (string, error) {
	if s, ok := c.Scripts[op]; ok && s != "" {
		return s, nil
	}
	if s, ok := defaultScripts[op]; ok {
		return s, nil
	}
	return "", fmt.Errorf("no gateway script for operation %q", op)
}

func (c *Config) urlFor(script string) string {
	return c.baseURL() + "/" + script
}
