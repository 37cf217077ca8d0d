package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gateway  GatewayConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// GatewayConfig holds FreedomPay gateway configuration
type GatewayConfig struct {
	MerchantID string
	// SecretRef names the shared secret in the configured secret backend
	SecretRef string
	// Version selects the wire protocol: v1 (legacy paybox.money,
	// latin-1 signing) or v2 (freedompay.kz, utf-8 signing)
	Version string
	// BaseURL overrides the version's default host when set
	BaseURL      string
	Timeout      int // seconds
	TestingMode  bool
	CheckScript  string
	ResultScript string
}

// SecretsConfig selects and configures the secret backend
type SecretsConfig struct {
	// Backend is one of: env, aws, vault
	Backend string

	AWSRegion   string
	AWSProfile  string
	AWSEndpoint string

	VaultAddr  string
	VaultToken string
	VaultMount string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "freedompay_service"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Gateway: GatewayConfig{
			MerchantID:   getEnv("FREEDOMPAY_MERCHANT_ID", ""),
			SecretRef:    getEnv("FREEDOMPAY_SECRET_REF", "FREEDOMPAY_SECRET"),
			Version:      getEnv("FREEDOMPAY_PROTOCOL_VERSION", "v2"),
			BaseURL:      getEnv("FREEDOMPAY_BASE_URL", ""),
			Timeout:      getEnvAsInt("FREEDOMPAY_TIMEOUT", 30),
			TestingMode:  getEnvAsBool("FREEDOMPAY_TESTING_MODE", false),
			CheckScript:  getEnv("FREEDOMPAY_CHECK_SCRIPT", ""),
			ResultScript: getEnv("FREEDOMPAY_RESULT_SCRIPT", ""),
		},
		Secrets: SecretsConfig{
			Backend:     getEnv("SECRETS_BACKEND", "env"),
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
			AWSProfile:  getEnv("AWS_PROFILE", ""),
			AWSEndpoint: getEnv("AWS_ENDPOINT_URL", ""),
			VaultAddr:   getEnv("VAULT_ADDR", ""),
			VaultToken:  getEnv("VAULT_TOKEN", ""),
			VaultMount:  getEnv("VAULT_MOUNT", "secret"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Gateway.MerchantID == "" {
		return nil, fmt.Errorf("FREEDOMPAY_MERCHANT_ID is required")
	}
	if cfg.Gateway.Version != "v1" && cfg.Gateway.Version != "v2" {
		return nil, fmt.Errorf("FREEDOMPAY_PROTOCOL_VERSION must be v1 or v2, got %q", cfg.Gateway.Version)
	}
	switch cfg.Secrets.Backend {
	case "env", "aws":
	case "vault":
		if cfg.Secrets.VaultAddr == "" {
			return nil, fmt.Errorf("VAULT_ADDR is required for the vault secrets backend")
		}
	default:
		return nil, fmt.Errorf("SECRETS_BACKEND must be env, aws or vault, got %q", cfg.Secrets.Backend)
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
