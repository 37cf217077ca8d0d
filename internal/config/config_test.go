package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("FREEDOMPAY_MERCHANT_ID", "548856")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "v2", cfg.Gateway.Version)
	assert.Equal(t, 30, cfg.Gateway.Timeout)
	assert.Equal(t, "env", cfg.Secrets.Backend)
	assert.Equal(t, "FREEDOMPAY_SECRET", cfg.Gateway.SecretRef)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
}

func TestLoadFromEnv_MissingMerchantID(t *testing.T) {
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("FREEDOMPAY_MERCHANT_ID", "")

	_, err := LoadFromEnv()
	assert.ErrorContains(t, err, "FREEDOMPAY_MERCHANT_ID")
}

func TestLoadFromEnv_MissingDBPassword(t *testing.T) {
	t.Setenv("FREEDOMPAY_MERCHANT_ID", "548856")
	t.Setenv("DB_PASSWORD", "")

	_, err := LoadFromEnv()
	assert.ErrorContains(t, err, "DB_PASSWORD")
}

func TestLoadFromEnv_InvalidProtocolVersion(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FREEDOMPAY_PROTOCOL_VERSION", "v3")

	_, err := LoadFromEnv()
	assert.ErrorContains(t, err, "FREEDOMPAY_PROTOCOL_VERSION")
}

func TestLoadFromEnv_VaultBackendRequiresAddr(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SECRETS_BACKEND", "vault")
	t.Setenv("VAULT_ADDR", "")

	_, err := LoadFromEnv()
	assert.ErrorContains(t, err, "VAULT_ADDR")

	t.Setenv("VAULT_ADDR", "http://127.0.0.1:8200")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "vault", cfg.Secrets.Backend)
}

func TestConnectionString(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: 5433, User: "svc", Password: "pw",
		Database: "freedompay", SSLMode: "require",
	}
	assert.Equal(t,
		"host=db port=5433 user=svc password=pw dbname=freedompay sslmode=require",
		c.ConnectionString())
}
