// Package secrets provides SecretManager adapters. The env adapter serves
// local development; AWS Secrets Manager and Vault serve deployments.
package secrets

import (
	"context"
	"os"

	"github.com/projetto/freedompay-service/internal/domain"
)

// EnvSecretManager resolves secrets from environment variables. Intended
// for development only; production deployments use the AWS or Vault
// adapters so the gateway secret never lands in process environment dumps.
type EnvSecretManager struct{}

// NewEnvSecretManager creates an environment-variable secret manager
func NewEnvSecretManager() *EnvSecretManager {
	return &EnvSecretManager{}
}

// GetSecret reads the named environment variable
func (m *EnvSecretManager) GetSecret(_ context.Context, name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", domain.NewDomainError(domain.ErrorCodeSecretError, "secret not found").WithDetail("name", name)
	}
	return value, nil
}
