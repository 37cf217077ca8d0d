package secrets

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// VaultConfig configures the Vault KV v2 adapter
type VaultConfig struct {
	Address string
	Token   string
	// MountPath is the KV v2 mount, "secret" by default
	MountPath string
}

// VaultSecretManager implements ports.SecretManager on Vault KV v2.
// Secret names are paths within the mount; the value is read from the
// conventional "value" key of the secret data.
type VaultSecretManager struct {
	client *vault.Client
	mount  string
	logger *zap.Logger
}

// NewVaultSecretManager creates a Vault adapter
func NewVaultSecretManager(cfg VaultConfig, logger *zap.Logger) (*VaultSecretManager, error) {
	vaultCfg := vault.DefaultConfig()
	if cfg.Address != "" {
		vaultCfg.Address = cfg.Address
	}

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}

	mount := cfg.MountPath
	if mount == "" {
		mount = "secret"
	}

	return &VaultSecretManager{
		client: client,
		mount:  mount,
		logger: logger,
	}, nil
}

// GetSecret reads a secret value from Vault
func (m *VaultSecretManager) GetSecret(ctx context.Context, name string) (string, error) {
	secret, err := m.client.KVv2(m.mount).Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("read vault secret %q: %w", name, err)
	}

	value, ok := secret.Data["value"].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("vault secret %q has no \"value\" key", name)
	}

	m.logger.Debug("secret fetched from Vault", zap.String("name", name))
	return value, nil
}
