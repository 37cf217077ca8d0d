package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"
)

// AWSConfig configures the AWS Secrets Manager adapter
type AWSConfig struct {
	Region string
	// Profile selects a shared-config profile for local development;
	// leave empty to use the default credentials chain (IAM role)
	Profile string
	// Endpoint overrides the API endpoint (LocalStack testing)
	Endpoint string
	// CacheTTL bounds how long a fetched secret is reused
	CacheTTL time.Duration
}

// AWSSecretManager implements ports.SecretManager on AWS Secrets Manager
// with a small TTL cache so restart-free secret rotation still converges.
type AWSSecretManager struct {
	client *secretsmanager.Client
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]awsCacheEntry
}

type awsCacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewAWSSecretManager creates an AWS Secrets Manager adapter
func NewAWSSecretManager(ctx context.Context, cfg AWSConfig, logger *zap.Logger) (*AWSSecretManager, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := []func(*secretsmanager.Options){}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}

	return &AWSSecretManager{
		client: secretsmanager.NewFromConfig(awsCfg, clientOpts...),
		ttl:    ttl,
		logger: logger,
		cache:  make(map[string]awsCacheEntry),
	}, nil
}

// GetSecret retrieves a secret value by its name or ARN
func (m *AWSSecretManager) GetSecret(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	if entry, ok := m.cache[name]; ok && time.Now().Before(entry.expiresAt) {
		m.mu.Unlock()
		return entry.value, nil
	}
	m.mu.Unlock()

	out, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %q: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %q has no string value", name)
	}

	m.logger.Debug("secret fetched from AWS Secrets Manager", zap.String("name", name))

	m.mu.Lock()
	m.cache[name] = awsCacheEntry{value: *out.SecretString, expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()

	return *out.SecretString, nil
}
