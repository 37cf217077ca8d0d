package ports

import "context"

// SecretManager retrieves secrets by name. The gateway shared secret is
// fetched through this interface at startup; it is never compiled in or
// read from ambient globals.
type SecretManager interface {
	GetSecret(ctx context.Context, name string) (string, error)
}
