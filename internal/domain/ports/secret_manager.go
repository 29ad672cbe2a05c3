package ports

import "context"

// Secret is a resolved secret value with its backend version.
type Secret struct {
	Value   string
	Version string
}

// SecretManager resolves sensitive configuration (PSP client secret,
// certificate passphrase) from a secrets backend. Implementations exist for
// local files, HashiCorp Vault and AWS Secrets Manager.
type SecretManager interface {
	GetSecret(ctx context.Context, name string) (*Secret, error)
}
