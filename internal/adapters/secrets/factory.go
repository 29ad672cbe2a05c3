package secrets

import (
	"context"
	"fmt"

	"github.com/lembretes/pix-service/internal/config"
	"github.com/lembretes/pix-service/internal/domain/ports"
)

// NewFromConfig builds the secret manager selected by SECRETS_BACKEND.
func NewFromConfig(ctx context.Context, cfg *config.SecretsConfig, logger ports.Logger) (ports.SecretManager, error) {
	switch cfg.Backend {
	case "env":
		return NewEnvSecretManager(), nil
	case "local":
		return NewLocalSecretManager(cfg.BasePath, logger), nil
	case "vault":
		return NewVaultSecretManager(cfg, logger)
	case "aws":
		return NewAWSSecretManager(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", cfg.Backend)
	}
}
