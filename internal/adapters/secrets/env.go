package secrets

import (
	"context"
	"fmt"
	"os"

	"github.com/lembretes/pix-service/internal/domain/ports"
)

// envSecretManager resolves secrets straight from environment variables.
// The default backend: the credentials already arrived in the process
// environment and no external secrets infrastructure is involved.
type envSecretManager struct{}

// NewEnvSecretManager creates an environment-variable secret manager.
func NewEnvSecretManager() ports.SecretManager {
	return &envSecretManager{}
}

func (m *envSecretManager) GetSecret(ctx context.Context, name string) (*ports.Secret, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return nil, fmt.Errorf("secret not found in environment: %s", name)
	}
	return &ports.Secret{Value: value, Version: "env"}, nil
}
