package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lembretes/pix-service/internal/domain/ports"
)

// localSecretManager reads secrets from files under a base directory.
// Development only; production deployments use Vault or AWS Secrets Manager.
type localSecretManager struct {
	basePath string
	logger   ports.Logger
}

// NewLocalSecretManager creates a filesystem-backed secret manager.
func NewLocalSecretManager(basePath string, logger ports.Logger) ports.SecretManager {
	return &localSecretManager{
		basePath: basePath,
		logger:   logger,
	}
}

// GetSecret reads the secret file. Files may be plain text or a JSON
// document with a "value" field.
func (m *localSecretManager) GetSecret(ctx context.Context, name string) (*ports.Secret, error) {
	filePath := filepath.Join(m.basePath, name)

	m.logger.Debug("reading secret from filesystem", ports.String("name", name))

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("secret not found: %s", name)
		}
		return nil, fmt.Errorf("failed to read secret %s: %w", name, err)
	}

	var secretData struct {
		Value   string `json:"value"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &secretData); err == nil && secretData.Value != "" {
		version := secretData.Version
		if version == "" {
			version = "v1"
		}
		return &ports.Secret{Value: secretData.Value, Version: version}, nil
	}

	return &ports.Secret{
		Value:   strings.TrimRight(string(data), "\n"),
		Version: "v1",
	}, nil
}
