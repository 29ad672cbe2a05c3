package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	vault "github.com/hashicorp/vault/api"
	"github.com/lembretes/pix-service/internal/config"
	"github.com/lembretes/pix-service/internal/domain/ports"
)

// vaultSecretManager resolves secrets from a HashiCorp Vault KV v2 engine
// using token auth. Each secret lives at <mount>/data/<name> with the
// value under the "value" key.
type vaultSecretManager struct {
	client    *vault.Client
	mountPath string
	logger    ports.Logger
}

// NewVaultSecretManager creates a Vault-backed secret manager.
func NewVaultSecretManager(cfg *config.SecretsConfig, logger ports.Logger) (ports.SecretManager, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.VaultAddr

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	if cfg.VaultToken == "" {
		return nil, fmt.Errorf("VAULT_TOKEN is required for the vault secrets backend")
	}
	client.SetToken(cfg.VaultToken)

	logger.Info("vault secret manager initialized",
		ports.String("address", cfg.VaultAddr),
		ports.String("mount_path", cfg.VaultMountPath),
	)

	return &vaultSecretManager{
		client:    client,
		mountPath: cfg.VaultMountPath,
		logger:    logger,
	}, nil
}

func (m *vaultSecretManager) GetSecret(ctx context.Context, name string) (*ports.Secret, error) {
	fullPath := fmt.Sprintf("%s/data/%s", m.mountPath, name)

	m.logger.Debug("reading secret from vault", ports.String("name", name))

	secret, err := m.client.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from vault: %w", err)
	}
	if secret == nil {
		return nil, fmt.Errorf("secret not found: %s", name)
	}

	// KV v2 wraps the payload in a "data" field.
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected secret format for %s", name)
	}
	value, ok := data["value"].(string)
	if !ok {
		return nil, fmt.Errorf("secret %s has no \"value\" field", name)
	}

	version := ""
	if metadata, ok := secret.Data["metadata"].(map[string]interface{}); ok {
		if v, ok := metadata["version"].(json.Number); ok {
			version = v.String()
		}
	}

	return &ports.Secret{Value: value, Version: version}, nil
}
