package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lembretes/pix-service/internal/config"
	"github.com/lembretes/pix-service/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvSecretManager(t *testing.T) {
	t.Setenv("EFI_CLIENT_SECRET", "super-secret")

	m := NewEnvSecretManager()
	secret, err := m.GetSecret(context.Background(), "EFI_CLIENT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "super-secret", secret.Value)

	_, err = m.GetSecret(context.Background(), "DOES_NOT_EXIST")
	assert.Error(t, err)
}

func TestLocalSecretManager_PlainText(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "EFI_CLIENT_SECRET"), []byte("file-secret\n"), 0600))

	m := NewLocalSecretManager(dir, mocks.NewMockLogger())
	secret, err := m.GetSecret(context.Background(), "EFI_CLIENT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "file-secret", secret.Value)
}

func TestLocalSecretManager_JSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "EFI_CERT_PASSPHRASE"),
		[]byte(`{"value":"json-secret","version":"3"}`), 0600))

	m := NewLocalSecretManager(dir, mocks.NewMockLogger())
	secret, err := m.GetSecret(context.Background(), "EFI_CERT_PASSPHRASE")
	require.NoError(t, err)
	assert.Equal(t, "json-secret", secret.Value)
	assert.Equal(t, "3", secret.Version)
}

func TestLocalSecretManager_NotFound(t *testing.T) {
	m := NewLocalSecretManager(t.TempDir(), mocks.NewMockLogger())
	_, err := m.GetSecret(context.Background(), "MISSING")
	assert.ErrorContains(t, err, "secret not found")
}

func TestNewFromConfig_UnknownBackend(t *testing.T) {
	_, err := NewFromConfig(context.Background(), &config.SecretsConfig{Backend: "consul"}, mocks.NewMockLogger())
	assert.ErrorContains(t, err, "unsupported secrets backend")
}
