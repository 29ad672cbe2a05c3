package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/lembretes/pix-service/internal/config"
	"github.com/lembretes/pix-service/internal/domain/ports"
)

// awsSecretManager resolves secrets from AWS Secrets Manager. Secret names
// are namespaced under a prefix, e.g. "pix-service/EFI_CLIENT_SECRET".
type awsSecretManager struct {
	client *secretsmanager.Client
	prefix string
	logger ports.Logger
}

// NewAWSSecretManager creates an AWS Secrets Manager backed secret manager
// using the default credentials chain.
func NewAWSSecretManager(ctx context.Context, cfg *config.SecretsConfig, logger ports.Logger) (ports.SecretManager, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("AWS secret manager initialized",
		ports.String("region", cfg.AWSRegion),
		ports.String("prefix", cfg.AWSPrefix),
	)

	return &awsSecretManager{
		client: secretsmanager.NewFromConfig(awsCfg),
		prefix: cfg.AWSPrefix,
		logger: logger,
	}, nil
}

func (m *awsSecretManager) GetSecret(ctx context.Context, name string) (*ports.Secret, error) {
	secretID := name
	if m.prefix != "" {
		secretID = m.prefix + "/" + name
	}

	m.logger.Debug("reading secret from AWS Secrets Manager", ports.String("name", name))

	result, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", secretID, err)
	}

	return &ports.Secret{
		Value:   aws.ToString(result.SecretString),
		Version: aws.ToString(result.VersionId),
	}, nil
}
