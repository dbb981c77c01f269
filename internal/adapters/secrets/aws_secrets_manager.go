package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/kevin07696/payment-gateway/internal/domain/ports"
)

// DatabaseCredentials is the JSON shape stored in Secrets Manager for the
// transaction database, matching what RDS-managed rotation writes
type DatabaseCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"dbname"`
}

// Manager fetches startup credentials from AWS Secrets Manager. Fetched once
// at boot; rotation is handled by restarting instances, not by live reload.
type Manager struct {
	client *secretsmanager.Client
	logger ports.Logger
}

// NewManager creates a Secrets Manager client using the default credential
// chain (IAM role in production, shared config locally). A non-empty endpoint
// overrides the service URL for LocalStack testing.
func NewManager(ctx context.Context, region, endpoint string, logger ports.Logger) (*Manager, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &Manager{client: client, logger: logger}, nil
}

// GetDatabaseCredentials fetches and parses the database secret
func (m *Manager) GetDatabaseCredentials(ctx context.Context, secretID string) (*DatabaseCredentials, error) {
	out, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %s: %w", secretID, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", secretID)
	}

	var creds DatabaseCredentials
	if err := json.Unmarshal([]byte(*out.SecretString), &creds); err != nil {
		return nil, fmt.Errorf("parse secret %s: %w", secretID, err)
	}

	m.logger.Info("database credentials loaded from secrets manager",
		ports.String("secret_id", secretID))
	return &creds, nil
}

// GetSecretString fetches a plain string secret (API keys, vault tokens)
func (m *Manager) GetSecretString(ctx context.Context, secretID string) (string, error) {
	out, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", secretID, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretID)
	}
	return *out.SecretString, nil
}
