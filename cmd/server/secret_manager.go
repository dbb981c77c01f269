package main

import (
	"context"

	"github.com/kevin07696/payment-gateway/internal/adapters/secrets"
	"github.com/kevin07696/payment-gateway/internal/config"
	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
)

// resolveDatabaseCredentials overlays credentials from AWS Secrets Manager
// onto the config when a secret ID is configured. Without one, the DB_*
// environment variables stand as-is.
func resolveDatabaseCredentials(ctx context.Context, cfg *config.Config, logger ports.Logger) error {
	if cfg.Secrets.DatabaseSecretID == "" {
		return nil
	}

	manager, err := secrets.NewManager(ctx, cfg.Secrets.Region, cfg.Secrets.Endpoint, logger)
	if err != nil {
		return err
	}

	creds, err := manager.GetDatabaseCredentials(ctx, cfg.Secrets.DatabaseSecretID)
	if err != nil {
		return err
	}

	cfg.Database.User = creds.Username
	cfg.Database.Password = creds.Password
	if creds.Host != "" {
		cfg.Database.Host = creds.Host
	}
	if creds.Port != 0 {
		cfg.Database.Port = creds.Port
	}
	if creds.DBName != "" {
		cfg.Database.Database = creds.DBName
	}

	return nil
}

// noopPublisher stands in when Pub/Sub is disabled (local development, CI)
type noopPublisher struct {
	logger ports.Logger
}

func (p noopPublisher) Publish(_ context.Context, transaction *models.Transaction) error {
	p.logger.Debug("event publishing disabled, dropping event",
		ports.String("transaction_id", transaction.ID),
		ports.String("status", string(transaction.Status)))
	return nil
}
