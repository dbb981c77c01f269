package vaultcards

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	vault "github.com/hashicorp/vault/api"

	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
)

// Tokenizer exchanges raw card data for an opaque token backed by Vault KV
// v2. The token is the only card reference the rest of the system ever sees;
// PAN and CVV live exclusively inside Vault.
type Tokenizer struct {
	client    *vault.Client
	mountPath string
	logger    ports.Logger
}

// Config holds Vault connection settings
type Config struct {
	Address   string
	Token     string
	MountPath string
}

// NewTokenizer creates a Vault-backed card tokenizer
func NewTokenizer(cfg Config, logger ports.Logger) (*Tokenizer, error) {
	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = cfg.Address

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	mountPath := cfg.MountPath
	if mountPath == "" {
		mountPath = "secret"
	}

	return &Tokenizer{
		client:    client,
		mountPath: mountPath,
		logger:    logger,
	}, nil
}

// Tokenize stores the card data under a fresh token and returns the token.
// Card expiry fields are kept alongside the PAN so authorization retries can
// rebuild the full card without a second client submission.
func (t *Tokenizer) Tokenize(ctx context.Context, req *ports.TokenizeRequest) (string, error) {
	token := "tok_" + uuid.NewString()

	data := map[string]interface{}{
		"pan":              req.PAN,
		"expiry_month":     req.ExpiryMonth,
		"expiry_year":      req.ExpiryYear,
		"card_holder_name": req.CardHolderName,
		"cvv":              req.CVV,
	}

	if _, err := t.client.KVv2(t.mountPath).Put(ctx, "cards/"+token, data); err != nil {
		t.logger.Error("vault write failed", ports.Err(err))
		return "", domain.ErrVaultError.WithCause(err)
	}

	return token, nil
}
