package ports

import (
	"context"

	"github.com/kevin07696/payment-gateway/internal/domain/models"
)

// DisagreementRepository persists shadow-metrics samples. Append-only.
type DisagreementRepository interface {
	Save(ctx context.Context, disagreement *models.ModelDisagreement) error
	CountByType(ctx context.Context, disagreementType models.DisagreementType) (int64, error)
	Count(ctx context.Context) (int64, error)
}
