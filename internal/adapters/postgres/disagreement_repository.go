package postgres

import (
	"context"

	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
)

// DisagreementRepository persists champion/challenger comparison samples.
// Append-only: rows are written by the shadow recorder and read by offline
// analysis plus the stats endpoint.
type DisagreementRepository struct {
	db     ports.DBPort
	logger ports.Logger
}

// NewDisagreementRepository creates a new disagreement repository
func NewDisagreementRepository(db ports.DBPort, logger ports.Logger) *DisagreementRepository {
	return &DisagreementRepository{db: db, logger: logger}
}

// Save inserts one comparison sample
func (r *DisagreementRepository) Save(ctx context.Context, disagreement *models.ModelDisagreement) error {
	query := `
		INSERT INTO model_disagreements (
			transaction_id, champion_score, challenger_score,
			champion_decision, challenger_decision, disagreement_type,
			champion_inference_ms, challenger_inference_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.db.GetDB().QueryRow(ctx, query,
		disagreement.TransactionID,
		disagreement.ChampionScore,
		disagreement.ChallengerScore,
		string(disagreement.ChampionDecision),
		string(disagreement.ChallengerDecision),
		string(disagreement.Type),
		disagreement.ChampionInferenceMs,
		disagreement.ChallengerInferenceMs,
		disagreement.CreatedAt,
	).Scan(&disagreement.ID)
	if err != nil {
		r.logger.Error("failed to insert model disagreement",
			ports.String("transaction_id", disagreement.TransactionID),
			ports.Err(err))
		return domain.ErrDatabaseError
	}

	return nil
}

// CountByType returns the number of samples with the given classification
func (r *DisagreementRepository) CountByType(ctx context.Context, disagreementType models.DisagreementType) (int64, error) {
	var count int64
	err := r.db.GetDB().QueryRow(ctx,
		`SELECT COUNT(*) FROM model_disagreements WHERE disagreement_type = $1`,
		string(disagreementType),
	).Scan(&count)
	if err != nil {
		r.logger.Error("failed to count disagreements by type", ports.Err(err))
		return 0, domain.ErrDatabaseError
	}
	return count, nil
}

// Count returns the total number of persisted samples
func (r *DisagreementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetDB().QueryRow(ctx, `SELECT COUNT(*) FROM model_disagreements`).Scan(&count)
	if err != nil {
		r.logger.Error("failed to count disagreements", ports.Err(err))
		return 0, domain.ErrDatabaseError
	}
	return count, nil
}
