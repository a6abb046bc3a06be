package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

// PlayerSeasonRepository defines the interface for season shooting data access
type PlayerSeasonRepository interface {
	Upsert(ctx context.Context, record *models.PlayerShotRecord) error
	UpsertBatch(ctx context.Context, records []*models.PlayerShotRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PlayerShotRecord, error)
	GetByPlayerAndSeason(ctx context.Context, player, season string) (*models.PlayerShotRecord, error)
	GetBySeason(ctx context.Context, season string) ([]*models.PlayerShotRecord, error)
	CountBySeason(ctx context.Context, season string) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ModelRepository defines the interface for fitted regression model access
type ModelRepository interface {
	Create(ctx context.Context, model *models.RegressionPriorModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RegressionPriorModel, error)
	GetLatestBySeason(ctx context.Context, season string) (*models.RegressionPriorModel, error)
	ListBySeason(ctx context.Context, season string, limit int) ([]*models.RegressionPriorModel, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EstimateRepository defines the interface for posterior estimate access
type EstimateRepository interface {
	InsertBatch(ctx context.Context, modelID uuid.UUID, estimates []*models.PosteriorEstimate) error
	GetByModelID(ctx context.Context, modelID uuid.UUID) ([]*models.PosteriorEstimate, error)
	GetTopByModelID(ctx context.Context, modelID uuid.UUID, limit int) ([]*models.PosteriorEstimate, error)
	DeleteByModelID(ctx context.Context, modelID uuid.UUID) error
}
