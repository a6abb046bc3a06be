package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

// MockPlayerSeasonRepository mocks the season record repository
type MockPlayerSeasonRepository struct {
	mock.Mock
}

func (m *MockPlayerSeasonRepository) Upsert(ctx context.Context, record *models.PlayerShotRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPlayerSeasonRepository) UpsertBatch(ctx context.Context, records []*models.PlayerShotRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockPlayerSeasonRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlayerShotRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerShotRecord), args.Error(1)
}

func (m *MockPlayerSeasonRepository) GetByPlayerAndSeason(ctx context.Context, player, season string) (*models.PlayerShotRecord, error) {
	args := m.Called(ctx, player, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerShotRecord), args.Error(1)
}

func (m *MockPlayerSeasonRepository) GetBySeason(ctx context.Context, season string) ([]*models.PlayerShotRecord, error) {
	args := m.Called(ctx, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlayerShotRecord), args.Error(1)
}

func (m *MockPlayerSeasonRepository) CountBySeason(ctx context.Context, season string) (int, error) {
	args := m.Called(ctx, season)
	return args.Int(0), args.Error(1)
}

func (m *MockPlayerSeasonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockModelRepository mocks the fitted model repository
type MockModelRepository struct {
	mock.Mock
}

func (m *MockModelRepository) Create(ctx context.Context, model *models.RegressionPriorModel) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RegressionPriorModel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegressionPriorModel), args.Error(1)
}

func (m *MockModelRepository) GetLatestBySeason(ctx context.Context, season string) (*models.RegressionPriorModel, error) {
	args := m.Called(ctx, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegressionPriorModel), args.Error(1)
}

func (m *MockModelRepository) ListBySeason(ctx context.Context, season string, limit int) ([]*models.RegressionPriorModel, error) {
	args := m.Called(ctx, season, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RegressionPriorModel), args.Error(1)
}

func (m *MockModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEstimateRepository mocks the posterior estimate repository
type MockEstimateRepository struct {
	mock.Mock
}

func (m *MockEstimateRepository) InsertBatch(ctx context.Context, modelID uuid.UUID, estimates []*models.PosteriorEstimate) error {
	args := m.Called(ctx, modelID, estimates)
	return args.Error(0)
}

func (m *MockEstimateRepository) GetByModelID(ctx context.Context, modelID uuid.UUID) ([]*models.PosteriorEstimate, error) {
	args := m.Called(ctx, modelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PosteriorEstimate), args.Error(1)
}

func (m *MockEstimateRepository) GetTopByModelID(ctx context.Context, modelID uuid.UUID, limit int) ([]*models.PosteriorEstimate, error) {
	args := m.Called(ctx, modelID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PosteriorEstimate), args.Error(1)
}

func (m *MockEstimateRepository) DeleteByModelID(ctx context.Context, modelID uuid.UUID) error {
	args := m.Called(ctx, modelID)
	return args.Error(0)
}
