package service

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/logger"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/repository"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/shrinkage"
)

func newTestFitLogger() *logger.FitLogger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return logger.NewFitLogger(base)
}

// syntheticSeason builds an overdispersed league with volume-dependent rates,
// mirroring the generator used in the shrinkage package tests.
func syntheticSeason(season string, n int) []*models.PlayerShotRecord {
	records := make([]*models.PlayerShotRecord, 0, n)
	for i := 1; i <= n; i++ {
		attempts := 20 * i
		rate := 0.25 + 0.015*math.Log(float64(attempts))
		sd := math.Sqrt(rate * (1 - rate) / float64(attempts))
		if i%2 == 0 {
			rate += 2 * sd
		} else {
			rate -= 2 * sd
		}
		made := int(math.Round(rate * float64(attempts)))
		r := &models.PlayerShotRecord{
			ID:       uuid.New(),
			Player:   "Player " + string(rune('A'+(i-1)%26)) + string(rune('0'+i/26)),
			Season:   season,
			Attempts: attempts,
			Made:     made,
		}
		r.Pct = r.RawPct()
		records = append(records, r)
	}
	return records
}

func newEstimator(season *MockPlayerSeasonRepository, model *MockModelRepository, estimate *MockEstimateRepository, cfg shrinkage.FitConfig) *EstimatorService {
	repos := &repository.Repositories{
		PlayerSeason: season,
		Model:        model,
		Estimate:     estimate,
	}
	return NewEstimatorService(repos, cfg, models.DefaultGlobalPrior, time.Minute, newTestFitLogger())
}

func TestEstimatorRunFitsAndPersists(t *testing.T) {
	seasonRepo := new(MockPlayerSeasonRepository)
	modelRepo := new(MockModelRepository)
	estimateRepo := new(MockEstimateRepository)

	records := syntheticSeason("2023-24", 30)
	seasonRepo.On("GetBySeason", mock.Anything, "2023-24").Return(records, nil)
	modelRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	estimateRepo.On("InsertBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newEstimator(seasonRepo, modelRepo, estimateRepo, shrinkage.DefaultFitConfig())

	outcome, err := svc.Run(context.Background(), "2023-24")
	require.NoError(t, err)
	require.NotNil(t, outcome.Model)

	assert.Equal(t, "2023-24", outcome.Model.Season)
	assert.Greater(t, outcome.Model.Sigma, 0.0)
	assert.Len(t, outcome.Estimates, 30)
	assert.Zero(t, outcome.Excluded)

	for i := 1; i < len(outcome.Estimates); i++ {
		assert.GreaterOrEqual(t,
			outcome.Estimates[i-1].RegressionMean,
			outcome.Estimates[i].RegressionMean,
			"estimates must be ordered best first",
		)
	}

	seasonRepo.AssertExpectations(t)
	modelRepo.AssertExpectations(t)
	estimateRepo.AssertExpectations(t)
}

func TestEstimatorRunNoRecords(t *testing.T) {
	seasonRepo := new(MockPlayerSeasonRepository)
	seasonRepo.On("GetBySeason", mock.Anything, "1999-00").Return([]*models.PlayerShotRecord{}, nil)

	svc := newEstimator(seasonRepo, new(MockModelRepository), new(MockEstimateRepository), shrinkage.DefaultFitConfig())

	_, err := svc.Run(context.Background(), "1999-00")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEstimatorRunExcludesBelowCutoff(t *testing.T) {
	seasonRepo := new(MockPlayerSeasonRepository)
	modelRepo := new(MockModelRepository)
	estimateRepo := new(MockEstimateRepository)

	records := syntheticSeason("2023-24", 30)
	lowVolume := &models.PlayerShotRecord{
		ID: uuid.New(), Player: "Garbage Time", Season: "2023-24", Attempts: 3, Made: 3,
	}
	lowVolume.Pct = lowVolume.RawPct()
	records = append(records, lowVolume)

	seasonRepo.On("GetBySeason", mock.Anything, "2023-24").Return(records, nil)
	modelRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	estimateRepo.On("InsertBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	cfg := shrinkage.DefaultFitConfig()
	cfg.MinAttempts = 10
	svc := newEstimator(seasonRepo, modelRepo, estimateRepo, cfg)

	outcome, err := svc.Run(context.Background(), "2023-24")
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Excluded)
	assert.Len(t, outcome.Estimates, 30)
	for _, est := range outcome.Estimates {
		assert.NotEqual(t, "Garbage Time", est.Player)
	}
}

func TestEstimatorRunAllBelowCutoff(t *testing.T) {
	seasonRepo := new(MockPlayerSeasonRepository)
	low := &models.PlayerShotRecord{ID: uuid.New(), Player: "Bench", Season: "2023-24", Attempts: 2, Made: 1}
	low.Pct = low.RawPct()
	seasonRepo.On("GetBySeason", mock.Anything, "2023-24").Return([]*models.PlayerShotRecord{low}, nil)

	cfg := shrinkage.DefaultFitConfig()
	cfg.MinAttempts = 50
	svc := newEstimator(seasonRepo, new(MockModelRepository), new(MockEstimateRepository), cfg)

	_, err := svc.Run(context.Background(), "2023-24")
	assert.ErrorIs(t, err, models.ErrDegenerateInput)
}

func TestEstimatorQuery(t *testing.T) {
	modelRepo := new(MockModelRepository)
	fitted := &models.RegressionPriorModel{
		ID:          uuid.New(),
		Season:      "2023-24",
		MuIntercept: 0.30,
		MuSlope:     0.01,
		Sigma:       0.01,
		MinAttempts: 1,
		RecordCount: 300,
		FittedAt:    time.Now().UTC(),
	}
	modelRepo.On("GetLatestBySeason", mock.Anything, "2023-24").Return(fitted, nil)

	svc := newEstimator(new(MockPlayerSeasonRepository), modelRepo, new(MockEstimateRepository), shrinkage.DefaultFitConfig())

	record, err := svc.Query(context.Background(), "2023-24", 100, 40)
	require.NoError(t, err)

	wantMu := 0.30 + 0.01*math.Log(100)
	assert.InDelta(t, wantMu, record.Mu, 1e-12)
	assert.Greater(t, record.PosteriorMean, wantMu, "40/100 should pull the estimate above the prior mean")
	assert.Less(t, record.PosteriorMean, 0.40, "shrinkage should hold the estimate below the raw rate")

	// Second identical query is served from cache
	again, err := svc.Query(context.Background(), "2023-24", 100, 40)
	require.NoError(t, err)
	assert.Equal(t, record, again)
}

func TestEstimatorQueryInvalidInput(t *testing.T) {
	modelRepo := new(MockModelRepository)
	svc := newEstimator(new(MockPlayerSeasonRepository), modelRepo, new(MockEstimateRepository), shrinkage.DefaultFitConfig())

	tests := []struct {
		name     string
		attempts int
		made     int
	}{
		{name: "zero attempts", attempts: 0, made: 0},
		{name: "negative attempts", attempts: -5, made: 0},
		{name: "negative made", attempts: 10, made: -1},
		{name: "made exceeds attempts", attempts: 10, made: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Query(context.Background(), "2023-24", tt.attempts, tt.made)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}

	modelRepo.AssertNotCalled(t, "GetLatestBySeason", mock.Anything, mock.Anything)
}

func TestEstimatorQueryNoModel(t *testing.T) {
	modelRepo := new(MockModelRepository)
	modelRepo.On("GetLatestBySeason", mock.Anything, "1946-47").Return(nil, models.ErrNotFound)

	svc := newEstimator(new(MockPlayerSeasonRepository), modelRepo, new(MockEstimateRepository), shrinkage.DefaultFitConfig())

	_, err := svc.Query(context.Background(), "1946-47", 100, 40)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
