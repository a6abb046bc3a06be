package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/logger"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/metrics"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/repository"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/shrinkage"
)

// FitOutcome bundles everything one estimation run produced
type FitOutcome struct {
	Model     *models.RegressionPriorModel
	Estimates []models.PosteriorEstimate
	Skipped   []string
	Excluded  int
	Duration  time.Duration
}

// EstimatorService orchestrates fitting the regression prior over a stored
// season and answering posterior queries against the fitted model
type EstimatorService struct {
	seasonRepo   repository.PlayerSeasonRepository
	modelRepo    repository.ModelRepository
	estimateRepo repository.EstimateRepository
	fitter       shrinkage.MaximumLikelihoodFitter
	fitCfg       shrinkage.FitConfig
	prior        models.GlobalPrior
	queryCache   *cache.Cache
	log          *logger.FitLogger
}

// NewEstimatorService creates a new estimator service
func NewEstimatorService(
	repos *repository.Repositories,
	fitCfg shrinkage.FitConfig,
	prior models.GlobalPrior,
	cacheTTL time.Duration,
	log *logger.FitLogger,
) *EstimatorService {
	return &EstimatorService{
		seasonRepo:   repos.PlayerSeason,
		modelRepo:    repos.Model,
		estimateRepo: repos.Estimate,
		fitter:       shrinkage.NewNelderMeadFitter(fitCfg.Tolerance, fitCfg.MaxIterations),
		fitCfg:       fitCfg,
		prior:        prior,
		queryCache:   cache.New(cacheTTL, 2*cacheTTL),
		log:          log,
	}
}

// Run fits the prior model over every stored record for the season, builds
// the comparison table, and persists both. Records below the attempt cutoff
// are excluded from training and from the table.
func (s *EstimatorService) Run(ctx context.Context, season string) (*FitOutcome, error) {
	start := time.Now()

	stored, err := s.seasonRepo.GetBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to load season records: %w", err)
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("no records stored for season %s: %w", season, models.ErrNotFound)
	}

	records := make([]*models.PlayerShotRecord, 0, len(stored))
	for _, r := range stored {
		if r.Attempts < s.fitCfg.MinAttempts {
			continue
		}
		records = append(records, r)
	}
	excluded := len(stored) - len(records)
	if len(records) == 0 {
		return nil, fmt.Errorf("every record for season %s is below the %d attempt cutoff: %w",
			season, s.fitCfg.MinAttempts, models.ErrDegenerateInput)
	}

	s.log.LogFitStart(season, len(records), s.fitCfg.MinAttempts)

	model, err := shrinkage.FitPriorModel(records, season, s.fitCfg, s.fitter)
	if err != nil {
		metrics.RecordFit("failure", time.Since(start).Seconds(), 0)
		s.log.LogFitFailure(season, err.Error())
		return nil, err
	}
	s.log.LogFitResult(model.MuIntercept, model.MuSlope, model.Sigma,
		model.LogLikelihood, model.Iterations, float64(time.Since(start).Milliseconds()))

	table, err := shrinkage.BuildEstimates(model, s.prior, records)
	if err != nil {
		metrics.RecordFit("failure", time.Since(start).Seconds(), model.Iterations)
		return nil, fmt.Errorf("failed to build posterior estimates: %w", err)
	}

	sort.SliceStable(table.Estimates, func(i, j int) bool {
		if table.Estimates[i].RegressionMean != table.Estimates[j].RegressionMean {
			return table.Estimates[i].RegressionMean > table.Estimates[j].RegressionMean
		}
		return table.Estimates[i].Player < table.Estimates[j].Player
	})

	if err := s.modelRepo.Create(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to persist fitted model: %w", err)
	}
	estimates := make([]*models.PosteriorEstimate, len(table.Estimates))
	for i := range table.Estimates {
		estimates[i] = &table.Estimates[i]
	}
	if err := s.estimateRepo.InsertBatch(ctx, model.ID, estimates); err != nil {
		return nil, fmt.Errorf("failed to persist posterior estimates: %w", err)
	}

	duration := time.Since(start)
	metrics.RecordFit("success", duration.Seconds(), model.Iterations)
	metrics.RecordModel(season, model.Sigma, model.RecordCount)

	return &FitOutcome{
		Model:     model,
		Estimates: table.Estimates,
		Skipped:   table.Skipped,
		Excluded:  excluded,
		Duration:  duration,
	}, nil
}

// Query answers an ad hoc posterior question against the latest fitted model
// for the season: given this many attempts and makes, what is the shrunk
// estimate? Results are cached per model until the TTL expires.
func (s *EstimatorService) Query(ctx context.Context, season string, attempts, made int) (*models.PosteriorRecord, error) {
	if attempts <= 0 || made < 0 || made > attempts {
		metrics.RecordQuery("invalid")
		return nil, fmt.Errorf("query requires 0 <= made <= attempts with attempts > 0, got %d/%d: %w",
			made, attempts, models.ErrInvalidInput)
	}

	model, err := s.modelRepo.GetLatestBySeason(ctx, season)
	if err != nil {
		metrics.RecordQuery("no_model")
		return nil, fmt.Errorf("no fitted model for season %s: %w", season, err)
	}

	key := fmt.Sprintf("%s:%d:%d", model.ID, attempts, made)
	if cached, found := s.queryCache.Get(key); found {
		record := cached.(*models.PosteriorRecord)
		metrics.RecordQuery("success")
		metrics.RecordQueryCacheHit()
		s.log.LogQuery(attempts, made, record.PosteriorMean, true)
		return record, nil
	}

	record, err := shrinkage.Predict(model, attempts, made)
	if err != nil {
		metrics.RecordQuery("failure")
		return nil, err
	}

	s.queryCache.Set(key, record, cache.DefaultExpiration)
	metrics.RecordQuery("success")
	s.log.LogQuery(attempts, made, record.PosteriorMean, false)

	return record, nil
}
