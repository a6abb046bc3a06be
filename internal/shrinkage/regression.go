package shrinkage

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

// FitConfig configures the beta-binomial regression fit
type FitConfig struct {
	MinAttempts   int
	Tolerance     float64
	MaxIterations int
}

// DefaultFitConfig returns the fit settings used when none are configured
func DefaultFitConfig() FitConfig {
	return FitConfig{
		MinAttempts:   1,
		Tolerance:     defaultTolerance,
		MaxIterations: defaultMaxIterations,
	}
}

// FitPriorModel fits the beta-binomial regression of (made, missed) against
// log(attempts) by maximum likelihood and returns the immutable model
// artifact. The dispersion is optimized on the log scale and exponentiated,
// so a successful fit always carries a positive sigma.
//
// Records with attempts below the cutoff must be filtered during ingestion;
// one slipping through here is a programming error and fails the whole fit.
func FitPriorModel(records []*models.PlayerShotRecord, season string, cfg FitConfig, fitter MaximumLikelihoodFitter) (*models.RegressionPriorModel, error) {
	if cfg.MinAttempts < 1 {
		cfg.MinAttempts = 1
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to fit: %w", models.ErrInvalidInput)
	}

	var totalMade, totalAttempts int
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Player, err)
		}
		if r.Attempts < cfg.MinAttempts {
			return nil, fmt.Errorf("record %q has %d attempts, below cutoff %d: %w",
				r.Player, r.Attempts, cfg.MinAttempts, models.ErrDegenerateInput)
		}
		totalMade += r.Made
		totalAttempts += r.Attempts
	}

	if fitter == nil {
		fitter = NewNelderMeadFitter(cfg.Tolerance, cfg.MaxIterations)
	}

	// Start at the pooled rate with a flat slope and a small dispersion.
	pooled := float64(totalMade) / float64(totalAttempts)
	initial := []float64{pooled, 0, math.Log(0.01)}

	result, err := fitter.Maximize(betaBinomialLogLikelihood(records), initial)
	if err != nil {
		return nil, fmt.Errorf("beta-binomial regression fit failed: %w", err)
	}

	model := &models.RegressionPriorModel{
		ID:            uuid.New(),
		Season:        season,
		MuIntercept:   result.Params[0],
		MuSlope:       result.Params[1],
		Sigma:         math.Exp(result.Params[2]),
		MinAttempts:   cfg.MinAttempts,
		LogLikelihood: result.Value,
		Iterations:    result.Iterations,
		RecordCount:   len(records),
		FittedAt:      time.Now().UTC(),
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("fit produced unusable parameters: %w", err)
	}

	// Identity-linked means are not bounded by construction. Re-check every
	// training row against (0, 1) rather than trusting the optimizer's path.
	for _, r := range records {
		if _, err := PersonalPrior(model, r.Attempts); err != nil {
			return nil, fmt.Errorf("fitted mean out of range for %q (%d attempts): %w",
				r.Player, r.Attempts, err)
		}
	}

	return model, nil
}
