package shrinkage

import (
	"fmt"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

// Predict evaluates the fitted model at an unseen player's (attempts, made)
// and returns the full posterior record. The model is only read, never
// refit: the linear predictor is evaluated at the new covariate value, the
// shared dispersion carries over unchanged, and the personalized prior is
// updated by the player's own counts.
func Predict(model *models.RegressionPriorModel, attempts, made int) (*models.PosteriorRecord, error) {
	if attempts <= 0 {
		return nil, fmt.Errorf("attempts must be positive, got %d: %w", attempts, models.ErrInvalidInput)
	}
	if made < 0 || made > attempts {
		return nil, fmt.Errorf("made %d out of range for %d attempts: %w", made, attempts, models.ErrInvalidInput)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	prior, err := PersonalPrior(model, attempts)
	if err != nil {
		return nil, err
	}

	record := &models.PlayerShotRecord{Attempts: attempts, Made: made}
	posterior, err := Update(record, prior.Alpha, prior.Beta)
	if err != nil {
		return nil, err
	}

	return &models.PosteriorRecord{
		Attempts:       attempts,
		Made:           made,
		RawPct:         record.RawPct(),
		Mu:             prior.Mu,
		Sigma:          prior.Sigma,
		PriorAlpha:     prior.Alpha,
		PriorBeta:      prior.Beta,
		PosteriorAlpha: posterior.Alpha,
		PosteriorBeta:  posterior.Beta,
		PosteriorMean:  posterior.Mean(),
		PosteriorSD:    posterior.SD(),
	}, nil
}
