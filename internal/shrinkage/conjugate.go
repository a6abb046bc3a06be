// Package shrinkage implements the empirical Bayes engine: conjugate
// Beta-binomial updates, the covariate-aware beta-binomial regression prior,
// and posterior evaluation for players inside and outside the training set.
package shrinkage

import (
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

// Update applies the conjugate Beta-binomial update to a single record.
// This is the shared primitive behind both the global and the personalized
// shrinkage paths: the prior's shape parameters move by the observed
// makes and misses.
func Update(record *models.PlayerShotRecord, priorAlpha, priorBeta float64) (models.ConjugatePosterior, error) {
	if err := record.Validate(); err != nil {
		return models.ConjugatePosterior{}, err
	}

	return models.ConjugatePosterior{
		Alpha: priorAlpha + float64(record.Made),
		Beta:  priorBeta + float64(record.Missed()),
	}, nil
}

// ShrinkToGlobal computes the posterior for a record under the shared
// league-wide prior.
func ShrinkToGlobal(record *models.PlayerShotRecord, prior models.GlobalPrior) (models.ConjugatePosterior, error) {
	if !prior.Valid() {
		return models.ConjugatePosterior{}, models.ErrInvalidInput
	}
	return Update(record, prior.Alpha, prior.Beta)
}
