package shrinkage

import (
	"fmt"
	"math"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

// PersonalPrior evaluates the fitted model at a player's attempt volume and
// converts the (mean, dispersion) pair into Beta shape parameters. The mean
// must land strictly inside (0, 1); the identity link does not guarantee it.
func PersonalPrior(model *models.RegressionPriorModel, attempts int) (models.PersonalizedPrior, error) {
	if attempts <= 0 {
		return models.PersonalizedPrior{}, fmt.Errorf("log(attempts) undefined for %d attempts: %w",
			attempts, models.ErrDegenerateInput)
	}

	mu := linkMu(model.MuIntercept, model.MuSlope, math.Log(float64(attempts)))
	prior := models.PersonalizedPrior{
		Mu:    mu,
		Sigma: model.Sigma,
		Alpha: mu / model.Sigma,
		Beta:  (1 - mu) / model.Sigma,
	}
	if !prior.Valid() {
		return models.PersonalizedPrior{}, fmt.Errorf("mean %.4f outside (0,1): %w", mu, models.ErrDegenerateInput)
	}
	return prior, nil
}

// EstimateTable holds the per-player comparison table plus the records the
// batch skipped as invalid.
type EstimateTable struct {
	Estimates []models.PosteriorEstimate
	Skipped   []string
}

// BuildEstimates computes the full season table: for every record, the raw
// rate, the globally shrunk posterior, and the regression-shrunk posterior
// under that player's personalized prior.
//
// Invalid individual records are skipped and reported, not fatal — unless
// every record is invalid. A degenerate personalized mean aborts the batch:
// there is no meaningful output from a model evaluating outside (0, 1).
func BuildEstimates(model *models.RegressionPriorModel, prior models.GlobalPrior, records []*models.PlayerShotRecord) (*EstimateTable, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}

	table := &EstimateTable{Estimates: make([]models.PosteriorEstimate, 0, len(records))}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			table.Skipped = append(table.Skipped, r.Player)
			continue
		}

		global, err := ShrinkToGlobal(r, prior)
		if err != nil {
			table.Skipped = append(table.Skipped, r.Player)
			continue
		}

		personal, err := PersonalPrior(model, r.Attempts)
		if err != nil {
			return nil, err
		}
		regression, err := Update(r, personal.Alpha, personal.Beta)
		if err != nil {
			table.Skipped = append(table.Skipped, r.Player)
			continue
		}

		table.Estimates = append(table.Estimates, models.PosteriorEstimate{
			Player:         r.Player,
			Season:         r.Season,
			Attempts:       r.Attempts,
			Made:           r.Made,
			RawPct:         r.RawPct(),
			GlobalMean:     global.Mean(),
			GlobalSD:       global.SD(),
			RegressionMean: regression.Mean(),
			RegressionSD:   regression.SD(),
			PriorAlpha:     personal.Alpha,
			PriorBeta:      personal.Beta,
		})
	}

	if len(table.Estimates) == 0 {
		return nil, fmt.Errorf("every record in the batch was invalid: %w", models.ErrInvalidRecord)
	}
	return table, nil
}
