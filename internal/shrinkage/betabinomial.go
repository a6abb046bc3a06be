package shrinkage

import (
	"math"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

// logBeta computes log B(a, b) via the log-gamma function
func logBeta(a, b float64) float64 {
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	lab, _ := math.Lgamma(a + b)
	return la + lb - lab
}

// linkMu evaluates the identity-linked mean at a covariate value.
// The linear predictor is not intrinsically bounded, so every caller must
// check the result against (0, 1).
func linkMu(intercept, slope, logAttempts float64) float64 {
	return intercept + slope*logAttempts
}

// betaBinomialLogLikelihood builds the summed beta-binomial log-likelihood
// over the training records as a function of (mu intercept, mu slope,
// log sigma). The binomial coefficient term is constant in the parameters
// and omitted. Parameter vectors producing a mean outside (0, 1) for any
// record get -Inf, which steers the optimizer back into the feasible region.
func betaBinomialLogLikelihood(records []*models.PlayerShotRecord) LogLikelihood {
	logAttempts := make([]float64, len(records))
	for i, r := range records {
		logAttempts[i] = math.Log(float64(r.Attempts))
	}

	return func(params []float64) float64 {
		intercept, slope := params[0], params[1]
		sigma := math.Exp(params[2])
		if sigma <= 0 || math.IsInf(sigma, 1) {
			return math.Inf(-1)
		}

		ll := 0.0
		for i, r := range records {
			mu := linkMu(intercept, slope, logAttempts[i])
			if mu <= 0 || mu >= 1 {
				return math.Inf(-1)
			}
			a := mu / sigma
			b := (1 - mu) / sigma
			ll += logBeta(float64(r.Made)+a, float64(r.Missed())+b) - logBeta(a, b)
		}
		return ll
	}
}
