package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// RegressionPriorModel is the fitted beta-binomial regression artifact.
// The Beta mean is identity-linked to log(attempts); Sigma is the single
// dispersion shared across players. Read-only after a successful fit.
type RegressionPriorModel struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Season        string    `db:"season" json:"season"`
	MuIntercept   float64   `db:"mu_intercept" json:"mu_intercept"`
	MuSlope       float64   `db:"mu_slope" json:"mu_slope"`
	Sigma         float64   `db:"sigma" json:"sigma"`
	MinAttempts   int       `db:"min_attempts" json:"min_attempts"`
	LogLikelihood float64   `db:"log_likelihood" json:"log_likelihood"`
	Iterations    int       `db:"iterations" json:"iterations"`
	RecordCount   int       `db:"record_count" json:"record_count"`
	FittedAt      time.Time `db:"fitted_at" json:"fitted_at"`
}

// Validate checks the fit produced a usable model. A non-positive sigma or
// non-finite coefficient means the optimizer landed somewhere degenerate.
func (m *RegressionPriorModel) Validate() error {
	if m.Sigma <= 0 {
		return ErrModelInvalid
	}
	for _, v := range []float64{m.MuIntercept, m.MuSlope, m.Sigma} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrModelInvalid
		}
	}
	return nil
}
