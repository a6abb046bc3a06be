package models

// GlobalPrior is a Beta distribution over true shooting percentage shared
// by every player. The default values come from a prior league-wide analysis;
// callers may substitute their own.
type GlobalPrior struct {
	Alpha float64 `json:"alpha" validate:"gt=0"`
	Beta  float64 `json:"beta" validate:"gt=0"`
}

// DefaultGlobalPrior is the pinned league-wide prior
var DefaultGlobalPrior = GlobalPrior{Alpha: 61.8, Beta: 106.2}

// Mean returns the prior mean alpha/(alpha+beta)
func (p GlobalPrior) Mean() float64 {
	return p.Alpha / (p.Alpha + p.Beta)
}

// Valid reports whether both shape parameters are positive
func (p GlobalPrior) Valid() bool {
	return p.Alpha > 0 && p.Beta > 0
}

// PersonalizedPrior is a per-player Beta prior derived from the fitted
// regression model: mu depends on the player's attempt volume, sigma is
// the shared dispersion.
type PersonalizedPrior struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
	Alpha float64 `json:"prior_alpha"`
	Beta  float64 `json:"prior_beta"`
}

// Valid reports whether the prior corresponds to a proper Beta distribution
func (p PersonalizedPrior) Valid() bool {
	return p.Sigma > 0 && p.Mu > 0 && p.Mu < 1
}
