package models

import "math"

// ConjugatePosterior is the Beta posterior for one player after updating a
// prior with their observed makes and misses. Immutable once computed.
type ConjugatePosterior struct {
	Alpha float64 `json:"posterior_alpha"`
	Beta  float64 `json:"posterior_beta"`
}

// Mean returns the posterior mean
func (p ConjugatePosterior) Mean() float64 {
	return p.Alpha / (p.Alpha + p.Beta)
}

// SD returns the posterior standard deviation
func (p ConjugatePosterior) SD() float64 {
	sum := p.Alpha + p.Beta
	return math.Sqrt((p.Alpha * p.Beta) / (sum * sum * (sum + 1)))
}

// PosteriorEstimate is one row of the season comparison table: the raw rate
// next to the globally shrunk and regression-shrunk estimates.
type PosteriorEstimate struct {
	Player         string  `db:"player" json:"player"`
	Season         string  `db:"season" json:"season"`
	Attempts       int     `db:"attempts" json:"attempts"`
	Made           int     `db:"made" json:"made"`
	RawPct         float64 `db:"raw_pct" json:"raw_pct"`
	GlobalMean     float64 `db:"global_mean" json:"global_mean"`
	GlobalSD       float64 `db:"global_sd" json:"global_sd"`
	RegressionMean float64 `db:"regression_mean" json:"regression_mean"`
	RegressionSD   float64 `db:"regression_sd" json:"regression_sd"`
	PriorAlpha     float64 `db:"prior_alpha" json:"prior_alpha"`
	PriorBeta      float64 `db:"prior_beta" json:"prior_beta"`
}

// PosteriorRecord is the full record returned for an ad hoc query against
// the fitted model for a player outside the training set.
type PosteriorRecord struct {
	Attempts       int     `json:"attempts"`
	Made           int     `json:"made"`
	RawPct         float64 `json:"raw_pct"`
	Mu             float64 `json:"mu"`
	Sigma          float64 `json:"sigma"`
	PriorAlpha     float64 `json:"prior_alpha"`
	PriorBeta      float64 `json:"prior_beta"`
	PosteriorAlpha float64 `json:"posterior_alpha"`
	PosteriorBeta  float64 `json:"posterior_beta"`
	PosteriorMean  float64 `json:"posterior_mean"`
	PosteriorSD    float64 `json:"posterior_sd"`
}
