// Package logger provides fit-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// FitLogger provides dedicated logging for prior-model fitting.
type FitLogger struct {
	*logrus.Entry
}

// NewFitLogger creates a new fit logger.
func NewFitLogger(baseLogger *logrus.Logger) *FitLogger {
	return &FitLogger{
		Entry: baseLogger.WithField("component", "fit"),
	}
}

// LogFitStart logs the start of a regression prior fit.
func (fl *FitLogger) LogFitStart(season string, recordCount int, minAttempts int) {
	fl.WithFields(logrus.Fields{
		"season":       season,
		"record_count": recordCount,
		"min_attempts": minAttempts,
	}).Info("Fitting beta-binomial regression prior")
}

// LogFitResult logs the fitted coefficients and optimizer stats.
func (fl *FitLogger) LogFitResult(muIntercept, muSlope, sigma, logLikelihood float64, iterations int, durationMs float64) {
	fl.WithFields(logrus.Fields{
		"mu_intercept":   muIntercept,
		"mu_slope":       muSlope,
		"sigma":          sigma,
		"log_likelihood": logLikelihood,
		"iterations":     iterations,
		"duration_ms":    durationMs,
	}).Info("Prior model fit converged")
}

// LogFitFailure logs a fit that could not reach a stable optimum.
func (fl *FitLogger) LogFitFailure(season string, errorReason string) {
	fl.WithFields(logrus.Fields{
		"season":       season,
		"error_reason": errorReason,
	}).Error("Prior model fit failed")
}

// LogQuery logs an ad hoc posterior query.
func (fl *FitLogger) LogQuery(attempts, made int, posteriorMean float64, cacheHit bool) {
	fl.WithFields(logrus.Fields{
		"attempts":       attempts,
		"made":           made,
		"posterior_mean": posteriorMean,
		"cache_hit":      cacheHit,
	}).Info("Posterior query completed")
}
