// Package logger provides ingestion logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// IngestionLogger provides dedicated logging for season-table ingestion.
type IngestionLogger struct {
	*logrus.Entry
}

// NewIngestionLogger creates a new ingestion logger.
func NewIngestionLogger(baseLogger *logrus.Logger) *IngestionLogger {
	return &IngestionLogger{
		Entry: baseLogger.WithField("component", "ingestion"),
	}
}

// LogFetch logs a season-table fetch from a data source.
func (il *IngestionLogger) LogFetch(source, season string, rows int, duration time.Duration) {
	il.WithFields(logrus.Fields{
		"source":      source,
		"season":      season,
		"rows":        rows,
		"duration_ms": float64(duration.Milliseconds()),
	}).Info("Season table fetched")
}

// LogRecordRejected logs a single row rejected during validation.
func (il *IngestionLogger) LogRecordRejected(player string, attempts, made int, reason string) {
	il.WithFields(logrus.Fields{
		"player":   player,
		"attempts": attempts,
		"made":     made,
		"reason":   reason,
	}).Warn("Shot record rejected")
}

// LogNormalization logs the outcome of the normalization pass.
func (il *IngestionLogger) LogNormalization(kept, droppedZeroAttempts, rejected int) {
	il.WithFields(logrus.Fields{
		"kept":                  kept,
		"dropped_zero_attempts": droppedZeroAttempts,
		"rejected":              rejected,
	}).Info("Season table normalized")
}
