// Package metrics provides the centralized Prometheus metrics registry for
// the shooting priors estimator.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RecordsIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shooting_priors",
		Name:      "records_ingested_total",
		Help:      "Total number of season records ingested, by source",
	}, []string{"source"})
	RecordsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shooting_priors",
		Name:      "records_rejected_total",
		Help:      "Total number of season records rejected during validation, by source",
	}, []string{"source"})
	FitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shooting_priors",
		Name:      "fits_total",
		Help:      "Total number of regression fits, by outcome",
	}, []string{"outcome"})
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shooting_priors",
		Name:      "queries_total",
		Help:      "Total number of posterior queries, by result",
	}, []string{"result"})
	QueryCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shooting_priors",
		Name:      "query_cache_hits_total",
		Help:      "Total number of posterior queries answered from cache",
	})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shooting_priors",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of stats API circuit breaker trips",
	})
)

// Gauge metrics
var (
	ModelSigma = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "shooting_priors",
		Name:      "model_sigma",
		Help:      "Fitted dispersion of the latest prior model, by season",
	}, []string{"season"})
	ModelRecordCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "shooting_priors",
		Name:      "model_record_count",
		Help:      "Number of training records behind the latest prior model, by season",
	}, []string{"season"})
)

// Histogram metrics
var (
	FitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shooting_priors",
		Name:      "fit_duration_seconds",
		Help:      "Duration of regression fits in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	FitIterations = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shooting_priors",
		Name:      "fit_iterations",
		Help:      "Optimizer iterations taken per regression fit",
		Buckets:   []float64{50, 100, 250, 500, 1000, 1500, 2000},
	})
	IngestionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shooting_priors",
		Name:      "ingestion_duration_seconds",
		Help:      "Duration of season ingestion runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RecordsIngestedTotal)
		registry.MustRegister(RecordsRejectedTotal)
		registry.MustRegister(FitsTotal)
		registry.MustRegister(QueriesTotal)
		registry.MustRegister(QueryCacheHitsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		registry.MustRegister(ModelSigma)
		registry.MustRegister(ModelRecordCount)

		registry.MustRegister(FitDuration)
		registry.MustRegister(FitIterations)
		registry.MustRegister(IngestionDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordIngested records accepted season records for a source.
func RecordIngested(source string, n int) {
	RecordsIngestedTotal.WithLabelValues(source).Add(float64(n))
}

// RecordRejected records a rejected season record for a source.
func RecordRejected(source string) {
	RecordsRejectedTotal.WithLabelValues(source).Inc()
}

// RecordFit records the outcome and cost of one regression fit.
func RecordFit(outcome string, durationSeconds float64, iterations int) {
	FitsTotal.WithLabelValues(outcome).Inc()
	FitDuration.Observe(durationSeconds)
	FitIterations.Observe(float64(iterations))
}

// RecordModel publishes gauges describing the latest fitted model.
func RecordModel(season string, sigma float64, recordCount int) {
	ModelSigma.WithLabelValues(season).Set(sigma)
	ModelRecordCount.WithLabelValues(season).Set(float64(recordCount))
}

// RecordQuery records a posterior query outcome.
func RecordQuery(result string) {
	QueriesTotal.WithLabelValues(result).Inc()
}

// RecordQueryCacheHit records a query answered from the cache.
func RecordQueryCacheHit() {
	QueryCacheHitsTotal.Inc()
}

// RecordCircuitBreakerTrip records a stats API circuit breaker trip.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}
