// Package main provides the entry point for the season ingestion service.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/config"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/database"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/datasource"
	applogger "github.com/pw2/beta-binomial-regression-for-priors/internal/logger"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/metrics"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/repository"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/scheduler"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/service"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/shrinkage"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		season     = flag.String("season", "", "Override the configured season")
		once       = flag.Bool("once", false, "Ingest once and exit even when a schedule is configured")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	logger := applogger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)

	target := cfg.DataSource.Season
	if *season != "" {
		target = *season
	}

	ctx := context.Background()
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		logger.Fatalf("Failed to initialize repositories: %v", err)
	}

	clientCfg := datasource.DefaultHTTPClientConfig()
	for _, src := range cfg.DataSource.Sources {
		if src.Enabled && src.RateLimit > 0 {
			clientCfg.RateLimit = src.RateLimit
		}
	}
	httpClient := datasource.NewRateLimitedHTTPClient(clientCfg, logger)
	sources, err := datasource.NewFactory(logger).NewSeasonSources(cfg.DataSource, httpClient)
	if err != nil {
		logger.Fatalf("Failed to create data sources: %v", err)
	}

	ingestionSvc := service.NewIngestionService(
		sources, repos.PlayerSeason, service.NewDataNormalizer(), applogger.NewIngestionLogger(logger),
	)

	if cfg.Metrics.Enabled {
		startMetricsServer(cfg, logger)
	}

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	summary, err := ingestionSvc.IngestSeason(runCtx, target)
	cancel()
	if err != nil {
		logger.Fatalf("Ingestion failed: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"season":   summary.Season,
		"sources":  summary.Sources,
		"fetched":  summary.Fetched,
		"kept":     summary.Kept,
		"rejected": summary.Rejected,
		"duration": summary.Duration.String(),
	}).Info("Ingestion completed")

	if !cfg.DataSource.Schedule.Enabled || *once {
		return
	}

	runScheduled(cfg, target, ingestionSvc, repos, logger)
}

func runScheduled(cfg *config.Config, season string, ingestionSvc *service.IngestionService, repos *repository.Repositories, logger *logrus.Logger) {
	fitCfg := shrinkage.FitConfig{
		MinAttempts:   cfg.PriorModel.MinAttempts,
		Tolerance:     cfg.PriorModel.Tolerance,
		MaxIterations: cfg.PriorModel.MaxIterations,
	}
	prior := models.GlobalPrior{Alpha: cfg.Prior.Alpha, Beta: cfg.Prior.Beta}
	estimatorSvc := service.NewEstimatorService(repos, fitCfg, prior, cfg.Query.CacheTTL(), applogger.NewFitLogger(logger))

	sched := scheduler.NewScheduler(ingestionSvc, estimatorSvc, logger)
	if err := sched.ScheduleSeasonRefresh(cfg.DataSource.Schedule.CronExpression, season); err != nil {
		logger.Fatalf("Failed to schedule season refresh: %v", err)
	}
	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	logger.WithField("next_run", sched.GetNextRun()).Info("Scheduler running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := sched.Stop(); err != nil {
		logger.Errorf("Scheduler shutdown error: %v", err)
	}
}

func startMetricsServer(cfg *config.Config, logger *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	addr := ":9090"
	if cfg.Metrics.Port != 0 {
		addr = ":" + strconv.Itoa(cfg.Metrics.Port)
	}
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Metrics server stopped: %v", err)
		}
	}()
	logger.WithField("addr", addr).Info("Metrics exposition started")
}

func loadConfigWithSecrets(path string) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logrus.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logrus.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}
