// Package main provides the entry point for the season estimation CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/config"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/database"
	applogger "github.com/pw2/beta-binomial-regression-for-priors/internal/logger"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/report"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/repository"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/service"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/shrinkage"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		season     = flag.String("season", "", "Override the configured season")
		output     = flag.String("output", "", "Override the CSV output path")
		topN       = flag.Int("top", 0, "Override how many players the console report shows")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	logger := applogger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)

	target := cfg.DataSource.Season
	if *season != "" {
		target = *season
	}
	outPath := cfg.Report.OutputPath
	if *output != "" {
		outPath = *output
	}
	limit := cfg.Report.TopN
	if *topN > 0 {
		limit = *topN
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		logger.Fatalf("Failed to initialize repositories: %v", err)
	}

	fitCfg := shrinkage.FitConfig{
		MinAttempts:   cfg.PriorModel.MinAttempts,
		Tolerance:     cfg.PriorModel.Tolerance,
		MaxIterations: cfg.PriorModel.MaxIterations,
	}
	prior := models.GlobalPrior{Alpha: cfg.Prior.Alpha, Beta: cfg.Prior.Beta}
	svc := service.NewEstimatorService(repos, fitCfg, prior, cfg.Query.CacheTTL(), applogger.NewFitLogger(logger))

	outcome, err := svc.Run(ctx, target)
	if err != nil {
		logger.Fatalf("Estimation failed: %v", err)
	}

	fmt.Print(report.GenerateConsoleReport(outcome.Model, outcome.Estimates, limit))
	if len(outcome.Skipped) > 0 {
		logger.WithField("players", outcome.Skipped).Warn("Skipped invalid records")
	}
	if outcome.Excluded > 0 {
		logger.WithField("count", outcome.Excluded).Info("Records below the attempt cutoff were excluded")
	}

	if err := report.GenerateCSVExport(outcome.Estimates, outPath); err != nil {
		logger.Fatalf("Failed to write CSV report: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"path":    outPath,
		"players": len(outcome.Estimates),
	}).Info("Comparison table exported")
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
