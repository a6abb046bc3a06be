// Package main provides a CLI for ad hoc posterior queries against the
// latest fitted prior model.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/config"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/database"
	applogger "github.com/pw2/beta-binomial-regression-for-priors/internal/logger"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/repository"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/service"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/shrinkage"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	season     string
	attempts   int
	made       int
	asJSON     bool

	logger *logrus.Logger
	cfg    *config.Config
	db     *database.DB
	svc    *service.EstimatorService
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&season, "season", "", "Season whose fitted model to query (defaults to the configured season)")
	rootCmd.Flags().IntVar(&attempts, "attempts", 0, "Three-point attempts")
	rootCmd.Flags().IntVar(&made, "made", 0, "Three-point makes")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full posterior record as JSON")
	rootCmd.MarkFlagRequired("attempts")
	rootCmd.MarkFlagRequired("made")
}

var rootCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the fitted prior model for a shrunk shooting estimate",
	Long: `Answers the question: given a player with this many three-point attempts
and makes, what is their estimated true shooting percentage after shrinkage
toward the volume-aware prior?`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer db.Close()
		return runQuery(cmd.Context())
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return err
		}
	}
	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	logger = logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	fitCfg := shrinkage.FitConfig{
		MinAttempts:   cfg.PriorModel.MinAttempts,
		Tolerance:     cfg.PriorModel.Tolerance,
		MaxIterations: cfg.PriorModel.MaxIterations,
	}
	prior := models.GlobalPrior{Alpha: cfg.Prior.Alpha, Beta: cfg.Prior.Beta}
	svc = service.NewEstimatorService(repos, fitCfg, prior, cfg.Query.CacheTTL(), applogger.NewFitLogger(logger))

	return nil
}

func runQuery(ctx context.Context) error {
	target := season
	if target == "" {
		target = cfg.DataSource.Season
	}

	record, err := svc.Query(ctx, target, attempts, made)
	if err != nil {
		return err
	}

	if asJSON {
		out, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Season:          %s\n", target)
	fmt.Printf("Shooting line:   %d/%d (%.1f%%)\n", record.Made, record.Attempts, record.RawPct*100)
	fmt.Printf("Prior:           mu=%.4f sigma=%.6f (Beta(%.2f, %.2f))\n",
		record.Mu, record.Sigma, record.PriorAlpha, record.PriorBeta)
	fmt.Printf("Posterior:       Beta(%.2f, %.2f)\n", record.PosteriorAlpha, record.PosteriorBeta)
	fmt.Printf("Estimate:        %.1f%% +/- %.1f%%\n", record.PosteriorMean*100, record.PosteriorSD*100)

	return nil
}
