package database

import (
	"context"
	"fmt"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/config"
)

// schema holds the DDL for all tables used by the estimator. Statements are
// idempotent so Initialize can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS player_seasons (
		id UUID PRIMARY KEY,
		player TEXT NOT NULL,
		season TEXT NOT NULL,
		attempts INTEGER NOT NULL,
		made INTEGER NOT NULL,
		pct NUMERIC(8, 6) NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (player, season)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_player_seasons_season ON player_seasons (season)`,
	`CREATE TABLE IF NOT EXISTS fitted_models (
		id UUID PRIMARY KEY,
		season TEXT NOT NULL,
		mu_intercept DOUBLE PRECISION NOT NULL,
		mu_slope DOUBLE PRECISION NOT NULL,
		sigma DOUBLE PRECISION NOT NULL,
		min_attempts INTEGER NOT NULL,
		log_likelihood DOUBLE PRECISION NOT NULL,
		iterations INTEGER NOT NULL,
		record_count INTEGER NOT NULL,
		fitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fitted_models_season ON fitted_models (season, fitted_at DESC)`,
	`CREATE TABLE IF NOT EXISTS posterior_estimates (
		id UUID PRIMARY KEY,
		model_id UUID NOT NULL REFERENCES fitted_models (id) ON DELETE CASCADE,
		player TEXT NOT NULL,
		season TEXT NOT NULL,
		attempts INTEGER NOT NULL,
		made INTEGER NOT NULL,
		raw_pct DOUBLE PRECISION NOT NULL,
		global_mean DOUBLE PRECISION NOT NULL,
		global_sd DOUBLE PRECISION NOT NULL,
		regression_mean DOUBLE PRECISION NOT NULL,
		regression_sd DOUBLE PRECISION NOT NULL,
		prior_alpha DOUBLE PRECISION NOT NULL,
		prior_beta DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (model_id, player)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posterior_estimates_model ON posterior_estimates (model_id)`,
}

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return db, nil
}
