package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/database"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

const errScanModel = "failed to scan fitted model: %w"

// PostgresModelRepository implements ModelRepository for PostgreSQL
type PostgresModelRepository struct {
	db *database.DB
}

// NewPostgresModelRepository creates a new model repository
func NewPostgresModelRepository(db *database.DB) ModelRepository {
	return &PostgresModelRepository{db: db}
}

// Create inserts a new fitted model
func (r *PostgresModelRepository) Create(ctx context.Context, model *models.RegressionPriorModel) error {
	query := `
		INSERT INTO fitted_models (id, season, mu_intercept, mu_slope, sigma, min_attempts,
		                           log_likelihood, iterations, record_count, fitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		model.ID, model.Season, model.MuIntercept, model.MuSlope, model.Sigma,
		model.MinAttempts, model.LogLikelihood, model.Iterations, model.RecordCount,
		model.FittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create fitted model: %w", err)
	}

	return nil
}

// GetByID retrieves a fitted model by ID
func (r *PostgresModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RegressionPriorModel, error) {
	query := `
		SELECT id, season, mu_intercept, mu_slope, sigma, min_attempts,
		       log_likelihood, iterations, record_count, fitted_at
		FROM fitted_models WHERE id = $1
	`

	model := &models.RegressionPriorModel{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&model.ID, &model.Season, &model.MuIntercept, &model.MuSlope, &model.Sigma,
		&model.MinAttempts, &model.LogLikelihood, &model.Iterations, &model.RecordCount,
		&model.FittedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fitted model: %w", err)
	}

	return model, nil
}

// GetLatestBySeason retrieves the most recently fitted model for a season
func (r *PostgresModelRepository) GetLatestBySeason(ctx context.Context, season string) (*models.RegressionPriorModel, error) {
	query := `
		SELECT id, season, mu_intercept, mu_slope, sigma, min_attempts,
		       log_likelihood, iterations, record_count, fitted_at
		FROM fitted_models
		WHERE season = $1
		ORDER BY fitted_at DESC
		LIMIT 1
	`

	model := &models.RegressionPriorModel{}
	err := r.db.GetPool().QueryRow(ctx, query, season).Scan(
		&model.ID, &model.Season, &model.MuIntercept, &model.MuSlope, &model.Sigma,
		&model.MinAttempts, &model.LogLikelihood, &model.Iterations, &model.RecordCount,
		&model.FittedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest fitted model: %w", err)
	}

	return model, nil
}

// ListBySeason retrieves fit history for a season, newest first
func (r *PostgresModelRepository) ListBySeason(ctx context.Context, season string, limit int) ([]*models.RegressionPriorModel, error) {
	query := `
		SELECT id, season, mu_intercept, mu_slope, sigma, min_attempts,
		       log_likelihood, iterations, record_count, fitted_at
		FROM fitted_models
		WHERE season = $1
		ORDER BY fitted_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, season, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fitted models: %w", err)
	}
	defer rows.Close()

	var fitted []*models.RegressionPriorModel
	for rows.Next() {
		model := &models.RegressionPriorModel{}
		err := rows.Scan(
			&model.ID, &model.Season, &model.MuIntercept, &model.MuSlope, &model.Sigma,
			&model.MinAttempts, &model.LogLikelihood, &model.Iterations, &model.RecordCount,
			&model.FittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanModel, err)
		}
		fitted = append(fitted, model)
	}

	return fitted, rows.Err()
}

// Delete removes a fitted model and, via cascade, its stored estimates
func (r *PostgresModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.GetPool().Exec(ctx, `DELETE FROM fitted_models WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fitted model: %w", err)
	}
	return nil
}
