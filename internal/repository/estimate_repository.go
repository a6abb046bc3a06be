package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/database"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

const errScanEstimate = "failed to scan posterior estimate: %w"

// PostgresEstimateRepository implements EstimateRepository for PostgreSQL
type PostgresEstimateRepository struct {
	db *database.DB
}

// NewPostgresEstimateRepository creates a new estimate repository
func NewPostgresEstimateRepository(db *database.DB) EstimateRepository {
	return &PostgresEstimateRepository{db: db}
}

// InsertBatch stores the comparison table produced by one fit, replacing any
// previous rows for the same model
func (r *PostgresEstimateRepository) InsertBatch(ctx context.Context, modelID uuid.UUID, estimates []*models.PosteriorEstimate) error {
	if len(estimates) == 0 {
		return nil
	}

	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM posterior_estimates WHERE model_id = $1`, modelID); err != nil {
		return fmt.Errorf("failed to clear previous estimates: %w", err)
	}

	query := `
		INSERT INTO posterior_estimates (id, model_id, player, season, attempts, made, raw_pct,
		                                 global_mean, global_sd, regression_mean, regression_sd,
		                                 prior_alpha, prior_beta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, est := range estimates {
		_, err := tx.Exec(ctx, query,
			uuid.New(), modelID, est.Player, est.Season, est.Attempts, est.Made, est.RawPct,
			est.GlobalMean, est.GlobalSD, est.RegressionMean, est.RegressionSD,
			est.PriorAlpha, est.PriorBeta,
		)
		if err != nil {
			return fmt.Errorf("failed to insert estimate for %s: %w", est.Player, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit estimate batch: %w", err)
	}

	return nil
}

// GetByModelID retrieves all estimates for a model ordered by regression mean descending
func (r *PostgresEstimateRepository) GetByModelID(ctx context.Context, modelID uuid.UUID) ([]*models.PosteriorEstimate, error) {
	return r.query(ctx, modelID, 0)
}

// GetTopByModelID retrieves the highest regression-shrunk estimates for a model
func (r *PostgresEstimateRepository) GetTopByModelID(ctx context.Context, modelID uuid.UUID, limit int) ([]*models.PosteriorEstimate, error) {
	return r.query(ctx, modelID, limit)
}

func (r *PostgresEstimateRepository) query(ctx context.Context, modelID uuid.UUID, limit int) ([]*models.PosteriorEstimate, error) {
	query := `
		SELECT player, season, attempts, made, raw_pct,
		       global_mean, global_sd, regression_mean, regression_sd,
		       prior_alpha, prior_beta
		FROM posterior_estimates
		WHERE model_id = $1
		ORDER BY regression_mean DESC, player ASC
	`
	args := []interface{}{modelID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posterior estimates: %w", err)
	}
	defer rows.Close()

	var estimates []*models.PosteriorEstimate
	for rows.Next() {
		est := &models.PosteriorEstimate{}
		err := rows.Scan(
			&est.Player, &est.Season, &est.Attempts, &est.Made, &est.RawPct,
			&est.GlobalMean, &est.GlobalSD, &est.RegressionMean, &est.RegressionSD,
			&est.PriorAlpha, &est.PriorBeta,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanEstimate, err)
		}
		estimates = append(estimates, est)
	}

	return estimates, rows.Err()
}

// DeleteByModelID removes all estimates for a model
func (r *PostgresEstimateRepository) DeleteByModelID(ctx context.Context, modelID uuid.UUID) error {
	_, err := r.db.GetPool().Exec(ctx, `DELETE FROM posterior_estimates WHERE model_id = $1`, modelID)
	if err != nil {
		return fmt.Errorf("failed to delete posterior estimates: %w", err)
	}
	return nil
}
