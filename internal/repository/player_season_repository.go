package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/database"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

const errScanPlayerSeason = "failed to scan player season: %w"

// PostgresPlayerSeasonRepository implements PlayerSeasonRepository for PostgreSQL
type PostgresPlayerSeasonRepository struct {
	db *database.DB
}

// NewPostgresPlayerSeasonRepository creates a new player season repository
func NewPostgresPlayerSeasonRepository(db *database.DB) PlayerSeasonRepository {
	return &PostgresPlayerSeasonRepository{db: db}
}

// Upsert inserts a record, replacing any existing row for the same player and season
func (r *PostgresPlayerSeasonRepository) Upsert(ctx context.Context, record *models.PlayerShotRecord) error {
	query := `
		INSERT INTO player_seasons (id, player, season, attempts, made, pct, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (player, season) DO UPDATE SET
			attempts = EXCLUDED.attempts,
			made = EXCLUDED.made,
			pct = EXCLUDED.pct,
			source = EXCLUDED.source,
			updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.Player, record.Season, record.Attempts,
		record.Made, record.Pct, record.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player season: %w", err)
	}

	return nil
}

// UpsertBatch upserts records within a single transaction
func (r *PostgresPlayerSeasonRepository) UpsertBatch(ctx context.Context, records []*models.PlayerShotRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO player_seasons (id, player, season, attempts, made, pct, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (player, season) DO UPDATE SET
			attempts = EXCLUDED.attempts,
			made = EXCLUDED.made,
			pct = EXCLUDED.pct,
			source = EXCLUDED.source,
			updated_at = NOW()
	`

	for _, record := range records {
		_, err := tx.Exec(ctx, query,
			record.ID, record.Player, record.Season, record.Attempts,
			record.Made, record.Pct, record.Source,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert player season for %s: %w", record.Player, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch upsert: %w", err)
	}

	return nil
}

// GetByID retrieves a record by ID
func (r *PostgresPlayerSeasonRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlayerShotRecord, error) {
	query := `
		SELECT id, player, season, attempts, made, pct, source, created_at, updated_at
		FROM player_seasons WHERE id = $1
	`

	record := &models.PlayerShotRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&record.ID, &record.Player, &record.Season, &record.Attempts, &record.Made,
		&record.Pct, &record.Source, &record.CreatedAt, &record.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player season: %w", err)
	}

	return record, nil
}

// GetByPlayerAndSeason retrieves the record for one player in one season
func (r *PostgresPlayerSeasonRepository) GetByPlayerAndSeason(ctx context.Context, player, season string) (*models.PlayerShotRecord, error) {
	query := `
		SELECT id, player, season, attempts, made, pct, source, created_at, updated_at
		FROM player_seasons WHERE player = $1 AND season = $2
	`

	record := &models.PlayerShotRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, player, season).Scan(
		&record.ID, &record.Player, &record.Season, &record.Attempts, &record.Made,
		&record.Pct, &record.Source, &record.CreatedAt, &record.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player season: %w", err)
	}

	return record, nil
}

// GetBySeason retrieves all records for a season ordered by attempts descending
func (r *PostgresPlayerSeasonRepository) GetBySeason(ctx context.Context, season string) ([]*models.PlayerShotRecord, error) {
	query := `
		SELECT id, player, season, attempts, made, pct, source, created_at, updated_at
		FROM player_seasons
		WHERE season = $1
		ORDER BY attempts DESC, player ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query player seasons: %w", err)
	}
	defer rows.Close()

	var records []*models.PlayerShotRecord
	for rows.Next() {
		record := &models.PlayerShotRecord{}
		err := rows.Scan(
			&record.ID, &record.Player, &record.Season, &record.Attempts, &record.Made,
			&record.Pct, &record.Source, &record.CreatedAt, &record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanPlayerSeason, err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// CountBySeason returns the number of stored records for a season
func (r *PostgresPlayerSeasonRepository) CountBySeason(ctx context.Context, season string) (int, error) {
	var count int
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT COUNT(*) FROM player_seasons WHERE season = $1`, season,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count player seasons: %w", err)
	}
	return count, nil
}

// Delete removes a record
func (r *PostgresPlayerSeasonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.GetPool().Exec(ctx, `DELETE FROM player_seasons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player season: %w", err)
	}
	return nil
}
