package repository

import (
	"fmt"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	PlayerSeason PlayerSeasonRepository
	Model        ModelRepository
	Estimate     EstimateRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		PlayerSeason: NewPostgresPlayerSeasonRepository(db),
		Model:        NewPostgresModelRepository(db),
		Estimate:     NewPostgresEstimateRepository(db),
	}, nil
}
