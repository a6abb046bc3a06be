package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/datasource"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

// DataNormalizer converts provider rows to the internal shot record model
type DataNormalizer struct{}

// NewDataNormalizer creates a new data normalizer
func NewDataNormalizer() *DataNormalizer {
	return &DataNormalizer{}
}

// NormalizeRecord converts PlayerSeasonData from any source to the internal
// PlayerShotRecord model. The stored percentage is always recomputed from the
// counts; a provider-reported percentage is only a cross-check.
func (n *DataNormalizer) NormalizeRecord(row *datasource.PlayerSeasonData, source string) (*models.PlayerShotRecord, error) {
	if row == nil {
		return nil, fmt.Errorf("source row is nil")
	}

	player := normalizePlayerName(row.Player)
	if player == "" {
		return nil, fmt.Errorf("player name is empty: %w", models.ErrInvalidRecord)
	}

	record := &models.PlayerShotRecord{
		ID:        uuid.New(),
		Player:    player,
		Season:    strings.TrimSpace(row.Season),
		Attempts:  row.Attempts,
		Made:      row.Made,
		Source:    source,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	record.Pct = record.RawPct()

	if err := record.Validate(); err != nil {
		return nil, err
	}

	if row.Pct != nil && record.Attempts > 0 {
		reported := *row.Pct
		computed := decimal.NewFromFloat(record.Pct)
		if reported.Sub(computed).Abs().GreaterThan(decimal.NewFromFloat(0.005)) {
			return nil, fmt.Errorf("reported pct %s disagrees with counts %d/%d: %w",
				reported.String(), row.Made, row.Attempts, models.ErrInvalidRecord)
		}
	}

	return record, nil
}

// normalizePlayerName collapses whitespace so the same player keys identically
// across providers
func normalizePlayerName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
