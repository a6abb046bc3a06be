package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/datasource"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/logger"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/metrics"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/repository"
)

// IngestionSummary reports what one ingestion run did
type IngestionSummary struct {
	Season      string
	Sources     []string
	Fetched     int
	Kept        int
	Rejected    int
	ZeroAttempt int
	Duration    time.Duration
}

// IngestionService handles the season-table ingestion workflow
type IngestionService struct {
	sources    []datasource.SeasonSource
	seasonRepo repository.PlayerSeasonRepository
	normalizer *DataNormalizer
	log        *logger.IngestionLogger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	sources []datasource.SeasonSource,
	seasonRepo repository.PlayerSeasonRepository,
	normalizer *DataNormalizer,
	log *logger.IngestionLogger,
) *IngestionService {
	return &IngestionService{
		sources:    sources,
		seasonRepo: seasonRepo,
		normalizer: normalizer,
		log:        log,
	}
}

// IngestSeason fetches the season table from every enabled source, validates
// and normalizes the rows, and upserts the survivors. Invalid rows are
// skipped, never fatal. Later sources win when two report the same player.
func (s *IngestionService) IngestSeason(ctx context.Context, season string) (*IngestionSummary, error) {
	start := time.Now()
	summary := &IngestionSummary{Season: season}

	byPlayer := make(map[string]*models.PlayerShotRecord)
	var order []string

	for _, source := range s.sources {
		if !source.IsEnabled() {
			continue
		}
		summary.Sources = append(summary.Sources, source.Name())

		fetchStart := time.Now()
		rows, err := source.FetchSeasonTotals(ctx, season)
		if err != nil {
			return summary, fmt.Errorf("failed to fetch season totals from %s: %w", source.Name(), err)
		}
		s.log.LogFetch(source.Name(), season, len(rows), time.Since(fetchStart))
		summary.Fetched += len(rows)

		accepted := 0
		for i := range rows {
			row := &rows[i]
			record, err := s.normalizer.NormalizeRecord(row, source.Name())
			if err != nil {
				if errors.Is(err, models.ErrInvalidRecord) {
					summary.Rejected++
					metrics.RecordRejected(source.Name())
					s.log.LogRecordRejected(row.Player, row.Attempts, row.Made, err.Error())
					continue
				}
				return summary, err
			}
			if record.Attempts == 0 {
				summary.ZeroAttempt++
			}
			if _, seen := byPlayer[record.Player]; !seen {
				order = append(order, record.Player)
			}
			byPlayer[record.Player] = record
			accepted++
		}
		metrics.RecordIngested(source.Name(), accepted)
	}

	if len(summary.Sources) == 0 {
		return summary, fmt.Errorf("no enabled data sources")
	}

	records := make([]*models.PlayerShotRecord, 0, len(byPlayer))
	for _, player := range order {
		records = append(records, byPlayer[player])
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Pct != records[j].Pct {
			return records[i].Pct > records[j].Pct
		}
		return records[i].Player < records[j].Player
	})

	if err := s.seasonRepo.UpsertBatch(ctx, records); err != nil {
		return summary, fmt.Errorf("failed to persist season table: %w", err)
	}

	summary.Kept = len(records)
	summary.Duration = time.Since(start)
	s.log.LogNormalization(summary.Kept, summary.ZeroAttempt, summary.Rejected)
	metrics.IngestionDuration.Observe(summary.Duration.Seconds())

	return summary, nil
}
