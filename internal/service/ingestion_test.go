package service

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/datasource"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/logger"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

type stubSource struct {
	name    string
	enabled bool
	rows    []datasource.PlayerSeasonData
	err     error
}

func (s *stubSource) FetchSeasonTotals(ctx context.Context, season string) ([]datasource.PlayerSeasonData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubSource) Name() string    { return s.name }
func (s *stubSource) IsEnabled() bool { return s.enabled }

func newTestIngestionLogger() *logger.IngestionLogger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return logger.NewIngestionLogger(base)
}

func TestIngestSeasonKeepsValidRows(t *testing.T) {
	source := &stubSource{
		name:    "csv",
		enabled: true,
		rows: []datasource.PlayerSeasonData{
			{Player: "Joe Harris", Season: "2020-21", Attempts: 386, Made: 183},
			{Player: "  Stephen   Curry ", Season: "2020-21", Attempts: 801, Made: 337},
			{Player: "Bad Row", Season: "2020-21", Attempts: 10, Made: 15},
			{Player: "", Season: "2020-21", Attempts: 50, Made: 20},
			{Player: "Rookie", Season: "2020-21", Attempts: 0, Made: 0},
		},
	}

	var persisted []*models.PlayerShotRecord
	repo := new(MockPlayerSeasonRepository)
	repo.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(records []*models.PlayerShotRecord) bool {
		persisted = records
		return true
	})).Return(nil)

	svc := NewIngestionService([]datasource.SeasonSource{source}, repo, NewDataNormalizer(), newTestIngestionLogger())

	summary, err := svc.IngestSeason(context.Background(), "2020-21")
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Fetched)
	assert.Equal(t, 3, summary.Kept)
	assert.Equal(t, 2, summary.Rejected)
	assert.Equal(t, 1, summary.ZeroAttempt)

	require.Len(t, persisted, 3)
	// Sorted by raw percentage, best first
	assert.Equal(t, "Joe Harris", persisted[0].Player)
	assert.Equal(t, "Stephen Curry", persisted[1].Player, "whitespace must be collapsed")
	assert.Equal(t, "Rookie", persisted[2].Player)
	assert.InDelta(t, 183.0/386.0, persisted[0].Pct, 1e-12)

	repo.AssertExpectations(t)
}

func TestIngestSeasonRejectsDisagreeingPct(t *testing.T) {
	reported := decimal.NewFromFloat(0.99)
	source := &stubSource{
		name:    "csv",
		enabled: true,
		rows: []datasource.PlayerSeasonData{
			{Player: "Joe Harris", Season: "2020-21", Attempts: 386, Made: 183, Pct: &reported},
			{Player: "Duncan Robinson", Season: "2020-21", Attempts: 468, Made: 206},
		},
	}

	repo := new(MockPlayerSeasonRepository)
	repo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	svc := NewIngestionService([]datasource.SeasonSource{source}, repo, NewDataNormalizer(), newTestIngestionLogger())

	summary, err := svc.IngestSeason(context.Background(), "2020-21")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Kept)
	assert.Equal(t, 1, summary.Rejected)
}

func TestIngestSeasonLaterSourceWins(t *testing.T) {
	first := &stubSource{
		name:    "csv",
		enabled: true,
		rows: []datasource.PlayerSeasonData{
			{Player: "Joe Harris", Season: "2020-21", Attempts: 300, Made: 120},
		},
	}
	second := &stubSource{
		name:    "balldontlie",
		enabled: true,
		rows: []datasource.PlayerSeasonData{
			{Player: "Joe Harris", Season: "2020-21", Attempts: 386, Made: 183},
		},
	}

	var persisted []*models.PlayerShotRecord
	repo := new(MockPlayerSeasonRepository)
	repo.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(records []*models.PlayerShotRecord) bool {
		persisted = records
		return true
	})).Return(nil)

	svc := NewIngestionService([]datasource.SeasonSource{first, second}, repo, NewDataNormalizer(), newTestIngestionLogger())

	summary, err := svc.IngestSeason(context.Background(), "2020-21")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Kept)
	require.Len(t, persisted, 1)
	assert.Equal(t, 386, persisted[0].Attempts)
	assert.Equal(t, "balldontlie", persisted[0].Source)
}

func TestIngestSeasonNoEnabledSources(t *testing.T) {
	disabled := &stubSource{name: "csv", enabled: false}
	svc := NewIngestionService([]datasource.SeasonSource{disabled}, new(MockPlayerSeasonRepository), NewDataNormalizer(), newTestIngestionLogger())

	_, err := svc.IngestSeason(context.Background(), "2020-21")
	assert.ErrorContains(t, err, "no enabled data sources")
}

func TestIngestSeasonFetchFailureIsFatal(t *testing.T) {
	source := &stubSource{
		name:    "balldontlie",
		enabled: true,
		err:     datasource.NewDataSourceError("balldontlie", datasource.ErrCodeServerError, "upstream 500", nil),
	}
	svc := NewIngestionService([]datasource.SeasonSource{source}, new(MockPlayerSeasonRepository), NewDataNormalizer(), newTestIngestionLogger())

	_, err := svc.IngestSeason(context.Background(), "2020-21")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "balldontlie")
}
