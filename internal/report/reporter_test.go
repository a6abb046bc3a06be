package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

func sampleEstimates() (*models.RegressionPriorModel, []models.PosteriorEstimate) {
	model := &models.RegressionPriorModel{
		ID:            uuid.New(),
		Season:        "2020-21",
		MuIntercept:   0.28,
		MuSlope:       0.012,
		Sigma:         0.0095,
		MinAttempts:   1,
		LogLikelihood: -812.44,
		Iterations:    640,
		RecordCount:   2,
		FittedAt:      time.Now().UTC(),
	}
	estimates := []models.PosteriorEstimate{
		{
			Player: "Joe Harris", Season: "2020-21", Attempts: 386, Made: 183,
			RawPct: 0.4741, GlobalMean: 0.4420, GlobalSD: 0.0210,
			RegressionMean: 0.4510, RegressionSD: 0.0190,
			PriorAlpha: 36.2, PriorBeta: 48.9,
		},
		{
			Player: "Duncan Robinson", Season: "2020-21", Attempts: 468, Made: 206,
			RawPct: 0.4402, GlobalMean: 0.4210, GlobalSD: 0.0195,
			RegressionMean: 0.4330, RegressionSD: 0.0180,
			PriorAlpha: 37.0, PriorBeta: 49.4,
		},
	}
	return model, estimates
}

func TestGenerateConsoleReport(t *testing.T) {
	model, estimates := sampleEstimates()

	out := GenerateConsoleReport(model, estimates, 10)

	assert.Contains(t, out, "2020-21")
	assert.Contains(t, out, "Joe Harris")
	assert.Contains(t, out, "Duncan Robinson")
	assert.Contains(t, out, "Sigma: 0.009500")
	assert.NotContains(t, out, "more")
}

func TestGenerateConsoleReportTruncates(t *testing.T) {
	model, estimates := sampleEstimates()

	out := GenerateConsoleReport(model, estimates, 1)

	assert.Contains(t, out, "Joe Harris")
	assert.NotContains(t, out, "Duncan Robinson")
	assert.Contains(t, out, "and 1 more")
}

func TestGenerateCSVExport(t *testing.T) {
	_, estimates := sampleEstimates()
	path := filepath.Join(t.TempDir(), "reports", "season.csv")

	require.NoError(t, GenerateCSVExport(estimates, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "player", rows[0][0])
	assert.Equal(t, "Joe Harris", rows[1][0])
	assert.Equal(t, "386", rows[1][2])
	assert.Equal(t, "0.474100", rows[1][4])
}
