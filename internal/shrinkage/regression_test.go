package shrinkage

import (
	"errors"
	"math"
	"testing"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

// syntheticSeason builds a deterministic overdispersed dataset where higher
// attempt volumes go with higher make rates.
func syntheticSeason() []*models.PlayerShotRecord {
	records := make([]*models.PlayerShotRecord, 0, 30)
	for i := 1; i <= 30; i++ {
		attempts := 20 * i
		rate := 0.25 + 0.015*math.Log(float64(attempts))
		made := rate * float64(attempts)
		spread := 2 * math.Sqrt(float64(attempts)*rate*(1-rate))
		if i%2 == 0 {
			made += spread
		} else {
			made -= spread
		}
		records = append(records, &models.PlayerShotRecord{
			Player:   string(rune('a' + i - 1)),
			Season:   "2022",
			Attempts: attempts,
			Made:     int(math.Round(made)),
		})
	}
	return records
}

func TestFitPriorModelDeterministic(t *testing.T) {
	records := syntheticSeason()
	cfg := DefaultFitConfig()

	first, err := FitPriorModel(records, "2022", cfg, nil)
	if err != nil {
		t.Fatalf("first fit failed: %v", err)
	}
	second, err := FitPriorModel(records, "2022", cfg, nil)
	if err != nil {
		t.Fatalf("second fit failed: %v", err)
	}

	if relDiff(first.MuIntercept, second.MuIntercept) > 1e-6 {
		t.Errorf("intercept differs: %v vs %v", first.MuIntercept, second.MuIntercept)
	}
	if relDiff(first.MuSlope, second.MuSlope) > 1e-6 {
		t.Errorf("slope differs: %v vs %v", first.MuSlope, second.MuSlope)
	}
	if relDiff(first.Sigma, second.Sigma) > 1e-6 {
		t.Errorf("sigma differs: %v vs %v", first.Sigma, second.Sigma)
	}
	if first.Sigma <= 0 {
		t.Errorf("fitted sigma must be positive, got %v", first.Sigma)
	}
}

func TestFittedMeanMonotonicInAttempts(t *testing.T) {
	records := syntheticSeason()
	model, err := FitPriorModel(records, "2022", DefaultFitConfig(), nil)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if model.MuSlope <= 0 {
		t.Fatalf("expected positive slope on rising synthetic data, got %v", model.MuSlope)
	}

	last := math.Inf(-1)
	for _, attempts := range []int{20, 80, 200, 600} {
		prior, err := PersonalPrior(model, attempts)
		if err != nil {
			t.Fatalf("prior at %d attempts: %v", attempts, err)
		}
		if prior.Mu <= last {
			t.Errorf("mu not increasing at %d attempts: %v <= %v", attempts, prior.Mu, last)
		}
		last = prior.Mu
	}
}

func TestFitRejectsBelowCutoff(t *testing.T) {
	records := syntheticSeason()
	records = append(records, &models.PlayerShotRecord{Player: "dnp", Season: "2022", Attempts: 0, Made: 0})

	_, err := FitPriorModel(records, "2022", DefaultFitConfig(), nil)
	if !errors.Is(err, models.ErrDegenerateInput) {
		t.Fatalf("got %v, want ErrDegenerateInput", err)
	}
}

func TestFitRejectsInvalidRecord(t *testing.T) {
	records := syntheticSeason()
	records = append(records, &models.PlayerShotRecord{Player: "impossible", Season: "2022", Attempts: 10, Made: 15})

	_, err := FitPriorModel(records, "2022", DefaultFitConfig(), nil)
	if !errors.Is(err, models.ErrInvalidRecord) {
		t.Fatalf("got %v, want ErrInvalidRecord", err)
	}
}

func TestFitSurfacesNonConvergence(t *testing.T) {
	records := syntheticSeason()
	cfg := FitConfig{MinAttempts: 1, Tolerance: 1e-14, MaxIterations: 3}

	_, err := FitPriorModel(records, "2022", cfg, nil)
	if !errors.Is(err, models.ErrNonConvergence) {
		t.Fatalf("got %v, want ErrNonConvergence", err)
	}
}

func TestBuildEstimatesSkipsInvalid(t *testing.T) {
	records := syntheticSeason()
	model, err := FitPriorModel(records, "2022", DefaultFitConfig(), nil)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	withBad := append([]*models.PlayerShotRecord{}, records...)
	withBad = append(withBad, &models.PlayerShotRecord{Player: "impossible", Season: "2022", Attempts: 10, Made: 15})

	table, err := BuildEstimates(model, models.DefaultGlobalPrior, withBad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Estimates) != len(records) {
		t.Errorf("got %d estimates, want %d", len(table.Estimates), len(records))
	}
	if len(table.Skipped) != 1 || table.Skipped[0] != "impossible" {
		t.Errorf("skipped %v, want [impossible]", table.Skipped)
	}
	for _, e := range table.Estimates {
		if e.Player == "impossible" {
			t.Error("rejected record leaked into the estimate table")
		}
	}
}

func TestBuildEstimatesShrinksLowVolumeHarder(t *testing.T) {
	records := syntheticSeason()
	model, err := FitPriorModel(records, "2022", DefaultFitConfig(), nil)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	table, err := BuildEstimates(model, models.DefaultGlobalPrior, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The lowest-volume player should move further from their raw rate than
	// the highest-volume player.
	var low, high models.PosteriorEstimate
	low.Attempts = math.MaxInt
	for _, e := range table.Estimates {
		if e.Attempts < low.Attempts {
			low = e
		}
		if e.Attempts > high.Attempts {
			high = e
		}
	}
	lowPull := math.Abs(low.RegressionMean - low.RawPct)
	highPull := math.Abs(high.RegressionMean - high.RawPct)
	if lowPull <= highPull {
		t.Errorf("low-volume pull %v not greater than high-volume pull %v", lowPull, highPull)
	}
}

func TestPredictAgainstKnownCoefficients(t *testing.T) {
	model := &models.RegressionPriorModel{
		Season:      "2022",
		MuIntercept: -1.5,
		MuSlope:     0.3,
		Sigma:       0.01,
		MinAttempts: 1,
	}

	// mu = -1.5 + 0.3*ln(10) ~ -0.809, outside (0,1).
	_, err := Predict(model, 10, 2)
	if !errors.Is(err, models.ErrDegenerateInput) {
		t.Fatalf("got %v, want ErrDegenerateInput", err)
	}
}

func TestPredictUnseenPlayer(t *testing.T) {
	records := syntheticSeason()
	model, err := FitPriorModel(records, "2022", DefaultFitConfig(), nil)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	before := *model
	record, err := Predict(model, 50, 20)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if *model != before {
		t.Error("prediction mutated the fitted model")
	}

	if record.Sigma != model.Sigma {
		t.Errorf("sigma %v, want shared %v", record.Sigma, model.Sigma)
	}
	wantMu := model.MuIntercept + model.MuSlope*math.Log(50)
	if math.Abs(record.Mu-wantMu) > 1e-12 {
		t.Errorf("mu %v, want %v", record.Mu, wantMu)
	}
	if math.Abs(record.PosteriorAlpha-(record.PriorAlpha+20)) > 1e-9 {
		t.Errorf("posterior alpha %v, want prior alpha + made", record.PosteriorAlpha)
	}
	if record.PosteriorMean <= 0 || record.PosteriorMean >= 1 {
		t.Errorf("posterior mean %v outside (0,1)", record.PosteriorMean)
	}
}

func TestPredictInvalidInput(t *testing.T) {
	records := syntheticSeason()
	model, err := FitPriorModel(records, "2022", DefaultFitConfig(), nil)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	for _, tc := range []struct{ attempts, made int }{
		{0, 0},
		{-5, 0},
		{10, 11},
	} {
		if _, err := Predict(model, tc.attempts, tc.made); !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("(%d, %d): got %v, want ErrInvalidInput", tc.attempts, tc.made, err)
		}
	}
}

func relDiff(a, b float64) float64 {
	if a == b {
		return 0
	}
	return math.Abs(a-b) / math.Max(math.Abs(a), math.Abs(b))
}
