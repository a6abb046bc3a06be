// Package report renders the per-season comparison table: raw shooting
// percentage against the globally shrunk and regression-shrunk estimates.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

// GenerateConsoleReport formats the top of the comparison table for terminal output
func GenerateConsoleReport(model *models.RegressionPriorModel, estimates []models.PosteriorEstimate, topN int) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Shooting Priors Report: %s\n", model.Season))
	builder.WriteString("==============================\n")
	builder.WriteString(fmt.Sprintf("Players: %d\n", model.RecordCount))
	builder.WriteString(fmt.Sprintf("Mu: %.4f + %.4f * log(attempts)\n", model.MuIntercept, model.MuSlope))
	builder.WriteString(fmt.Sprintf("Sigma: %.6f\n", model.Sigma))
	builder.WriteString(fmt.Sprintf("Log-Likelihood: %.2f (%d iterations)\n\n", model.LogLikelihood, model.Iterations))

	builder.WriteString(fmt.Sprintf("%-24s %8s %6s %8s %10s %12s\n",
		"Player", "3PA", "3PM", "Raw%", "Global%", "Regression%"))

	n := len(estimates)
	if topN > 0 && topN < n {
		n = topN
	}
	for _, est := range estimates[:n] {
		builder.WriteString(fmt.Sprintf("%-24s %8d %6d %7.1f%% %9.1f%% %11.1f%%\n",
			est.Player, est.Attempts, est.Made,
			est.RawPct*100, est.GlobalMean*100, est.RegressionMean*100))
	}
	if n < len(estimates) {
		builder.WriteString(fmt.Sprintf("... and %d more\n", len(estimates)-n))
	}

	return builder.String()
}

// GenerateCSVExport writes the full comparison table for spreadsheets
func GenerateCSVExport(estimates []models.PosteriorEstimate, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"player", "season", "attempts", "made", "raw_pct",
		"global_mean", "global_sd", "regression_mean", "regression_sd",
		"prior_alpha", "prior_beta",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, est := range estimates {
		row := []string{
			est.Player,
			est.Season,
			strconv.Itoa(est.Attempts),
			strconv.Itoa(est.Made),
			formatFloat(est.RawPct),
			formatFloat(est.GlobalMean),
			formatFloat(est.GlobalSD),
			formatFloat(est.RegressionMean),
			formatFloat(est.RegressionSD),
			formatFloat(est.PriorAlpha),
			formatFloat(est.PriorBeta),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write report row for %s: %w", est.Player, err)
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
