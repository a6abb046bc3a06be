package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const csvSourceName = "csv"

// CSVFileSource implements SeasonSource over a static season table on disk.
// Expected header: player,attempts,made with one row per player-season.
type CSVFileSource struct {
	filePath string
	enabled  bool
	logger   *logrus.Logger
}

// NewCSVFileSource creates a season source backed by a CSV file
func NewCSVFileSource(filePath string, enabled bool, logger *logrus.Logger) *CSVFileSource {
	return &CSVFileSource{
		filePath: filePath,
		enabled:  enabled,
		logger:   logger,
	}
}

// Name returns the name of the data source
func (s *CSVFileSource) Name() string {
	return csvSourceName
}

// IsEnabled returns whether this data source is currently enabled
func (s *CSVFileSource) IsEnabled() bool {
	return s.enabled
}

// FetchSeasonTotals reads the whole table; the season label is taken from
// config since a flat file carries no season of its own
func (s *CSVFileSource) FetchSeasonTotals(ctx context.Context, season string) ([]PlayerSeasonData, error) {
	if !s.enabled {
		return nil, NewDataSourceError(csvSourceName, ErrCodeUnknown, dataSourceDisabledMsg, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.filePath)
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNotFound,
			fmt.Sprintf("failed to open %s", s.filePath), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "failed to parse CSV", err)
	}
	if len(records) == 0 {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "empty file", nil)
	}

	cols, err := headerIndex(records[0])
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, err.Error(), nil)
	}

	rows := make([]PlayerSeasonData, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseCSVRow(record, cols, season)
		if err != nil {
			s.logger.WithField("line", i+2).Warnf("Skipping unparseable row: %v", err)
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"player", "attempts", "made"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

func parseCSVRow(record []string, cols map[string]int, season string) (PlayerSeasonData, error) {
	get := func(name string) string {
		idx := cols[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	attempts, err := strconv.Atoi(get("attempts"))
	if err != nil {
		return PlayerSeasonData{}, fmt.Errorf("attempts: %w", err)
	}
	made, err := strconv.Atoi(get("made"))
	if err != nil {
		return PlayerSeasonData{}, fmt.Errorf("made: %w", err)
	}

	row := PlayerSeasonData{
		Player:   get("player"),
		Season:   season,
		Attempts: attempts,
		Made:     made,
	}

	// pct column is optional; derive when attempts allow
	if idx, ok := cols["pct"]; ok && idx < len(record) && get("pct") != "" {
		pct, err := decimal.NewFromString(get("pct"))
		if err == nil {
			row.Pct = &pct
		}
	} else if attempts > 0 {
		pct := decimal.NewFromInt(int64(made)).Div(decimal.NewFromInt(int64(attempts)))
		row.Pct = &pct
	}

	return row, nil
}
