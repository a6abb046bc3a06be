package datasource

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// SeasonSource defines the interface for fetching per-player season shooting
// totals from external providers
type SeasonSource interface {
	// FetchSeasonTotals retrieves three-point totals for every player in a season
	FetchSeasonTotals(ctx context.Context, season string) ([]PlayerSeasonData, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// PlayerSeasonData represents normalized per-player totals from any data source
type PlayerSeasonData struct {
	SourceID string           `json:"source_id"` // Provider's unique player ID
	Player   string           `json:"player"`    // Player display name
	Season   string           `json:"season"`    // Season label (e.g., "2022")
	Attempts int              `json:"attempts"`  // Three-point attempts
	Made     int              `json:"made"`      // Three-point makes
	Pct      *decimal.Decimal `json:"pct"`       // Raw shooting percentage if the provider reports one
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

const dataSourceDisabledMsg = "data source is disabled"

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
