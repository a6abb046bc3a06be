// Package config provides configuration management for the shooting-priors pipeline.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	DataSource DataSourceConfig `mapstructure:"data_source" validate:"required"`
	Prior      PriorConfig      `mapstructure:"prior" validate:"required"`
	PriorModel PriorModelConfig `mapstructure:"prior_model" validate:"required"`
	Query      QueryConfig      `mapstructure:"query" validate:"required"`
	Report     ReportConfig     `mapstructure:"report" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// DataSourceConfig represents season-table ingestion configuration
type DataSourceConfig struct {
	Sources  []SourceConfig `mapstructure:"sources" validate:"required,min=1,dive"`
	Season   string         `mapstructure:"season" validate:"required,season"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// SourceConfig represents a single season-stats provider
type SourceConfig struct {
	Name      string  `mapstructure:"name" validate:"required,oneof=balldontlie csv"`
	Enabled   bool    `mapstructure:"enabled"`
	BaseURL   string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey    string  `mapstructure:"api_key"`
	FilePath  string  `mapstructure:"file_path"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
}

// ScheduleConfig represents optional cron-driven re-ingestion
type ScheduleConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	CronExpression string `mapstructure:"cron_expression"`
}

// PriorConfig represents the shared league-wide Beta prior. The defaults are
// pinned from a prior external analysis and only substituted, never refit.
type PriorConfig struct {
	Alpha float64 `mapstructure:"alpha" validate:"required,gt=0"`
	Beta  float64 `mapstructure:"beta" validate:"required,gt=0"`
}

// PriorModelConfig represents the regression fit settings
type PriorModelConfig struct {
	MinAttempts   int     `mapstructure:"min_attempts" validate:"required,gte=1"`
	Tolerance     float64 `mapstructure:"tolerance" validate:"required,gt=0"`
	MaxIterations int     `mapstructure:"max_iterations" validate:"required,gt=0"`
}

// QueryConfig represents the ad hoc posterior query cache settings
type QueryConfig struct {
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize    int `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// ReportConfig represents comparison-report output settings
type ReportConfig struct {
	OutputPath string `mapstructure:"output_path" validate:"required"`
	TopN       int    `mapstructure:"top_n" validate:"required,gt=0"`
}

// MetricsConfig represents metrics exposition configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// CacheTTL returns the query cache TTL as a duration
func (q QueryConfig) CacheTTL() time.Duration {
	return time.Duration(q.CacheTTLSeconds) * time.Second
}

// EnabledSources returns the names of all enabled providers
func (d DataSourceConfig) EnabledSources() []string {
	var names []string
	for _, s := range d.Sources {
		if s.Enabled {
			names = append(names, s.Name)
		}
	}
	return names
}

// ConnString builds a pgx-compatible connection string
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}
