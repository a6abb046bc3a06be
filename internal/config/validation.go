// Package config provides configuration management for the shooting-priors pipeline.
package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var seasonPattern = regexp.MustCompile(`^\d{4}(-\d{2})?$`)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("season", validateSeason)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateSeason validates the season field ("2022" or "2021-22")
func validateSeason(fl validator.FieldLevel) bool {
	return seasonPattern.MatchString(fl.Field().String())
}

// validateCrossField applies validations spanning multiple fields
func validateCrossField(cfg *Config) error {
	if len(cfg.DataSource.EnabledSources()) == 0 {
		return fmt.Errorf("at least one data source must be enabled")
	}

	for _, src := range cfg.DataSource.Sources {
		if !src.Enabled {
			continue
		}
		switch src.Name {
		case "csv":
			if src.FilePath == "" {
				return fmt.Errorf("csv source requires file_path")
			}
		case "balldontlie":
			if src.BaseURL == "" {
				return fmt.Errorf("balldontlie source requires base_url")
			}
		}
	}

	if cfg.DataSource.Schedule.Enabled && cfg.DataSource.Schedule.CronExpression == "" {
		return fmt.Errorf("schedule requires cron_expression when enabled")
	}

	return nil
}

// formatValidationErrors converts validator errors into a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	msg := "configuration validation failed:"
	for _, e := range errs {
		msg += fmt.Sprintf(" field '%s' failed on '%s' rule;", e.Namespace(), e.Tag())
	}
	return fmt.Errorf("%s", msg)
}
