package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/challenge-tracker/internal/models"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("margin", validateMargin)
	_ = v.RegisterValidation("source", validateSource)
	_ = v.RegisterValidation("sources", validateSources)

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

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateMargin checks the configured market margin range.
func validateMargin(fl validator.FieldLevel) bool {
	m := fl.Field().Float()
	return m >= models.MinMargin && m <= models.MaxMargin
}

// validateSource checks a single bookmaker source name.
func validateSource(fl validator.FieldLevel) bool {
	return models.Source(fl.Field().String()).IsValid()
}

// validateSources checks a source priority list: every entry recognized,
// no duplicates.
func validateSources(fl validator.FieldLevel) bool {
	names, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	seen := make(map[string]bool)
	for _, name := range names {
		if !models.Source(name).IsValid() || seen[name] {
			return false
		}
		seen[name] = true
	}
	return true
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Persistence.Enabled {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("persistence enabled but database host/name/user incomplete")
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
		if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("max_idle_connections cannot exceed max_connections")
		}
	}

	enabled := 0
	for _, feed := range cfg.Feeds.Sources {
		if feed.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one odds feed must be enabled")
	}

	if cfg.Tracker.RefreshIntervalSeconds < cfg.Feeds.TimeoutSeconds {
		return fmt.Errorf("refresh_interval_seconds must not be shorter than the feed timeout")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max", "gt", "gte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "margin":
			errMsg += fmt.Sprintf("- Field '%s' must be between %.2f and %.2f\n", field, models.MinMargin, models.MaxMargin)
		case "source", "sources":
			errMsg += fmt.Sprintf("- Field '%s' contains an unrecognized or duplicated bookmaker source\n", field)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// SourcePriority converts the configured priority names into sources,
// falling back to the default order when unset.
func (c *OddsConfig) SourcePriorityList() []models.Source {
	if len(c.SourcePriority) == 0 {
		return models.DefaultSourcePriority
	}
	priority := make([]models.Source, 0, len(c.SourcePriority))
	for _, name := range c.SourcePriority {
		priority = append(priority, models.Source(name))
	}
	return priority
}
