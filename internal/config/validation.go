package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateProcessing()...)
	errors = append(errors, c.validateAligner()...)

	if c.ResultsDB.Enabled {
		errors = append(errors, c.validateResultsDB()...)
	}

	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateProcessing() ValidationErrors {
	var errors ValidationErrors

	if c.Processing.MinAlignmentLength <= 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.min_alignment_length",
			Message: "min_alignment_length must be positive",
		})
	}

	if c.Processing.Workers < 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.workers",
			Message: "workers cannot be negative",
		})
	}

	validFormats := map[string]bool{FormatPSL: true, FormatSAM: true, "": true}
	if !validFormats[c.Processing.Format] {
		errors = append(errors, ValidationError{
			Field:   "processing.format",
			Message: "format must be 'psl' or 'sam'",
		})
	}

	return errors
}

func (c *Config) validateAligner() ValidationErrors {
	var errors ValidationErrors

	if c.Aligner.BlatPath == "" {
		errors = append(errors, ValidationError{
			Field:   "aligner.blat_path",
			Message: "blat_path is required",
		})
	}

	return errors
}

// tableNamePattern restricts the results table to a plain MySQL identifier.
var tableNamePattern = regexp.MustCompile("^[a-zA-Z0-9_]+$")

func (c *Config) validateResultsDB() ValidationErrors {
	var errors ValidationErrors
	db := &c.ResultsDB

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "results_db.host",
			Message: "host is required when results_db is enabled",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "results_db.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   "results_db.user",
			Message: "user is required when results_db is enabled",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   "results_db.database",
			Message: "database name is required",
		})
	}

	if !tableNamePattern.MatchString(db.Table) {
		errors = append(errors, ValidationError{
			Field:   "results_db.table",
			Message: "table must contain only alphanumeric characters and underscores",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   "results_db.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "results_db.max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "results_db.max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
