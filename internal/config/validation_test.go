package config

import (
	"errors"
	"strings"
	"testing"
)

func validResultsDB() ResultsDBConfig {
	return ResultsDBConfig{
		Enabled:  true,
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Password: "pass",
		Database: "mito",
		Table:    "breakpoint_calls",
	}
}

func TestValidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ResultsDB = validResultsDB()

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}

func TestInvalidMinAlignmentLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.MinAlignmentLength = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for zero min_alignment_length")
	}
	if !strings.Contains(err.Error(), "processing.min_alignment_length") {
		t.Errorf("expected error to mention min_alignment_length, got: %v", err)
	}
}

func TestInvalidFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.Format = "bed"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for unknown format")
	}
	if !strings.Contains(err.Error(), "processing.format") {
		t.Errorf("expected error to mention processing.format, got: %v", err)
	}
}

func TestNegativeWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.Workers = -2

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "processing.workers") {
		t.Errorf("expected processing.workers error, got: %v", err)
	}
}

func TestMissingBlatPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Aligner.BlatPath = ""

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "aligner.blat_path") {
		t.Errorf("expected aligner.blat_path error, got: %v", err)
	}
}

func TestResultsDBIgnoredWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ResultsDB.Enabled = false
	cfg.ResultsDB.Host = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled results_db should not be validated, got: %v", err)
	}
}

func TestResultsDBValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ResultsDBConfig)
		field  string
	}{
		{"missing host", func(db *ResultsDBConfig) { db.Host = "" }, "results_db.host"},
		{"bad port", func(db *ResultsDBConfig) { db.Port = 70000 }, "results_db.port"},
		{"missing user", func(db *ResultsDBConfig) { db.User = "" }, "results_db.user"},
		{"missing database", func(db *ResultsDBConfig) { db.Database = "" }, "results_db.database"},
		{"unsafe table", func(db *ResultsDBConfig) { db.Table = "calls; DROP TABLE x" }, "results_db.table"},
		{"bad tls", func(db *ResultsDBConfig) { db.TLS = "maybe" }, "results_db.tls"},
		{"negative pool", func(db *ResultsDBConfig) { db.MaxConnections = -1 }, "results_db.max_connections"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ResultsDB = validResultsDB()
			tt.mutate(&cfg.ResultsDB)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error for %s", tt.field)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to mention %s, got: %v", tt.field, err)
			}
		})
	}
}

func TestInvalidLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors for logging")
	}

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 2 {
		t.Errorf("expected 2 validation errors, got %d: %v", len(verrs), verrs)
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Message: "first"},
		{Field: "b", Message: "second"},
	}
	msg := errs.Error()
	if !strings.HasPrefix(msg, "validation failed:") {
		t.Errorf("unexpected message prefix: %q", msg)
	}
	if !strings.Contains(msg, "a: first") || !strings.Contains(msg, "b: second") {
		t.Errorf("expected both errors in message, got %q", msg)
	}

	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should have empty message")
	}
}
