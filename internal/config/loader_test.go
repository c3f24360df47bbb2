package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configContent := `
reference:
  path: /data/chrM.fa

processing:
  min_alignment_length: 30
  workers: 4
  format: sam
  skip_header: false

aligner:
  blat_path: /opt/blat/blat
  keep_intermediate: true

output:
  prefix: sample_a
  vcf: true

logging:
  level: debug
  format: json
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Reference.Path != "/data/chrM.fa" {
		t.Errorf("expected reference path '/data/chrM.fa', got %s", cfg.Reference.Path)
	}
	if cfg.Processing.MinAlignmentLength != 30 {
		t.Errorf("expected min_alignment_length 30, got %d", cfg.Processing.MinAlignmentLength)
	}
	if cfg.Processing.Workers != 4 {
		t.Errorf("expected workers 4, got %d", cfg.Processing.Workers)
	}
	if cfg.Processing.Format != FormatSAM {
		t.Errorf("expected format sam, got %s", cfg.Processing.Format)
	}
	if cfg.Processing.SkipHeader {
		t.Errorf("expected skip_header false")
	}
	if cfg.Aligner.BlatPath != "/opt/blat/blat" {
		t.Errorf("expected blat path '/opt/blat/blat', got %s", cfg.Aligner.BlatPath)
	}
	if !cfg.Aligner.KeepIntermediate {
		t.Errorf("expected keep_intermediate true")
	}
	if cfg.Output.Prefix != "sample_a" || !cfg.Output.VCF {
		t.Errorf("unexpected output config: %+v", cfg.Output)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}

	// Untouched sections keep their defaults
	if cfg.ResultsDB.Port != 3306 {
		t.Errorf("expected default results_db port 3306, got %d", cfg.ResultsDB.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Processing.MinAlignmentLength != DefaultMinAlignmentLength {
		t.Errorf("expected defaults for empty path")
	}

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error for absent file: %v", err)
	}
	if cfg.Aligner.BlatPath != "blat" {
		t.Errorf("expected defaults for absent file")
	}
}

func TestLoadFromStructYAML(t *testing.T) {
	src := DefaultConfig()
	src.Reference.Path = "ref.fa"
	src.ResultsDB.Enabled = true
	src.ResultsDB.Host = "db.internal"
	src.ResultsDB.User = "mito"
	src.ResultsDB.Database = "calls"

	data, err := yaml.Marshal(src)
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}

	configPath := filepath.Join(t.TempDir(), "roundtrip.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.ResultsDB.Host != "db.internal" || !cfg.ResultsDB.Enabled {
		t.Errorf("unexpected results_db: %+v", cfg.ResultsDB)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got: %v", err)
	}
}

func TestEnvVarSubstitution(t *testing.T) {
	t.Setenv("MITO_REF", "/refs/rCRS.fa")
	t.Setenv("MITO_DB_PASSWORD", "s3cret")

	v := viper.New()
	v.Set("reference.path", "${MITO_REF}")
	v.Set("results_db.password", "$MITO_DB_PASSWORD")
	v.Set("results_db.user", "${UNSET_MITO_VAR}")

	cfg, err := LoadFromViper(v)
	if err != nil {
		t.Fatalf("LoadFromViper failed: %v", err)
	}

	if cfg.Reference.Path != "/refs/rCRS.fa" {
		t.Errorf("expected substituted reference path, got %s", cfg.Reference.Path)
	}
	if cfg.ResultsDB.Password != "s3cret" {
		t.Errorf("expected substituted password, got %s", cfg.ResultsDB.Password)
	}
	if cfg.ResultsDB.User != "${UNSET_MITO_VAR}" {
		t.Errorf("expected unset variable left intact, got %s", cfg.ResultsDB.User)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()

	cfg.ApplyOverrides(Overrides{})
	if cfg.Processing.MinAlignmentLength != 25 || cfg.Logging.Level != "info" {
		t.Errorf("empty overrides should not change config")
	}

	cfg.ApplyOverrides(Overrides{
		LogLevel:           "debug",
		LogFormat:          "json",
		MinAlignmentLength: 40,
		Workers:            2,
		Format:             FormatSAM,
		BlatPath:           "/usr/local/bin/blat",
		VCF:                true,
	})

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging overrides not applied: %+v", cfg.Logging)
	}
	if cfg.Processing.MinAlignmentLength != 40 || cfg.Processing.Workers != 2 {
		t.Errorf("processing overrides not applied: %+v", cfg.Processing)
	}
	if cfg.Processing.Format != FormatSAM {
		t.Errorf("format override not applied")
	}
	if cfg.Aligner.BlatPath != "/usr/local/bin/blat" {
		t.Errorf("blat path override not applied")
	}
	if !cfg.Output.VCF {
		t.Errorf("vcf override not applied")
	}
}
