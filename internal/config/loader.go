package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadOrDefault loads configPath when it exists and falls back to
// DefaultConfig otherwise. An empty path always yields the defaults.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(configPath)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) error {
	cfg.Reference.Path = expandEnvVar(cfg.Reference.Path)
	cfg.Aligner.BlatPath = expandEnvVar(cfg.Aligner.BlatPath)
	cfg.Output.Prefix = expandEnvVar(cfg.Output.Prefix)

	cfg.ResultsDB.Host = expandEnvVar(cfg.ResultsDB.Host)
	cfg.ResultsDB.User = expandEnvVar(cfg.ResultsDB.User)
	cfg.ResultsDB.Password = expandEnvVar(cfg.ResultsDB.Password)
	cfg.ResultsDB.Database = expandEnvVar(cfg.ResultsDB.Database)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// Overrides carries CLI flag values that take precedence over the file.
// Zero values mean "not set".
type Overrides struct {
	LogLevel           string
	LogFormat          string
	MinAlignmentLength int
	Workers            int
	Format             string
	BlatPath           string
	VCF                bool
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.MinAlignmentLength > 0 {
		c.Processing.MinAlignmentLength = o.MinAlignmentLength
	}
	if o.Workers > 0 {
		c.Processing.Workers = o.Workers
	}
	if o.Format != "" {
		c.Processing.Format = o.Format
	}
	if o.BlatPath != "" {
		c.Aligner.BlatPath = o.BlatPath
	}
	if o.VCF {
		c.Output.VCF = true
	}
}
