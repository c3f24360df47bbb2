// Package logger provides structured logging for mitobreak using zap.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/mitobreak/internal/config"
)

// Logger wraps zap.SugaredLogger with the sample, stage and query context
// used across a breakpoint run.
type Logger struct {
	*zap.SugaredLogger
	base *zap.Logger
}

// New creates a Logger from the logging section of the configuration.
func New(cfg *config.LoggingConfig) (*Logger, error) {
	core := zapcore.NewCore(buildEncoder(cfg.Format), buildWriters(cfg.Output), parseLevel(cfg.Level))
	return FromCore(core), nil
}

// FromCore wraps an existing zap core, adding caller info and error stack traces.
func FromCore(core zapcore.Core) *Logger {
	return wrap(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
}

// NewDefault logs text at info level to stderr.
func NewDefault() *Logger {
	l, _ := New(&config.LoggingConfig{Level: "info", Format: "text", Output: "stderr"})
	return l
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return wrap(zap.NewNop())
}

func wrap(base *zap.Logger) *Logger {
	return &Logger{SugaredLogger: base.Sugar(), base: base}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// buildEncoder returns a JSON encoder for "json" and a colored console
// encoder otherwise.
func buildEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// buildWriters resolves the output target. Reports may be streamed to
// stdout, so file output is mirrored to stderr.
func buildWriters(output string) zapcore.WriteSyncer {
	switch output {
	case "stderr", "":
		return zapcore.AddSync(os.Stderr)
	case "stdout":
		return zapcore.AddSync(os.Stdout)
	}

	file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return zapcore.AddSync(os.Stderr)
	}
	return zapcore.NewMultiWriteSyncer(zapcore.AddSync(file), zapcore.AddSync(os.Stderr))
}

func (l *Logger) with(key, value string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(key, value), base: l.base}
}

// WithSample tags entries with the sample being processed.
func (l *Logger) WithSample(sample string) *Logger { return l.with("sample", sample) }

// WithStage tags entries with a pipeline stage name.
func (l *Logger) WithStage(stage string) *Logger { return l.with("stage", stage) }

// WithQuery tags entries with a query read name.
func (l *Logger) WithQuery(queryID string) *Logger { return l.with("query", queryID) }

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
