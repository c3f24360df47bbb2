package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/logger"
	"github.com/dbsmedya/mitobreak/internal/store"
)

// loadConfig reads the config file, applies flag overrides and validates the
// result.
func loadConfig(extra func(*config.Config)) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(GetCLIOverrides())
	if extra != nil {
		extra(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupSignalHandler returns a context that is cancelled on SIGTERM or
// SIGINT. onSignal, if set, runs before cancellation.
func setupSignalHandler(onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// cancelNotice logs the shutdown request; the running stage completes first.
func cancelNotice(log *logger.Logger) func(os.Signal) {
	return func(sig os.Signal) {
		log.Warnw("Received shutdown signal - finishing current stage...", "signal", sig.String())
	}
}

// openStore connects to the results database when it is enabled. The
// returned close function is never nil.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store.Store, func(), error) {
	if !cfg.ResultsDB.Enabled {
		return nil, func() {}, nil
	}

	s, mgr, err := store.Open(ctx, &cfg.ResultsDB, log)
	if err != nil {
		return nil, func() {}, err
	}
	return s, func() { mgr.Close() }, nil
}

// sampleName returns name, or the base name of prefix when name is empty.
func sampleName(name, prefix string) string {
	if name != "" {
		return name
	}
	base := filepath.Base(prefix)
	if base == "." || base == string(filepath.Separator) {
		return "sample"
	}
	return strings.TrimSuffix(base, ".")
}
