package cmd

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/mitobreak/internal/config"
	"github.com/dbsmedya/mitobreak/internal/logger"
)

func TestSetupSignalHandler(t *testing.T) {
	ctx, cancel := setupSignalHandler(nil)

	select {
	case <-ctx.Done():
		t.Fatal("context should not be cancelled immediately")
	default:
	}

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
}

func TestSetupSignalHandler_Signal(t *testing.T) {
	if os.Getenv("CI") == "true" {
		t.Skip("Skipping signal test in CI environment")
	}

	received := make(chan os.Signal, 1)
	ctx, cancel := setupSignalHandler(func(sig os.Signal) { received <- sig })
	defer cancel()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled after receiving signal")
	}
	assert.Equal(t, syscall.SIGTERM, <-received)
}

func TestOpenStore_Disabled(t *testing.T) {
	s, closeFn, err := openStore(t.Context(), config.DefaultConfig(), logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.NotNil(t, closeFn)
	closeFn()
}

func TestLoadConfig_AppliesExtraAndValidates(t *testing.T) {
	original := cfgFile
	defer func() { cfgFile = original }()
	cfgFile = missingConfig(t)

	cfg, err := loadConfig(func(c *config.Config) { c.Output.VCF = true })
	require.NoError(t, err)
	assert.True(t, cfg.Output.VCF)

	_, err = loadConfig(func(c *config.Config) { c.Processing.Format = "bed" })
	var verrs config.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
