package config_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/kashguard/go-sign-bridge/internal/config"
)

func TestDefaultServiceConfigFromEnv(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()

	assert.Equal(t, "127.0.0.1:0", cfg.Bridge.ListenAddress)
	assert.Equal(t, "dydx-mainnet-1", cfg.Provisioning.ChainID)
	assert.Equal(t, 25*time.Minute, cfg.Provisioning.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.Provisioning.PollInterval)
	assert.Equal(t, 15, cfg.Provisioning.PollMaxAttempts)
	assert.NotEmpty(t, cfg.SessionStore.Path)
	assert.Equal(t, zerolog.InfoLevel, cfg.Logger.Level)
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("SIGNBRIDGE_CHAIN_ID", "dydx-testnet-4")
	t.Setenv("SIGNBRIDGE_SESSION_TTL", "10m")
	t.Setenv("SIGNBRIDGE_POLL_MAX_ATTEMPTS", "5")
	t.Setenv("SIGNBRIDGE_LEDGER_ENDPOINT", "http://localhost:1317")
	t.Setenv("SIGNBRIDGE_LOG_LEVEL", "debug")
	t.Setenv("SIGNBRIDGE_SESSION_FILE", "/tmp/test-session.json")

	cfg := config.DefaultServiceConfigFromEnv()

	assert.Equal(t, "dydx-testnet-4", cfg.Provisioning.ChainID)
	assert.Equal(t, 10*time.Minute, cfg.Provisioning.SessionTTL)
	assert.Equal(t, 5, cfg.Provisioning.PollMaxAttempts)
	assert.Equal(t, "http://localhost:1317", cfg.Ledger.Endpoint)
	assert.Equal(t, zerolog.DebugLevel, cfg.Logger.Level)
	assert.Equal(t, "/tmp/test-session.json", cfg.SessionStore.Path)
}

func TestConfigInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("SIGNBRIDGE_SESSION_TTL", "not-a-duration")
	t.Setenv("SIGNBRIDGE_POLL_MAX_ATTEMPTS", "NaN")
	t.Setenv("SIGNBRIDGE_LOG_LEVEL", "verbose")

	cfg := config.DefaultServiceConfigFromEnv()

	assert.Equal(t, 25*time.Minute, cfg.Provisioning.SessionTTL)
	assert.Equal(t, 15, cfg.Provisioning.PollMaxAttempts)
	assert.Equal(t, zerolog.InfoLevel, cfg.Logger.Level)
}
