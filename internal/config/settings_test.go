package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
)

func TestSettingsValidation(t *testing.T) {
	t.Run("valid_default_settings", func(t *testing.T) {
		assert.NoError(t, config.DefaultSettings().Validate())
	})

	tests := []struct {
		name    string
		mod     func(*config.Settings)
		wantErr error
	}{
		{
			name:    "invalid_api_port_zero",
			mod:     func(s *config.Settings) { s.API.Port = 0 },
			wantErr: config.ErrInvalidAPIPort,
		},
		{
			name:    "invalid_api_port_too_high",
			mod:     func(s *config.Settings) { s.API.Port = 70000 },
			wantErr: config.ErrInvalidAPIPort,
		},
		{
			name:    "unknown_store_driver",
			mod:     func(s *config.Settings) { s.Store.Driver = "mongo" },
			wantErr: config.ErrUnknownStoreDriver,
		},
		{
			name:    "sqlite_without_dsn",
			mod:     func(s *config.Settings) { s.Store.Driver = "sqlite" },
			wantErr: config.ErrMissingStoreDSN,
		},
		{
			name:    "zero_token_ttl",
			mod:     func(s *config.Settings) { s.API.TokenTTL = 0 },
			wantErr: config.ErrInvalidTokenTTL,
		},
		{
			name:    "zero_poll_interval",
			mod:     func(s *config.Settings) { s.Replicate.PollInterval = 0 },
			wantErr: config.ErrInvalidPoll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultSettings()
			tt.mod(s)
			assert.ErrorIs(t, s.Validate(), tt.wantErr)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("BLOCKS_STORE", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("DOMAIN_TLDS", "com, dev ,")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	s := config.DefaultSettings()
	require.NoError(t, s.LoadFromEnv())

	assert.Equal(t, 9090, s.API.Port)
	assert.Equal(t, "redis", s.Store.Driver)
	assert.Equal(t, 3, s.Store.DB)
	assert.Equal(t, 2*time.Hour, s.API.TokenTTL)
	assert.Equal(t, []string{"com", "dev"}, s.Domains.TLDs)
	assert.Equal(t, "sk-test", s.LLM.APIKey)
}

func TestLoadFromEnvInvalidNumber(t *testing.T) {
	t.Setenv("API_PORT", "eighty")
	err := config.DefaultSettings().LoadFromEnv()
	assert.ErrorContains(t, err, "invalid API_PORT")
}

func TestLoadSettingsFile(t *testing.T) {
	t.Setenv("BLOCKS_ENV", "production")
	path := filepath.Join(t.TempDir(), "blocks.yaml")
	data := []byte("log-level: debug\nstore:\n  driver: sqlite\n  dsn: /tmp/blocks.db\napi:\n  port: 7070\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	s, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "sqlite", s.Store.Driver)
	assert.Equal(t, 7070, s.API.Port)
	assert.Equal(t, config.DefaultLLMModel, s.LLM.Model)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	t.Setenv("BLOCKS_ENV", "production")
	s, err := config.LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAPIPort, s.API.Port)
}
