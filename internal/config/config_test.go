package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchron/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.Generation.Primary.Provider)
	assert.Equal(t, 300, cfg.Generation.Primary.TimeoutSecs)
	assert.Equal(t, 100000, cfg.Pipeline.ChunkMaxChars)
	assert.Equal(t, 120000, cfg.Pipeline.BatchTokenBudget)
	assert.Equal(t, 5, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.BackoffBase)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.InterBatchDelay)
	assert.Equal(t, 15000, cfg.Pipeline.AuditDocMaxChars)
	assert.False(t, cfg.Pipeline.VerifyFailFast)
	assert.False(t, cfg.DB.Enabled())
	assert.Nil(t, cfg.Generation.FallbackConfig())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MEDCHRON_PIPELINE_MAX_ATTEMPTS", "3")
	t.Setenv("MEDCHRON_PIPELINE_INTER_BATCH_DELAY", "250ms")
	t.Setenv("MEDCHRON_GENERATION_FALLBACK_PROVIDER", "openai")
	t.Setenv("MEDCHRON_GENERATION_FALLBACK_MODEL", "gpt-4.1-mini")
	t.Setenv("MEDCHRON_DB_DRIVER", "sqlite")
	t.Setenv("MEDCHRON_DB_SQLITE_PATH", "/tmp/runs.db")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.InterBatchDelay)

	fb := cfg.Generation.FallbackConfig()
	require.NotNil(t, fb)
	assert.Equal(t, "openai", fb.Provider)
	assert.Equal(t, "gpt-4.1-mini", fb.Model)

	assert.True(t, cfg.DB.Enabled())
	assert.Equal(t, "/tmp/runs.db", cfg.DB.DSN())
}

func TestLoad_RejectsNonPositiveBudget(t *testing.T) {
	t.Setenv("MEDCHRON_PIPELINE_BATCH_TOKEN_BUDGET", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_PostgresDSN(t *testing.T) {
	d := config.DBConfig{
		Driver: "postgres", User: "u", Password: "p", Host: "db", Port: 5433, Name: "runs", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@db:5433/runs?sslmode=disable", d.DSN())
}

func TestPORTEnvFallback(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("MEDCHRON_SERVER_CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
}
