package main

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchron/internal/config"
)

func TestProvidersCommand(t *testing.T) {
	var out bytes.Buffer
	providersCmd.SetOut(&out)

	providersCmd.Run(providersCmd, nil)

	assert.Equal(t, "claude\ngemini\nopenai\n", out.String())
}

func TestRunCommand_RequiresInput(t *testing.T) {
	rootCmd.SetArgs([]string{"run"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "input" not set`)
}

func TestLogFlags(t *testing.T) {
	tests := []struct {
		cfg  config.LogConfig
		want int
	}{
		{config.LogConfig{Level: "info", Format: "console"}, log.LstdFlags},
		{config.LogConfig{}, log.LstdFlags},
		{config.LogConfig{Level: "debug", Format: "console"}, log.LstdFlags | log.Lshortfile},
		{config.LogConfig{Level: "info", Format: "utc"}, log.LstdFlags | log.Lmicroseconds | log.LUTC},
		{config.LogConfig{Level: "INFO", Format: "plain"}, 0},
	}
	for _, tt := range tests {
		got, err := logFlags(tt.cfg)
		require.NoError(t, err, tt.cfg)
		assert.Equal(t, tt.want, got, tt.cfg)
	}
}

func TestLogFlags_RejectsUnknownValues(t *testing.T) {
	_, err := logFlags(config.LogConfig{Level: "info", Format: "json"})
	assert.ErrorContains(t, err, "unknown log format")

	_, err = logFlags(config.LogConfig{Level: "trace", Format: "console"})
	assert.ErrorContains(t, err, "unknown log level")
}
