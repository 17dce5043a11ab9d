// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_AllFields(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"CONFIG":                           "/path/to/config.yaml",
		"APP_LOG_LEVEL":                    "warn",
		"STORAGE_DB_DSN":                   "/var/lib/offline.db",
		"REMOTE_BASE_URL":                  "https://remote.example.com/exec",
		"REMOTE_WRITE_PATH":                "/write",
		"REMOTE_READ_PATH":                 "/read",
		"REMOTE_WRITE_TIMEOUT":             "20s",
		"REMOTE_READ_TIMEOUT":              "40s",
		"CONNECTIVITY_PROBE_ENDPOINTS":     "https://a.example/204,https://b.example/204",
		"CONNECTIVITY_PROBE_INTERVAL":      "1m",
		"CONNECTIVITY_PROBE_TIMEOUT":       "2s",
		"CONNECTIVITY_INITIAL_PROBE_DELAY": "500ms",
		"REFRESH_SCHEDULE":                 "@every 5m",
		"REFRESH_COLLECTIONS":              "Musicas",
	}
	for k, v := range envVars {
		t.Setenv(k, v)
	}

	// Act
	cfg, err := parseEnv()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "/path/to/config.yaml", cfg.FilePath)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, "/var/lib/offline.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "https://remote.example.com/exec", cfg.Remote.BaseURL)
	assert.Equal(t, "/write", cfg.Remote.WritePath)
	assert.Equal(t, "/read", cfg.Remote.ReadPath)
	assert.Equal(t, 20*time.Second, cfg.Remote.WriteTimeout)
	assert.Equal(t, 40*time.Second, cfg.Remote.ReadTimeout)
	assert.Equal(t, []string{"https://a.example/204", "https://b.example/204"}, cfg.Connectivity.ProbeEndpoints)
	assert.Equal(t, time.Minute, cfg.Connectivity.ProbeInterval)
	assert.Equal(t, 2*time.Second, cfg.Connectivity.ProbeTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Connectivity.InitialProbeDelay)
	assert.Equal(t, "@every 5m", cfg.Refresh.Schedule)
	assert.Equal(t, []string{"Musicas"}, cfg.Refresh.Collections)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	t.Setenv("CONNECTIVITY_PROBE_TIMEOUT", "invalid_duration")

	cfg, err := parseEnv()

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "env")
}

func TestParseEnv_DurationFormats(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"hours", "2h", 2 * time.Hour},
		{"minutes", "45m", 45 * time.Minute},
		{"seconds", "30s", 30 * time.Second},
		{"combined", "1h30m", 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REMOTE_WRITE_TIMEOUT", tt.envValue)

			cfg, err := parseEnv()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Remote.WriteTimeout)
		})
	}
}

func TestParseEnv_ListsAreTrimmed(t *testing.T) {
	t.Setenv("CONNECTIVITY_PROBE_ENDPOINTS", " https://a.example/204 , ,https://b.example/204")
	t.Setenv("REFRESH_COLLECTIONS", "Musicas, Escalas ")

	cfg, err := parseEnv()

	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/204", "https://b.example/204"}, cfg.Connectivity.ProbeEndpoints)
	assert.Equal(t, []string{"Musicas", "Escalas"}, cfg.Refresh.Collections)
}

func TestParseEnv_UnsetListsStayNil(t *testing.T) {
	cfg, err := parseEnv()

	require.NoError(t, err)
	assert.Nil(t, cfg.Connectivity.ProbeEndpoints)
	assert.Nil(t, cfg.Refresh.Collections)
}
