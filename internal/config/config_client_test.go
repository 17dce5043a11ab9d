package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientConfig_FillsDefaults(t *testing.T) {
	cfg, err := newClientConfig(&StructuredConfig{
		Remote: Remote{BaseURL: "https://remote.example.com"},
	})
	require.NoError(t, err)

	def := DefaultClientConfig()
	assert.Equal(t, "https://remote.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, def.Storage.DB.DSN, cfg.Storage.DB.DSN)
	assert.Equal(t, 30*time.Second, cfg.Remote.WriteTimeout)
	assert.Equal(t, DefaultProbeEndpoints, cfg.Connectivity.ProbeEndpoints)
	assert.Equal(t, 3*time.Second, cfg.Connectivity.ProbeTimeout)
	assert.Equal(t, 30*time.Second, cfg.Connectivity.ProbeInterval)
	assert.Equal(t, 2*time.Second, cfg.Connectivity.InitialProbeDelay)
	assert.Equal(t, "@every 15m", cfg.Refresh.Schedule)
	assert.Equal(t, []string{"Musicas", "Escalas"}, cfg.Refresh.Collections)
}

func TestNewClientConfig_ExplicitValuesWin(t *testing.T) {
	cfg, err := newClientConfig(&StructuredConfig{
		Storage: Storage{DB: DB{DSN: ":memory:"}},
		Remote:  Remote{BaseURL: "http://localhost:8080", WriteTimeout: time.Second},
		Connectivity: Connectivity{
			ProbeEndpoints: []string{"http://localhost:9/204"},
			ProbeTimeout:   time.Second,
		},
		Refresh: Refresh{Collections: []string{"Escalas"}},
	})
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.Storage.DB.DSN)
	assert.Equal(t, time.Second, cfg.Remote.WriteTimeout)
	assert.Equal(t, []string{"http://localhost:9/204"}, cfg.Connectivity.ProbeEndpoints)
	assert.Equal(t, []string{"Escalas"}, cfg.Refresh.Collections)
}

func TestDefaultClientConfig_ReturnsCopies(t *testing.T) {
	a := DefaultClientConfig()
	a.Connectivity.ProbeEndpoints[0] = "mutated"
	assert.NotEqual(t, "mutated", DefaultClientConfig().Connectivity.ProbeEndpoints[0])
}

func TestClientConfigValidate(t *testing.T) {
	valid := func() ClientConfig {
		c := DefaultClientConfig()
		c.Remote.BaseURL = "https://remote.example.com"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *ClientConfig)
		wantErr error
	}{
		{"valid", func(c *ClientConfig) {}, nil},
		{"missing base url", func(c *ClientConfig) { c.Remote.BaseURL = "" }, ErrInvalidRemoteConfigs},
		{"ftp base url", func(c *ClientConfig) { c.Remote.BaseURL = "ftp://x" }, ErrInvalidRemoteConfigs},
		{"negative timeout", func(c *ClientConfig) { c.Remote.WriteTimeout = -time.Second }, ErrInvalidRemoteConfigs},
		{"empty dsn", func(c *ClientConfig) { c.Storage.DB.DSN = " " }, ErrInvalidStorageConfigs},
		{"no endpoints", func(c *ClientConfig) { c.Connectivity.ProbeEndpoints = nil }, ErrInvalidConnectivityConfigs},
		{"bad endpoint", func(c *ClientConfig) { c.Connectivity.ProbeEndpoints = []string{"not a url"} }, ErrInvalidConnectivityConfigs},
		{"zero probe timeout", func(c *ClientConfig) { c.Connectivity.ProbeTimeout = 0 }, ErrInvalidConnectivityConfigs},
		{"timeout above interval", func(c *ClientConfig) { c.Connectivity.ProbeTimeout = time.Hour }, ErrInvalidConnectivityConfigs},
		{"bad schedule", func(c *ClientConfig) { c.Refresh.Schedule = "every so often" }, ErrInvalidRefreshConfigs},
		{"no collections", func(c *ClientConfig) { c.Refresh.Collections = nil }, ErrInvalidRefreshConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
