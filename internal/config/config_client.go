package config

import (
	"fmt"
	"time"

	"dario.cat/mergo"
)

// ClientApp holds process-wide client settings.
type ClientApp struct {
	// LogLevel is the zerolog level name.
	LogLevel string
}

// ClientRemote holds the remote service settings used by the adapter.
type ClientRemote struct {
	// BaseURL is the root URL of the remote service.
	BaseURL string
	// WritePath is appended to BaseURL for mutations.
	WritePath string
	// ReadPath is appended to BaseURL for collection reads.
	ReadPath string
	// WriteTimeout bounds one mutation dispatch.
	WriteTimeout time.Duration
	// ReadTimeout bounds one collection fetch.
	ReadTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the sqlite file path or ":memory:".
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientConnectivity contains the probe settings of the connectivity monitor.
type ClientConnectivity struct {
	ProbeEndpoints    []string
	ProbeInterval     time.Duration
	ProbeTimeout      time.Duration
	InitialProbeDelay time.Duration
}

// ClientRefresh contains the background refresh scheduler settings.
type ClientRefresh struct {
	Schedule    string
	Collections []string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App          ClientApp
	Remote       ClientRemote
	Storage      ClientStorage
	Connectivity ClientConnectivity
	Refresh      ClientRefresh
}

// DefaultProbeEndpoints are independent, lightweight public endpoints. A
// single reachable one is enough to consider the device online.
var DefaultProbeEndpoints = []string{
	"https://www.google.com/generate_204",
	"https://www.gstatic.com/generate_204",
	"https://cp.cloudflare.com/generate_204",
	"https://connectivitycheck.gstatic.com/generate_204",
	"https://www.msftconnecttest.com/connecttest.txt",
}

// DefaultClientConfig returns the values used for every field no source
// sets.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		App: ClientApp{LogLevel: "info"},
		Remote: ClientRemote{
			WriteTimeout: 30 * time.Second,
			ReadTimeout:  30 * time.Second,
		},
		Storage: ClientStorage{DB: ClientDB{DSN: "offline.db"}},
		Connectivity: ClientConnectivity{
			ProbeEndpoints:    append([]string(nil), DefaultProbeEndpoints...),
			ProbeInterval:     30 * time.Second,
			ProbeTimeout:      3 * time.Second,
			InitialProbeDelay: 2 * time.Second,
		},
		Refresh: ClientRefresh{
			Schedule:    "@every 15m",
			Collections: []string{"Musicas", "Escalas"},
		},
	}
}

// GetClientConfig builds and validates the client configuration.
//
// It loads the merged [StructuredConfig] via [GetStructuredConfig], maps it
// onto [ClientConfig], fills unset fields from [DefaultClientConfig] and
// validates the result.
func GetClientConfig(flags *Flags) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(flags)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newClientConfig(cfg)
}

func newClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	clientCfg := &ClientConfig{
		App: ClientApp{LogLevel: cfg.App.LogLevel},
		Remote: ClientRemote{
			BaseURL:      cfg.Remote.BaseURL,
			WritePath:    cfg.Remote.WritePath,
			ReadPath:     cfg.Remote.ReadPath,
			WriteTimeout: cfg.Remote.WriteTimeout,
			ReadTimeout:  cfg.Remote.ReadTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Connectivity: ClientConnectivity{
			ProbeEndpoints:    cfg.Connectivity.ProbeEndpoints,
			ProbeInterval:     cfg.Connectivity.ProbeInterval,
			ProbeTimeout:      cfg.Connectivity.ProbeTimeout,
			InitialProbeDelay: cfg.Connectivity.InitialProbeDelay,
		},
		Refresh: ClientRefresh{
			Schedule:    cfg.Refresh.Schedule,
			Collections: cfg.Refresh.Collections,
		},
	}

	defaults := DefaultClientConfig()
	if err := mergo.Merge(clientCfg, defaults); err != nil {
		return nil, fmt.Errorf("error applying default configs: %w", err)
	}

	return clientCfg, clientCfg.validate()
}
