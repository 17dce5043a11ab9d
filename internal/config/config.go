// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// offline sync client. It aggregates all sub-configurations and is populated
// by merging values from an optional config file, environment variables and
// command-line flags.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-wide settings such as the log level.
	App App `envPrefix:"APP_"`

	// Storage holds the durable store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Remote holds the remote service endpoints and write/read timeouts.
	Remote Remote `envPrefix:"REMOTE_"`

	// Connectivity holds the probe endpoints and probe timing.
	Connectivity Connectivity `envPrefix:"CONNECTIVITY_"`

	// Refresh holds the background refresh schedule and collections.
	Refresh Refresh `envPrefix:"REFRESH_"`

	// FilePath is the optional path to a JSON, YAML or TOML configuration
	// file. Populated via the CONFIG environment variable or the -c / --config
	// flag.
	FilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// LogLevel is a zerolog level name ("debug", "info", "warn", ...).
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`
}

// Storage groups the configuration for the local persistence backend.
type Storage struct {
	// DB holds the sqlite connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local sqlite database.
type DB struct {
	// DSN is the sqlite file path. ":memory:" selects a volatile store.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Remote holds the settings of the remote read/write service.
type Remote struct {
	// BaseURL is the root URL of the remote service
	// (e.g. "https://script.example.com/macros/s/abc/exec").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// WritePath is appended to BaseURL for POSTed mutations.
	// Env: REMOTE_WRITE_PATH
	WritePath string `env:"WRITE_PATH"`

	// ReadPath is appended to BaseURL for collection reads.
	// Env: REMOTE_READ_PATH
	ReadPath string `env:"READ_PATH"`

	// WriteTimeout bounds a single mutation dispatch.
	// Env: REMOTE_WRITE_TIMEOUT
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT"`

	// ReadTimeout bounds a single collection fetch.
	// Env: REMOTE_READ_TIMEOUT
	ReadTimeout time.Duration `env:"READ_TIMEOUT"`
}

// Connectivity holds the settings of the active reachability probe.
type Connectivity struct {
	// ProbeEndpoints is the list of independent URLs probed in parallel.
	// Env: CONNECTIVITY_PROBE_ENDPOINTS (comma separated)
	ProbeEndpoints []string `env:"PROBE_ENDPOINTS" envSeparator:","`

	// ProbeInterval is the period of the background probe.
	// Env: CONNECTIVITY_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// ProbeTimeout bounds each individual probe request.
	// Env: CONNECTIVITY_PROBE_TIMEOUT
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT"`

	// InitialProbeDelay is the delay of the first probe after start.
	// Env: CONNECTIVITY_INITIAL_PROBE_DELAY
	InitialProbeDelay time.Duration `env:"INITIAL_PROBE_DELAY"`
}

// Refresh holds the background refresh scheduler settings.
type Refresh struct {
	// Schedule is a robfig/cron spec ("@every 15m", "*/10 * * * *").
	// Env: REFRESH_SCHEDULE
	Schedule string `env:"SCHEDULE"`

	// Collections lists the collections fetched on every cycle.
	// Env: REFRESH_COLLECTIONS (comma separated)
	Collections []string `env:"COLLECTIONS" envSeparator:","`
}

// GetStructuredConfig loads and merges the configuration from all available
// sources. Priority, lowest to highest:
//  1. config file (path resolved from env and flags)
//  2. environment variables
//  3. command-line flags
//
// flags may be nil when no command line is involved.
func GetStructuredConfig(flags *Flags) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(flags).
		withFile().
		build()
}
