package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags holds the values of the command-line flags registered by
// [RegisterFlags]. Zero values mean "not set" and do not override lower
// priority sources.
type Flags struct {
	configPath     string
	dsn            string
	logLevel       string
	baseURL        string
	writeTimeout   time.Duration
	probeEndpoints []string
	probeInterval  time.Duration
	probeTimeout   time.Duration
	refreshCron    string
	collections    []string
}

// RegisterFlags registers the configuration flags on fs (typically the
// persistent flag set of the root command).
//
// Flags:
//
//	-c/--config           config file path (json, yaml or toml)
//	-d/--dsn              sqlite database file
//	--log-level           log level
//	-u/--remote-url       remote service base URL
//	--write-timeout       mutation dispatch timeout (e.g. "30s")
//	--probe-endpoint      probe endpoint, repeatable
//	--probe-interval      background probe period
//	--probe-timeout       per-endpoint probe timeout
//	--refresh-schedule    cron spec of the background refresh
//	--collection          refreshed collection, repeatable
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}

	fs.StringVarP(&f.configPath, "config", "c", "", "Config file path (json, yaml or toml)")
	fs.StringVarP(&f.dsn, "dsn", "d", "", "Local sqlite database file")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVarP(&f.baseURL, "remote-url", "u", "", "Remote service base URL")
	fs.DurationVar(&f.writeTimeout, "write-timeout", 0, "Mutation dispatch timeout (e.g. 30s)")
	fs.StringSliceVar(&f.probeEndpoints, "probe-endpoint", nil, "Connectivity probe endpoint (repeatable)")
	fs.DurationVar(&f.probeInterval, "probe-interval", 0, "Connectivity probe period (e.g. 30s)")
	fs.DurationVar(&f.probeTimeout, "probe-timeout", 0, "Per-endpoint probe timeout (e.g. 3s)")
	fs.StringVar(&f.refreshCron, "refresh-schedule", "", "Background refresh cron spec (e.g. @every 15m)")
	fs.StringSliceVar(&f.collections, "collection", nil, "Collection refreshed in the background (repeatable)")

	return f
}

func (f *Flags) toConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{LogLevel: f.logLevel},
		Storage: Storage{
			DB: DB{DSN: f.dsn},
		},
		Remote: Remote{
			BaseURL:      f.baseURL,
			WriteTimeout: f.writeTimeout,
		},
		Connectivity: Connectivity{
			ProbeEndpoints: f.probeEndpoints,
			ProbeInterval:  f.probeInterval,
			ProbeTimeout:   f.probeTimeout,
		},
		Refresh: Refresh{
			Schedule:    f.refreshCron,
			Collections: f.collections,
		},
		FilePath: f.configPath,
	}
}
