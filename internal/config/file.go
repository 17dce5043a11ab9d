package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors [StructuredConfig] for config files. The same struct is
// decoded from JSON, YAML or TOML depending on the file extension.
type FileConfig struct {
	App struct {
		LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
	} `json:"app" yaml:"app" toml:"app"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" yaml:"dsn" toml:"dsn"`
		} `json:"db" yaml:"db" toml:"db"`
	} `json:"storage" yaml:"storage" toml:"storage"`

	Remote struct {
		BaseURL      string   `json:"base_url" yaml:"base_url" toml:"base_url"`
		WritePath    string   `json:"write_path" yaml:"write_path" toml:"write_path"`
		ReadPath     string   `json:"read_path" yaml:"read_path" toml:"read_path"`
		WriteTimeout Duration `json:"write_timeout" yaml:"write_timeout" toml:"write_timeout"`
		ReadTimeout  Duration `json:"read_timeout" yaml:"read_timeout" toml:"read_timeout"`
	} `json:"remote" yaml:"remote" toml:"remote"`

	Connectivity struct {
		ProbeEndpoints    []string `json:"probe_endpoints" yaml:"probe_endpoints" toml:"probe_endpoints"`
		ProbeInterval     Duration `json:"probe_interval" yaml:"probe_interval" toml:"probe_interval"`
		ProbeTimeout      Duration `json:"probe_timeout" yaml:"probe_timeout" toml:"probe_timeout"`
		InitialProbeDelay Duration `json:"initial_probe_delay" yaml:"initial_probe_delay" toml:"initial_probe_delay"`
	} `json:"connectivity" yaml:"connectivity" toml:"connectivity"`

	Refresh struct {
		Schedule    string   `json:"schedule" yaml:"schedule" toml:"schedule"`
		Collections []string `json:"collections" yaml:"collections" toml:"collections"`
	} `json:"refresh" yaml:"refresh" toml:"refresh"`
}

func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a config file: %w", err)
	}

	var fc FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedConfigFile, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
	}

	return fc.toConfig(), nil
}

func (fc FileConfig) toConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{LogLevel: fc.App.LogLevel},
		Storage: Storage{
			DB: DB{DSN: fc.Storage.DB.DSN},
		},
		Remote: Remote{
			BaseURL:      fc.Remote.BaseURL,
			WritePath:    fc.Remote.WritePath,
			ReadPath:     fc.Remote.ReadPath,
			WriteTimeout: time.Duration(fc.Remote.WriteTimeout),
			ReadTimeout:  time.Duration(fc.Remote.ReadTimeout),
		},
		Connectivity: Connectivity{
			ProbeEndpoints:    fc.Connectivity.ProbeEndpoints,
			ProbeInterval:     time.Duration(fc.Connectivity.ProbeInterval),
			ProbeTimeout:      time.Duration(fc.Connectivity.ProbeTimeout),
			InitialProbeDelay: time.Duration(fc.Connectivity.InitialProbeDelay),
		},
		Refresh: Refresh{
			Schedule:    fc.Refresh.Schedule,
			Collections: fc.Refresh.Collections,
		},
	}
}

// Duration is a wrapper around time.Duration that decodes from strings like
// "1h" or "30s" in every supported file format, and from nanosecond numbers
// in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		return d.UnmarshalText([]byte(value))
	case nil:
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d *Duration) UnmarshalText(b []byte) error {
	tmp, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
