// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// validate checks the merged [StructuredConfig]. Every field is optional at
// this level; the client view enforces the rules it needs.
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if strings.TrimSpace(cfg.Storage.DB.DSN) == "" {
		return ErrInvalidStorageConfigs
	}

	if err := validateURL(cfg.Remote.BaseURL); err != nil {
		return fmt.Errorf("%w: base url: %w", ErrInvalidRemoteConfigs, err)
	}
	if cfg.Remote.WriteTimeout < 0 || cfg.Remote.ReadTimeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidRemoteConfigs)
	}

	if len(cfg.Connectivity.ProbeEndpoints) == 0 {
		return fmt.Errorf("%w: no probe endpoints", ErrInvalidConnectivityConfigs)
	}
	for _, e := range cfg.Connectivity.ProbeEndpoints {
		if err := validateURL(e); err != nil {
			return fmt.Errorf("%w: probe endpoint %q: %w", ErrInvalidConnectivityConfigs, e, err)
		}
	}
	if cfg.Connectivity.ProbeTimeout <= 0 || cfg.Connectivity.ProbeInterval <= 0 {
		return fmt.Errorf("%w: probe interval and timeout must be positive", ErrInvalidConnectivityConfigs)
	}
	if cfg.Connectivity.ProbeTimeout > cfg.Connectivity.ProbeInterval {
		return fmt.Errorf("%w: probe timeout exceeds probe interval", ErrInvalidConnectivityConfigs)
	}

	if _, err := cron.ParseStandard(cfg.Refresh.Schedule); err != nil {
		return fmt.Errorf("%w: schedule: %w", ErrInvalidRefreshConfigs, err)
	}
	if len(cfg.Refresh.Collections) == 0 {
		return fmt.Errorf("%w: no collections", ErrInvalidRefreshConfigs)
	}

	return nil
}

func validateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("empty address")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("address must include host")
	}
	return nil
}
