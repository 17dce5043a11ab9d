// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// parseEnv reads the environment layer. Field names come from the `env`
// and `envPrefix` tags of [StructuredConfig]; list variables are comma
// separated and their entries are trimmed.
func parseEnv() (*StructuredConfig, error) {
	cfg, err := env.ParseAs[StructuredConfig]()
	if err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	cfg.Connectivity.ProbeEndpoints = trimList(cfg.Connectivity.ProbeEndpoints)
	cfg.Refresh.Collections = trimList(cfg.Refresh.Collections)

	return &cfg, nil
}

// trimList drops blank entries and surrounding spaces. It returns nil for
// an empty result so the layer does not override lower priority values.
func trimList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
