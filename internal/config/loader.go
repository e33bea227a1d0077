// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader produces validated configurations from defaults, an optional
// YAML file and the environment, in that order of precedence (lowest
// first).
type Loader struct {
	path string
}

// NewLoader creates a loader for the given config file path; an empty
// path means ENV-only configuration.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load builds and validates a configuration.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Default()

	if l.path != "" {
		if err := mergeFile(&cfg, l.path); err != nil {
			return AppConfig{}, err
		}
	}
	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// mergeFile overlays a YAML file onto cfg. Unknown keys are rejected so
// typos fail loudly instead of being silently ignored.
func mergeFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
