// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

// Package config loads the optional wingboard configuration file. The file
// is read once at startup and never written: the UI keeps no preferences.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultTimeoutSeconds bounds one winget invocation when the config file
// does not say otherwise.
const DefaultTimeoutSeconds = 120

// Config is the startup configuration.
type Config struct {
	// WingetPath overrides the winget binary looked up on PATH.
	WingetPath string `toml:"winget_path"`
	// Source preselects the source filter: "", "winget" or "msstore".
	Source string `toml:"source"`
	// TimeoutSeconds bounds a single winget call. Zero disables the limit.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		WingetPath:     "winget",
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// Timeout returns the per-call timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Path returns the config file location under the user config directory.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "wingboard", "config.toml")
}

// Load reads the config file at path, falling back to defaults for a missing
// file or empty path. A malformed file is an error; silently ignoring it
// would make typos in the file invisible.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.WingetPath == "" {
		cfg.WingetPath = "winget"
	}

	return cfg, nil
}
