// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads optional per-user defaults for gitr from a YAML file.
// The file lives at $XDG_CONFIG_HOME/gitr/gitr.yaml (or ~/.config/gitr/gitr.yaml).
// A missing file is not an error; command-line flags always win over file values.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// ErrParseConfig is returned when the config file exists but cannot be parsed.
var ErrParseConfig = errors.New("failed to parse config file")

// File holds the user-configurable defaults.
type File struct {
	// Depth is the default recursion depth for repository discovery.
	Depth int `yaml:"depth"`
	// Prefix is the default prefix mode: repo, line or no.
	Prefix string `yaml:"prefix"`
	// ExcludeRepos are regexp patterns of repositories to always exclude.
	ExcludeRepos []string `yaml:"exclude-repos"`
	// GrepDefaults overrides the convenience args inserted for the grep subcommand.
	GrepDefaults []string `yaml:"grep-defaults"`
}

// Path returns the config file location for the current user.
func Path() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}

		base = filepath.Join(home, ".config")
	}

	return filepath.Join(base, "gitr", "gitr.yaml")
}

// Load reads the defaults file from the given filesystem.
// A missing or unresolvable path yields the zero-value File and no error.
func Load(fs afero.Fs, path string) (*File, error) {
	f := &File{}

	if path == "" {
		return f, nil
	}

	b, err := afero.ReadFile(fs, path)
	if err != nil {
		// Unreadable config is treated the same as absent.
		return f, nil
	}

	if err := yaml.Unmarshal(b, f); err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}

	return f, nil
}
