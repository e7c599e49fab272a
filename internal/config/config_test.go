// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	fs := afero.NewMemMapFs()

	f, err := Load(fs, "/home/user/.config/gitr/gitr.yaml")
	require.NoError(t, err)
	assert.Zero(t, f.Depth)
	assert.Empty(t, f.Prefix)
	assert.Empty(t, f.ExcludeRepos)
}

func TestLoadEmptyPathReturnsZeroValue(t *testing.T) {
	fs := afero.NewMemMapFs()

	f, err := Load(fs, "")
	require.NoError(t, err)
	assert.Zero(t, f.Depth)
}

func TestLoadParsesValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	yaml := []byte("depth: 5\nprefix: repo\nexclude-repos:\n  - vendor\n  - \\.cache\ngrep-defaults:\n  - -n\n  - -I\n")
	require.NoError(t, afero.WriteFile(fs, "/cfg/gitr.yaml", yaml, 0o644))

	f, err := Load(fs, "/cfg/gitr.yaml")
	require.NoError(t, err)
	assert.Equal(t, 5, f.Depth)
	assert.Equal(t, "repo", f.Prefix)
	assert.Equal(t, []string{"vendor", `\.cache`}, f.ExcludeRepos)
	assert.Equal(t, []string{"-n", "-I"}, f.GrepDefaults)
}

func TestLoadInvalidYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/gitr.yaml", []byte("depth: [oops"), 0o644))

	_, err := Load(fs, "/cfg/gitr.yaml")
	require.ErrorIs(t, err, ErrParseConfig)
}

func TestPathUsesXDGConfigHome(t *testing.T) {
	stubs := gostub.New()
	defer stubs.Reset()

	stubs.SetEnv("XDG_CONFIG_HOME", "/xdg")

	assert.Equal(t, "/xdg/gitr/gitr.yaml", Path())
}
