// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gitcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgv(t *testing.T) {
	spec := NewPassthrough([]string{"status", "--short"})

	assert.Equal(t,
		[]string{"git", "--no-pager", "-C", "/repos/a", "status", "--short"},
		spec.Argv("/repos/a"))
}

func TestClassifyPassthrough(t *testing.T) {
	spec := NewPassthrough([]string{"status"})

	assert.Equal(t, ClassOK, spec.Classify(0))
	assert.Equal(t, ClassFatal, spec.Classify(1))
	assert.Equal(t, ClassFatal, spec.Classify(128))
}

func TestClassifyGrep(t *testing.T) {
	spec := NewGrep(GrepOptions{Args: []string{"TODO"}})

	assert.Equal(t, ClassOK, spec.Classify(0))
	assert.Equal(t, ClassIgnored, spec.Classify(1))
	assert.Equal(t, ClassFatal, spec.Classify(2))
	assert.Equal(t, ClassFatal, spec.Classify(128))
}

func TestClassifyDefaultsToZeroOK(t *testing.T) {
	spec := &Spec{}

	assert.Equal(t, ClassOK, spec.Classify(0))
	assert.Equal(t, ClassFatal, spec.Classify(1))
}

func TestNewGrepDefaultArgs(t *testing.T) {
	spec := NewGrep(GrepOptions{Args: []string{"TODO"}})

	assert.Equal(t, []string{"grep", "-n", "TODO"}, spec.GitArgs)
}

func TestNewGrepColorInjection(t *testing.T) {
	spec := NewGrep(GrepOptions{Args: []string{"TODO"}, Color: true})

	assert.Equal(t, []string{"grep", "-n", "--color=always", "TODO"}, spec.GitArgs)
}

func TestNewGrepNoDefaults(t *testing.T) {
	spec := NewGrep(GrepOptions{Args: []string{"TODO"}, NoDefaults: true, Color: true})

	assert.Equal(t, []string{"grep", "--color=always", "TODO"}, spec.GitArgs)
}

func TestNewGrepCustomDefaults(t *testing.T) {
	spec := NewGrep(GrepOptions{Args: []string{"TODO"}, Defaults: []string{"-n", "-I"}})

	assert.Equal(t, []string{"grep", "-n", "-I", "TODO"}, spec.GitArgs)
}

func TestNewGrepExcludesAppendSeparator(t *testing.T) {
	spec := NewGrep(GrepOptions{Args: []string{"TODO"}, Excludes: []string{"*.lock", "vendor/*"}})

	assert.Equal(t,
		[]string{"grep", "-n", "TODO", "--", ":!*.lock", ":!vendor/*"},
		spec.GitArgs)
}

func TestNewGrepExcludesExistingSeparator(t *testing.T) {
	spec := NewGrep(GrepOptions{Args: []string{"TODO", "--", "src"}, Excludes: []string{"*.lock"}})

	assert.Equal(t,
		[]string{"grep", "-n", "TODO", "--", "src", ":!*.lock"},
		spec.GitArgs)
}

func TestNewGrepDoesNotMutateInput(t *testing.T) {
	args := []string{"TODO"}
	_ = NewGrep(GrepOptions{Args: args, Color: true})

	assert.Equal(t, []string{"TODO"}, args)
}

func TestSpecString(t *testing.T) {
	spec := NewGrep(GrepOptions{Args: []string{"hello world"}})

	assert.Equal(t, "git grep -n 'hello world'", spec.String())
}

func TestUseColorExplicitFlags(t *testing.T) {
	assert.False(t, UseColor([]string{"-n", "--color=never"}))
	assert.True(t, UseColor([]string{"--color=always"}))
}
