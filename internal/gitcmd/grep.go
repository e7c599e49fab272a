// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gitcmd

import (
	"slices"

	"github.com/matt-FFFFFF/gitr/internal/color"
)

// DefaultGrepArgs are the convenience args inserted for grep unless disabled.
var DefaultGrepArgs = []string{"-n"}

// GrepOptions configures the construction of a git grep Spec.
type GrepOptions struct {
	// Args are the user-supplied git grep arguments (pattern included).
	Args []string
	// Excludes are pathspec exclude patterns, e.g. "*.lock".
	Excludes []string
	// Defaults replaces DefaultGrepArgs when non-nil.
	Defaults []string
	// NoDefaults suppresses the convenience default args.
	NoDefaults bool
	// Color injects --color=always so grep colorizes despite being captured.
	Color bool
}

// NewGrep builds a Spec for git grep. Exit code 1 (no match) is classified
// as "no result"; any code other than 0 or 1 is fatal.
func NewGrep(opts GrepOptions) *Spec {
	args := slices.Clone(opts.Args)

	if opts.Color {
		args = slices.Insert(args, 0, "--color=always")
	}

	if !opts.NoDefaults {
		defaults := opts.Defaults
		if defaults == nil {
			defaults = DefaultGrepArgs
		}

		args = slices.Insert(args, 0, defaults...)
	}

	if len(opts.Excludes) > 0 {
		// Pathspecs must be clarified by "--" and put last.
		if !slices.Contains(args, "--") {
			args = append(args, "--")
		}

		for _, x := range opts.Excludes {
			args = append(args, ":!"+x)
		}
	}

	return &Spec{
		GitArgs:      slices.Concat([]string{"grep"}, args),
		OKCodes:      []int{0},
		IgnoredCodes: []int{1},
	}
}

// UseColor decides whether this run colorizes output.
// An explicit --color=never in the forwarded args disables color, an
// explicit --color=always enables it even when stdout is not a terminal,
// and otherwise the ambient detection applies.
func UseColor(passthrough []string) bool {
	switch {
	case slices.Contains(passthrough, "--color=never"):
		return false
	case slices.Contains(passthrough, "--color=always"):
		return true
	default:
		return color.Enabled()
	}
}
