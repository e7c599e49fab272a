// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdstate carries the resolved global options through the command
// context, so subcommands do not re-parse or re-validate them.
package cmdstate

import (
	"context"
	"regexp"

	"github.com/matt-FFFFFF/gitr/internal/output"
	"github.com/matt-FFFFFF/gitr/internal/repofind"
)

type ctxKey struct{}

// State is the result of resolving the global flags and the defaults file.
type State struct {
	// Cwd is the absolute starting directory for discovery.
	Cwd string
	// Depth is the maximum discovery depth.
	Depth int
	// Include and Exclude filter discovered repositories by path.
	Include []*regexp.Regexp
	Exclude []*regexp.Regexp
	// Prefix is the requested prefix mode; empty means command-dependent default.
	Prefix output.PrefixMode
	// ListOnly prints the discovered repositories and skips execution.
	ListOnly bool
	// GrepDefaults overrides the default convenience args for grep when non-nil.
	GrepDefaults []string
}

// With returns a context carrying the state.
func With(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// From returns the state from the context, or an empty state if absent.
func From(ctx context.Context) *State {
	if s, ok := ctx.Value(ctxKey{}).(*State); ok && s != nil {
		return s
	}

	return &State{}
}

// Repos discovers and filters the repositories for this run.
func (s *State) Repos(ctx context.Context) ([]string, error) {
	f := repofind.New(s.Depth)

	repos, err := f.Find(ctx, s.Cwd)
	if err != nil {
		return nil, err
	}

	return repofind.Filter(s.Cwd, repos, s.Include, s.Exclude), nil
}
