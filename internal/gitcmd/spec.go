// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package gitcmd builds the git command line to run per repository and
// classifies git's exit codes. The rest of the engine is command-agnostic:
// it only ever sees the Argv of a Spec and the classification of an exit
// code, never whether the command is a grep or a passthrough.
package gitcmd

import (
	"slices"
	"strings"
)

// Class is the meaning of a child exit code.
type Class int

const (
	// ClassOK means the captured output is a real result.
	ClassOK Class = iota
	// ClassIgnored means the command produced no result, which is not an error.
	ClassIgnored
	// ClassFatal means the command failed and the whole run must abort.
	ClassFatal
)

// Spec describes how to turn a repository into a concrete git invocation.
// It is constructed once and shared read-only across all concurrent runs.
type Spec struct {
	// GitArgs are the arguments placed after "git --no-pager -C <repo>".
	GitArgs []string
	// OKCodes are exit codes whose output is a real result. Defaults to {0}.
	OKCodes []int
	// IgnoredCodes are exit codes that mean "no result", not an error.
	IgnoredCodes []int
}

// Argv returns the full command line for one repository.
func (s *Spec) Argv(repo string) []string {
	return slices.Concat([]string{"git", "--no-pager", "-C", repo}, s.GitArgs)
}

// Classify maps a child exit code to its meaning.
func (s *Spec) Classify(code int) Class {
	ok := s.OKCodes
	if ok == nil {
		ok = []int{0}
	}

	switch {
	case slices.Contains(ok, code):
		return ClassOK
	case slices.Contains(s.IgnoredCodes, code):
		return ClassIgnored
	default:
		return ClassFatal
	}
}

// String renders the git command for the startup banner, e.g.
// "git grep -n --color=always TODO".
func (s *Spec) String() string {
	parts := make([]string, 0, len(s.GitArgs)+1)
	parts = append(parts, "git")

	for _, a := range s.GitArgs {
		parts = append(parts, shellQuote(a))
	}

	return strings.Join(parts, " ")
}

// NewPassthrough builds a Spec that forwards args to git unchanged.
// Only exit code 0 is a result; everything else is fatal.
func NewPassthrough(args []string) *Spec {
	return &Spec{
		GitArgs: slices.Clone(args),
		OKCodes: []int{0},
	}
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}

	if !strings.ContainsAny(s, " \t\n'\"\\$&|;<>()*?[]#~") {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
