// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package repofind

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
)

// ErrBadPattern is returned when an include or exclude pattern does not compile.
var ErrBadPattern = errors.New("invalid repository filter pattern")

// CompilePatterns compiles a list of regexp patterns.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Join(ErrBadPattern, fmt.Errorf("pattern %q: %w", p, err))
		}

		compiled = append(compiled, re)
	}

	return compiled, nil
}

// Filter applies include and exclude patterns to repository paths.
// With no include patterns every repository is a candidate; exclude patterns
// then remove matches. When base is non-empty, patterns are matched against
// the base-relative path, so e.g. "^vendor" behaves the same wherever the
// tree lives. Patterns are searched anywhere in the path.
func Filter(base string, repos []string, include, exclude []*regexp.Regexp) []string {
	out := make([]string, 0, len(repos))

	for _, repo := range repos {
		display := repo
		if base != "" {
			if rel, err := filepath.Rel(base, repo); err == nil {
				display = rel
			}
		}

		if len(include) > 0 && !matchAny(include, display) {
			continue
		}

		if matchAny(exclude, display) {
			continue
		}

		out = append(out, repo)
	}

	return out
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}

	return false
}
