// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package output merges per-repository results into the process output
// streams. Captured bytes are written exactly as the child produced them,
// so embedded ANSI escape sequences survive untouched. A repository prefix
// is added according to the configured mode, and a closed downstream pipe
// is converted into a clean shutdown instead of a fault.
package output

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"syscall"

	"github.com/matt-FFFFFF/gitr/internal/color"
	"github.com/matt-FFFFFF/gitr/internal/runner"
)

// PrefixMode selects how output lines are attributed to their repository.
type PrefixMode string

const (
	// PrefixRepo emits one line naming the repository before its output.
	PrefixRepo PrefixMode = "repo"
	// PrefixLine prefixes every output line with the repository path.
	PrefixLine PrefixMode = "line"
	// PrefixNone emits the output verbatim.
	PrefixNone PrefixMode = "no"
)

var (
	// ErrPipeClosed is returned when the downstream consumer closed the stream.
	ErrPipeClosed = errors.New("downstream pipe closed")
	// ErrBadPrefixMode is returned for an unrecognized prefix mode name.
	ErrBadPrefixMode = errors.New("prefix mode must be one of: repo, line, no")
)

// ParsePrefixMode validates a prefix mode name. An empty string is returned
// unchanged so callers can apply a command-dependent default.
func ParsePrefixMode(s string) (PrefixMode, error) {
	switch PrefixMode(s) {
	case PrefixRepo, PrefixLine, PrefixNone, PrefixMode(""):
		return PrefixMode(s), nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrBadPrefixMode, s)
	}
}

// Aggregator writes repository results to the output streams.
// It is driven by a single consumer; it is not safe for concurrent use.
type Aggregator struct {
	stdout io.Writer
	stderr io.Writer
	mode   PrefixMode
	base   string
}

// New creates an Aggregator. base is the invocation working directory used
// to derive the display path for each repository.
func New(stdout, stderr io.Writer, mode PrefixMode, base string) *Aggregator {
	return &Aggregator{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		base:   base,
	}
}

// Write emits one repository's result under the configured prefix rule,
// stdout first, then stderr. On a closed downstream pipe the affected
// stream is redirected to a discard sink and ErrPipeClosed is returned.
func (a *Aggregator) Write(res *runner.Result) error {
	prefix := a.prefix(res.Repo)

	if a.mode == PrefixRepo {
		if err := a.write(&a.stdout, append(prefix, '\n')); err != nil {
			return err
		}
	}

	if err := a.writeLines(&a.stdout, prefix, res.Stdout); err != nil {
		return err
	}

	return a.writeLines(&a.stderr, prefix, res.Stderr)
}

func (a *Aggregator) writeLines(w *io.Writer, prefix []byte, lines [][]byte) error {
	for _, line := range lines {
		if a.mode == PrefixLine {
			if err := a.write(w, prefix); err != nil {
				return err
			}
		}

		if err := a.write(w, line); err != nil {
			return err
		}
	}

	return nil
}

func (a *Aggregator) write(w *io.Writer, b []byte) error {
	if _, err := (*w).Write(b); err != nil {
		if errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe) {
			*w = io.Discard
			return ErrPipeClosed
		}

		return err
	}

	return nil
}

// prefix renders "relpath/" with the path part colorized when enabled.
func (a *Aggregator) prefix(repo string) []byte {
	display := repo
	if a.base != "" {
		if rel, err := filepath.Rel(a.base, repo); err == nil {
			display = rel
		}
	}

	return []byte(color.Colorize(display, color.FgGreen) + "/")
}
