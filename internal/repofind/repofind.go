// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package repofind

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"github.com/matt-FFFFFF/gitr/internal/ctxlog"
)

// DefaultDepth is the default maximum number of directory levels to descend.
const DefaultDepth = 3

// ErrBadStartDir is returned when the starting directory does not exist or
// cannot be read. Unreadable directories below the start are skipped, but a
// bad start is a usage error, not an empty result.
var ErrBadStartDir = errors.New("cannot read starting directory")

// ProbeFunc reports whether dir is a git repository root.
type ProbeFunc func(ctx context.Context, dir string) bool

// GitProbe runs a read-only git inspection command and uses only its exit
// status. Output is discarded.
func GitProbe(ctx context.Context, dir string) bool {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	return cmd.Run() == nil
}

// Finder locates git repository roots beneath a starting directory.
type Finder struct {
	// Depth is the maximum number of directory levels to descend below the root.
	Depth int
	// Probe reports whether a directory is a repository root. Defaults to GitProbe.
	Probe ProbeFunc
	// Limit bounds the number of concurrent probes. Defaults to NumCPU+4.
	Limit int
}

// New returns a Finder with the given depth and the git probe.
func New(depth int) *Finder {
	return &Finder{Depth: depth}
}

type candidate struct {
	dir       string
	depthLeft int
}

type outcome struct {
	candidate
	isRepo bool
}

// Find returns the repository roots under root, sorted by path.
// If root is itself a repository root it is the only result; its
// subdirectories are not enumerated. A root that does not exist or cannot be
// read yields ErrBadStartDir. Returns ctx.Err() if the run is cancelled
// mid-discovery.
func (f *Finder) Find(ctx context.Context, root string) ([]string, error) {
	root = filepath.Clean(root)

	if f.probe()(ctx, root) {
		return []string{root}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Join(ErrBadStartDir, err)
	}

	if f.Depth < 1 {
		return nil, ctx.Err()
	}

	var repos []string

	frontier := toCandidates(root, entries, f.Depth-1)

	// Probe in waves: every directory that fails its probe and still has
	// depth budget is replaced by candidates for its own children.
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := make([]candidate, 0, len(frontier))

		for _, o := range f.probeWave(ctx, frontier) {
			switch {
			case o.isRepo:
				repos = append(repos, o.dir)
			case o.depthLeft > 0:
				next = append(next, subdirs(ctx, o.dir, o.depthLeft-1)...)
			}
		}

		frontier = next
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.Sort(repos)

	return repos, nil
}

func (f *Finder) probeWave(ctx context.Context, cands []candidate) []outcome {
	out := make([]outcome, len(cands))
	sem := make(chan struct{}, f.limit())
	wg := &sync.WaitGroup{}

	for i, c := range cands {
		wg.Add(1)

		go func(i int, c candidate) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			out[i] = outcome{
				candidate: c,
				isRepo:    ctx.Err() == nil && f.probe()(ctx, c.dir),
			}
		}(i, c)
	}

	wg.Wait()

	return out
}

func (f *Finder) probe() ProbeFunc {
	if f.Probe != nil {
		return f.Probe
	}

	return GitProbe
}

func (f *Finder) limit() int {
	if f.Limit > 0 {
		return f.Limit
	}

	return runtime.NumCPU() + 4
}

// subdirs lists the immediate subdirectories of dir as candidates with the
// given remaining depth. Unreadable directories are skipped.
func subdirs(ctx context.Context, dir string, depthLeft int) []candidate {
	entries, err := os.ReadDir(dir)
	if err != nil {
		ctxlog.Debug(ctx, "skipping unreadable directory", "dir", dir, "error", err)
		return nil
	}

	return toCandidates(dir, entries, depthLeft)
}

func toCandidates(dir string, entries []os.DirEntry, depthLeft int) []candidate {
	cands := make([]candidate, 0, len(entries))

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		cands = append(cands, candidate{
			dir:       filepath.Join(dir, e.Name()),
			depthLeft: depthLeft,
		})
	}

	return cands
}
