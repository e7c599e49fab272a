// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dispatch fans one command out over all discovered repositories,
// consumes completions in completion order and decides the process exit
// code. The first fatal command error cancels every in-flight and pending
// run; a cancelled run never produces output.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/matt-FFFFFF/gitr/internal/ctxlog"
	"github.com/matt-FFFFFF/gitr/internal/output"
	"github.com/matt-FFFFFF/gitr/internal/runner"
)

// Process exit codes.
const (
	// ExitOK means every repository completed without a fatal error.
	ExitOK = 0
	// ExitError means a repository's command failed fatally, or output could
	// no longer be delivered downstream.
	ExitError = 1
	// ExitInterrupted means the user interrupted the run.
	ExitInterrupted = 2
)

// RunFunc executes the command for one repository. It exists so tests can
// substitute the real runner.
type RunFunc func(ctx context.Context, repo string, spec runner.Spec) (*runner.Result, error)

// Session owns one dispatch run.
type Session struct {
	// Spec describes the command to fan out.
	Spec runner.Spec
	// Aggregator receives every completed, non-empty result.
	Aggregator *output.Aggregator
	// Diag is where run-level diagnostics are written. Defaults to io.Discard.
	Diag io.Writer
	// Run defaults to runner.Run.
	Run RunFunc
}

type completion struct {
	repo string
	res  *runner.Result
	err  error
}

// Dispatch runs the session's command once per repository with one worker
// per repository, and returns the process exit code.
//
// ctx is the interrupt context: its cancellation means the user asked to
// stop and maps to ExitInterrupted. Fatal command errors cancel a derived
// context so outstanding runners unwind, and map to ExitError.
func (s *Session) Dispatch(ctx context.Context, repos []string) int {
	logger := ctxlog.Logger(ctx)

	run := s.Run
	if run == nil {
		run = runner.Run
	}

	diag := s.Diag
	if diag == nil {
		diag = io.Discard
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resCh := make(chan completion, len(repos))
	wg := &sync.WaitGroup{}

	for _, repo := range repos {
		wg.Add(1)

		go func(repo string) {
			defer wg.Done()

			// Work not yet started when the run is being torn down is skipped
			// rather than spawned and immediately interrupted.
			if runCtx.Err() != nil {
				resCh <- completion{repo: repo}
				return
			}

			res, err := run(runCtx, repo, s.Spec)
			resCh <- completion{repo: repo, res: res, err: err}
		}(repo)
	}

	go func() {
		wg.Wait()
		close(resCh)
	}()

	exit := ExitOK

	for c := range resCh {
		if exit != ExitOK {
			// Aborting: drain the channel so workers can finish unwinding,
			// but emit nothing further.
			continue
		}

		if c.err != nil {
			s.reportFailure(diag, c)

			cancel()

			exit = ExitError

			continue
		}

		if c.res == nil {
			logger.Debug("no result", "repo", c.repo)
			continue
		}

		if err := s.Aggregator.Write(c.res); err != nil {
			if errors.Is(err, output.ErrPipeClosed) {
				logger.Debug("downstream pipe closed, aborting run")
			} else {
				fmt.Fprintf(diag, "ERROR: writing output for repo %s: %v\n", c.repo, err)
			}

			cancel()

			exit = ExitError
		}
	}

	if exit == ExitOK && ctx.Err() != nil {
		fmt.Fprintln(diag, "Caught interrupt, exiting.")
		return ExitInterrupted
	}

	return exit
}

func (s *Session) reportFailure(diag io.Writer, c completion) {
	var cmdErr *runner.CommandError
	if errors.As(c.err, &cmdErr) {
		fmt.Fprintf(diag, "ERROR: in repo %s:\n%s", cmdErr.Repo, cmdErr.Stderr)
		return
	}

	fmt.Fprintf(diag, "ERROR: in repo %s: %v\n", c.repo, c.err)
}
