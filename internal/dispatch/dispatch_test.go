// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"bytes"
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/matt-FFFFFF/gitr/internal/color"
	"github.com/matt-FFFFFF/gitr/internal/gitcmd"
	"github.com/matt-FFFFFF/gitr/internal/output"
	"github.com/matt-FFFFFF/gitr/internal/runner"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func noColor(t *testing.T) {
	t.Helper()

	was := color.Enabled()
	color.SetEnabled(false)
	t.Cleanup(func() { color.SetEnabled(was) })
}

func newSession(runFn RunFunc) (*Session, *bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr, diag := &bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{}

	s := &Session{
		Spec:       gitcmd.NewGrep(gitcmd.GrepOptions{Args: []string{"TODO"}}),
		Aggregator: output.New(stdout, stderr, output.PrefixLine, "/w"),
		Diag:       diag,
		Run:        runFn,
	}

	return s, stdout, stderr, diag
}

func TestDispatchAllSuccess(t *testing.T) {
	defer goleak.VerifyNone(t)
	noColor(t)

	runFn := func(_ context.Context, repo string, _ runner.Spec) (*runner.Result, error) {
		return &runner.Result{Repo: repo, Stdout: [][]byte{[]byte("hit\n")}}, nil
	}

	s, stdout, _, _ := newSession(runFn)

	exit := s.Dispatch(context.Background(), []string{"/w/a", "/w/b"})
	assert.Equal(t, ExitOK, exit)
	assert.Contains(t, stdout.String(), "a/hit\n")
	assert.Contains(t, stdout.String(), "b/hit\n")
}

func TestDispatchSkipsNoResult(t *testing.T) {
	defer goleak.VerifyNone(t)
	noColor(t)

	runFn := func(_ context.Context, repo string, _ runner.Spec) (*runner.Result, error) {
		if repo == "/w/empty" {
			return nil, nil
		}

		return &runner.Result{Repo: repo, Stdout: [][]byte{[]byte("hit\n")}}, nil
	}

	s, stdout, _, diag := newSession(runFn)

	exit := s.Dispatch(context.Background(), []string{"/w/empty", "/w/a"})
	assert.Equal(t, ExitOK, exit)
	assert.Equal(t, "a/hit\n", stdout.String())
	assert.Empty(t, diag.String(), "no-result repositories are skipped silently")
}

func TestDispatchFatalErrorCancelsRun(t *testing.T) {
	defer goleak.VerifyNone(t)
	noColor(t)

	var cancelled atomic.Int32
	slowStarted := make(chan struct{}, 2)

	runFn := func(ctx context.Context, repo string, _ runner.Spec) (*runner.Result, error) {
		if repo == "/w/bad" {
			// Fail only after both slow runners are in flight, so the test
			// deterministically observes them being cancelled.
			<-slowStarted
			<-slowStarted

			return nil, &runner.CommandError{Repo: repo, ExitCode: 2, Stderr: []byte("fatal: boom\n")}
		}

		slowStarted <- struct{}{}

		// Block until cancelled, like a real runner unwinding on SIGINT.
		<-ctx.Done()
		cancelled.Add(1)

		return nil, nil
	}

	s, stdout, _, diag := newSession(runFn)

	exit := s.Dispatch(context.Background(), []string{"/w/bad", "/w/slow1", "/w/slow2"})

	assert.Equal(t, ExitError, exit)
	assert.Contains(t, diag.String(), "ERROR: in repo /w/bad:")
	assert.Contains(t, diag.String(), "fatal: boom")
	assert.Empty(t, stdout.String(), "no output after the run is aborted")
	assert.Equal(t, int32(2), cancelled.Load(), "in-flight runners must observe cancellation")
}

func TestDispatchInterrupt(t *testing.T) {
	defer goleak.VerifyNone(t)
	noColor(t)

	ctx, cancel := context.WithCancel(context.Background())

	runFn := func(ctx context.Context, repo string, _ runner.Spec) (*runner.Result, error) {
		<-ctx.Done()
		return nil, nil
	}

	s, _, _, diag := newSession(runFn)

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	exit := s.Dispatch(ctx, []string{"/w/a", "/w/b"})
	assert.Equal(t, ExitInterrupted, exit)
	assert.Contains(t, diag.String(), "Caught interrupt")
}

func TestDispatchEmptyRepoList(t *testing.T) {
	defer goleak.VerifyNone(t)

	runFn := func(_ context.Context, _ string, _ runner.Spec) (*runner.Result, error) {
		t.Fatal("run must not be called")
		return nil, nil
	}

	s, _, _, _ := newSession(runFn)

	assert.Equal(t, ExitOK, s.Dispatch(context.Background(), nil))
}

func TestDispatchBrokenPipeAborts(t *testing.T) {
	defer goleak.VerifyNone(t)
	noColor(t)

	runFn := func(ctx context.Context, repo string, _ runner.Spec) (*runner.Result, error) {
		return &runner.Result{Repo: repo, Stdout: [][]byte{[]byte("hit\n")}}, nil
	}

	diag := &bytes.Buffer{}
	s := &Session{
		Spec:       gitcmd.NewGrep(gitcmd.GrepOptions{Args: []string{"TODO"}}),
		Aggregator: output.New(&closedPipe{}, &bytes.Buffer{}, output.PrefixNone, "/w"),
		Diag:       diag,
		Run:        runFn,
	}

	exit := s.Dispatch(context.Background(), []string{"/w/a", "/w/b", "/w/c"})
	assert.Equal(t, ExitError, exit)
}

type closedPipe struct{}

func (*closedPipe) Write([]byte) (int, error) {
	return 0, syscall.EPIPE
}
