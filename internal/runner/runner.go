// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/matt-FFFFFF/gitr/internal/ctxlog"
	"github.com/matt-FFFFFF/gitr/internal/gitcmd"
)

const (
	// readChunkSize keeps interleaving fair across concurrently active
	// repositories while amortizing system-call overhead.
	readChunkSize = 512
	// killGrace is how long a child gets to honour SIGINT before SIGKILL.
	killGrace = 5 * time.Second
)

var (
	// ErrOpenPty is returned when a pseudo-terminal pair cannot be opened.
	ErrOpenPty = errors.New("could not open pseudo-terminal")
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
)

// Spec describes the command to run for one repository and the meaning of
// its exit codes. *gitcmd.Spec is the production implementation; the runner
// itself is command-agnostic.
type Spec interface {
	Argv(repo string) []string
	Classify(code int) gitcmd.Class
}

// CommandError is a fatal command failure: the child exited with a code the
// Spec classifies as neither ok nor ignored.
type CommandError struct {
	Repo     string
	ExitCode int
	Stderr   []byte
}

// Error implements the error interface for CommandError.
func (e *CommandError) Error() string {
	return fmt.Sprintf("git exited %d in repo %s: %s",
		e.ExitCode, e.Repo, strings.TrimSpace(string(e.Stderr)))
}

// Result is one repository's captured output, split into newline-terminated
// records with the line endings preserved.
type Result struct {
	Repo   string
	Stdout [][]byte
	Stderr [][]byte
}

// Run executes the Spec's command for one repository.
// It returns (nil, nil) when the command produced no result, either because
// its exit code is classified as ignored or because the run was cancelled.
func Run(ctx context.Context, repo string, spec Spec) (*Result, error) {
	logger := ctxlog.Logger(ctx).With("repo", repo)

	argv := spec.Argv(repo)
	logger.Debug("starting command", "argv", argv)

	ptyIn, err := openPair()
	if err != nil {
		return nil, err
	}

	ptyOut, err := openPair()
	if err != nil {
		ptyIn.close()
		return nil, err
	}

	ptyErr, err := openPair()
	if err != nil {
		ptyIn.close()
		ptyOut.close()

		return nil, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = ptyIn.slave
	cmd.Stdout = ptyOut.slave
	cmd.Stderr = ptyErr.slave
	cmd.Env = envWithTerm()

	if err := cmd.Start(); err != nil {
		ptyIn.close()
		ptyOut.close()
		ptyErr.close()

		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	// The slave ends belong to the child now. Closing them in the parent is
	// what makes the master reads return once the child exits.
	ptyIn.closeSlave()
	ptyOut.closeSlave()
	ptyErr.closeSlave()

	logger.Debug("process started", "pid", cmd.Process.Pid)

	// Watchdog: on cancellation interrupt the child, escalating to SIGKILL
	// if it does not exit within the grace period.
	done := make(chan struct{})
	watchdogDone := make(chan struct{})

	go func() {
		defer close(watchdogDone)

		select {
		case <-ctx.Done():
			logger.Debug("run cancelled, interrupting child")

			if err := cmd.Process.Signal(syscall.SIGINT); err != nil && !errors.Is(err, os.ErrProcessDone) {
				logger.Debug("failed to interrupt child", "error", err)
			}

			select {
			case <-time.After(killGrace):
				killChild(ctx, cmd.Process)
			case <-done:
			}
		case <-done:
		}
	}()

	var (
		stdout bytes.Buffer
		stderr bytes.Buffer
		wg     sync.WaitGroup
	)

	wg.Add(2)

	go readAll(&wg, ptyOut.master, &stdout)
	go readAll(&wg, ptyErr.master, &stderr)

	wg.Wait()

	waitErr := cmd.Wait()

	close(done)
	<-watchdogDone

	ptyIn.closeMaster()
	ptyOut.closeMaster()
	ptyErr.closeMaster()

	if ctx.Err() != nil {
		logger.Debug("discarding result of cancelled command")
		return nil, nil
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, errors.Join(ErrCouldNotStartProcess, waitErr)
		}
	}

	exitCode := cmd.ProcessState.ExitCode()
	logger.Debug("process finished", "exitCode", exitCode, "stdoutBytes", stdout.Len(), "stderrBytes", stderr.Len())

	switch spec.Classify(exitCode) {
	case gitcmd.ClassOK:
		return &Result{
			Repo:   repo,
			Stdout: splitKeepEnds(stdout.Bytes()),
			Stderr: splitKeepEnds(stderr.Bytes()),
		}, nil
	case gitcmd.ClassIgnored:
		return nil, nil
	default:
		return nil, &CommandError{
			Repo:     repo,
			ExitCode: exitCode,
			Stderr:   stderr.Bytes(),
		}
	}
}

// readAll drains a pty master in fixed-size chunks.
// A pty master returns EIO once the last slave descriptor is closed; that and
// EOF both mean the channel is done.
func readAll(wg *sync.WaitGroup, f *os.File, buf *bytes.Buffer) {
	defer wg.Done()

	chunk := make([]byte, readChunkSize)

	for {
		n, err := f.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}

		if err != nil {
			return
		}
	}
}

func killChild(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Debug(ctx, "process killed", "pid", ps.Pid)
}

// envWithTerm returns the environment with TERM guaranteed set, so the child
// colorizes as if attached to a terminal.
func envWithTerm() []string {
	env := os.Environ()

	for _, kv := range env {
		if strings.HasPrefix(kv, "TERM=") {
			return env
		}
	}

	return append(env, "TERM=xterm")
}

// splitKeepEnds splits b into newline-terminated records, preserving the
// terminators. A trailing record without a newline is kept as-is.
func splitKeepEnds(b []byte) [][]byte {
	if len(b) == 0 {
		return nil
	}

	var lines [][]byte

	for len(b) > 0 {
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			lines = append(lines, b)
			break
		}

		lines = append(lines, b[:i+1])
		b = b[i+1:]
	}

	return lines
}

type ptyPair struct {
	master *os.File
	slave  *os.File
}

func openPair() (*ptyPair, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, errors.Join(ErrOpenPty, err)
	}

	return &ptyPair{master: master, slave: slave}, nil
}

func (p *ptyPair) closeSlave() {
	if p.slave != nil {
		_ = p.slave.Close()
		p.slave = nil
	}
}

func (p *ptyPair) closeMaster() {
	if p.master != nil {
		_ = p.master.Close()
		p.master = nil
	}
}

func (p *ptyPair) close() {
	p.closeSlave()
	p.closeMaster()
}
