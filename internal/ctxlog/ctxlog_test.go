// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/matt-FFFFFF/gitr/internal/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewConsole(buf, slog.LevelDebug))

	ctx := New(context.Background(), logger)
	assert.Same(t, logger, Logger(ctx))
}

func TestLoggerFallsBackToDefault(t *testing.T) {
	assert.Same(t, DefaultLogger, Logger(context.Background()))
}

func TestConsoleHandlerWritesMessageAndAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewConsole(buf, slog.LevelDebug))

	logger.Info("probe finished", "repo", "a/b", "exitCode", 0)

	out := buf.String()
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "probe finished")
	assert.Contains(t, out, "repo")
	assert.Contains(t, out, "a/b")
}

func TestConsoleHandlerLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewConsole(buf, slog.LevelWarn))

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestConsoleHandlerWithAttrsAndGroup(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewConsole(buf, slog.LevelDebug))

	logger.With("run", "r1").WithGroup("git").Info("dispatch", "repos", 3)

	out := buf.String()
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "r1")
	assert.Contains(t, out, "git")
	assert.Contains(t, out, "repos")
}

func TestConsoleHandlerTracksColorState(t *testing.T) {
	was := color.Enabled()
	t.Cleanup(func() { color.SetEnabled(was) })

	color.SetEnabled(false)

	buf := &bytes.Buffer{}
	logger := slog.New(NewConsole(buf, slog.LevelDebug))

	logger.Info("plain", "repo", "a")
	assert.NotContains(t, buf.String(), "\033[", "attrs must not be colorized while color is off")

	// Color toggled after handler construction, e.g. by an explicit
	// --color=always in the forwarded git args.
	color.SetEnabled(true)
	buf.Reset()

	logger.Info("colored", "repo", "a")
	assert.Contains(t, buf.String(), "\033[")
}

func TestConsoleHandlerErrorAttr(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewConsole(buf, slog.LevelDebug))

	logger.Error("command failed", "error", assert.AnError)

	require.Contains(t, buf.String(), assert.AnError.Error())
}
