// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the gitr command-line application.
package main

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/gitr/cmd"
	"github.com/matt-FFFFFF/gitr/internal/ctxlog"
	"github.com/matt-FFFFFF/gitr/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	signalbroker.IgnorePipe()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	os.Exit(cmd.Main(ctx, os.Args))
}
