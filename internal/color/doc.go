// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color provides functions to determine if color output is enabled
// and to colorize strings with ANSI escape codes.
// Detection honours the NO_COLOR and FORCE_COLOR environment variables and
// falls back to terminal detection via golang.org/x/term. The detected state
// can be overridden at runtime, which gitr uses when the forwarded git
// arguments contain an explicit --color=always or --color=never.
package color
