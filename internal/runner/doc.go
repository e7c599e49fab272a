// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runner executes one git command for one repository and captures
// its output byte-exactly. The child's stdin, stdout and stderr are backed
// by pseudo-terminals so that it believes it is attached to an interactive
// terminal and emits ANSI color codes even though the output is captured.
// Cancellation of the run context interrupts the child and discards its
// result.
package runner
