// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repofind discovers git repository roots beneath a directory.
// Discovery expands a breadth-first frontier of (directory, remaining depth)
// pairs, probing each candidate concurrently with a bounded pool. A directory
// that is itself a repository root short-circuits any descent beneath it.
// Discovery is best-effort: directories that cannot be read or probed are
// treated as "not a repository" and skipped, never failing the run.
package repofind
