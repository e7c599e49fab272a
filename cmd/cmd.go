// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for gitr.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matt-FFFFFF/gitr"
	"github.com/matt-FFFFFF/gitr/cmd/cmdstate"
	"github.com/matt-FFFFFF/gitr/cmd/exec"
	"github.com/matt-FFFFFF/gitr/cmd/grep"
	"github.com/matt-FFFFFF/gitr/cmd/list"
	"github.com/matt-FFFFFF/gitr/internal/config"
	"github.com/matt-FFFFFF/gitr/internal/ctxlog"
	"github.com/matt-FFFFFF/gitr/internal/dispatch"
	"github.com/matt-FFFFFF/gitr/internal/output"
	"github.com/matt-FFFFFF/gitr/internal/repofind"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	depthFlag     = "depth"
	cwdFlag       = "cwd"
	includeFlag   = "include-repo"
	excludeFlag   = "exclude-repo"
	prefixFlag    = "prefix"
	listReposFlag = "list-repos"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		grep.Cmd,
		exec.Cmd,
		list.Cmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "gitr",
	Description: `Gitr discovers every git repository beneath a directory and runs one git
command per repository concurrently, merging the captured output into a
single, optionally-prefixed stream. The first failing repository aborts
the whole run.`,
	Usage: "gitr grep TODO",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    depthFlag,
			Aliases: []string{"d"},
			Usage:   "max recurse depth for repository discovery",
			Value:   repofind.DefaultDepth,
		},
		&cli.StringFlag{
			Name:    cwdFlag,
			Aliases: []string{"C"},
			Usage:   "change current working directory",
		},
		&cli.StringSliceFlag{
			Name:    includeFlag,
			Aliases: []string{"I"},
			Usage:   "regex pattern of repos to include",
		},
		&cli.StringSliceFlag{
			Name:    excludeFlag,
			Aliases: []string{"X"},
			Usage:   "regex pattern of repos to exclude",
		},
		&cli.StringFlag{
			Name:  prefixFlag,
			Usage: "prefix git output with the repo path: repo, line or no (default changes with command)",
		},
		&cli.BoolFlag{
			Name:  listReposFlag,
			Usage: "just list repos and exit (for piping)",
		},
	},
	Before: beforeFunc,
	Action: func(ctx context.Context, cmd *cli.Command) error {
		st := cmdstate.From(ctx)

		if st.ListOnly {
			repos, err := st.Repos(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					fmt.Fprintln(cmd.Root().ErrWriter, "Caught interrupt, exiting.")
					return cli.Exit("", dispatch.ExitInterrupted)
				}

				return cli.Exit(err.Error(), dispatch.ExitError)
			}

			for _, repo := range repos {
				fmt.Fprintln(cmd.Root().Writer, repo)
			}

			return nil
		}

		return cli.Exit(fmt.Sprintf("no command given, see '%s help'", cmd.Name), dispatch.ExitError)
	},
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
	// Exit codes carry meaning (1 error, 2 interrupt), so Main maps them to
	// the process exit itself instead of letting the framework os.Exit.
	ExitErrHandler: func(context.Context, *cli.Command, error) {},
}

// Main runs the root command and maps the outcome to a process exit code.
func Main(ctx context.Context, args []string) int {
	RootCmd.Version = fmt.Sprintf("%s (commit: %s)", gitr.Version, gitr.Commit)

	if err := RootCmd.Run(ctx, args); err != nil {
		var coder cli.ExitCoder
		if errors.As(err, &coder) {
			if msg := coder.Error(); msg != "" {
				fmt.Fprintln(RootCmd.ErrWriter, msg)
			}

			return coder.ExitCode()
		}

		ctxlog.Error(ctx, "command failed", "error", err)

		return dispatch.ExitError
	}

	return dispatch.ExitOK
}

// beforeFunc resolves the global flags and the user defaults file into the
// state shared by all subcommands.
func beforeFunc(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(afero.NewOsFs(), config.Path())
	if err != nil {
		return ctx, err
	}

	cwd := cmd.String(cwdFlag)
	if cwd == "" {
		if cwd, err = os.Getwd(); err != nil {
			return ctx, fmt.Errorf("cannot determine working directory: %w", err)
		}
	}

	if cwd, err = filepath.Abs(cwd); err != nil {
		return ctx, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	depth := int(cmd.Int(depthFlag))
	if !cmd.IsSet(depthFlag) && cfg.Depth > 0 {
		depth = cfg.Depth
	}

	prefix := cmd.String(prefixFlag)
	if prefix == "" {
		prefix = cfg.Prefix
	}

	mode, err := output.ParsePrefixMode(prefix)
	if err != nil {
		return ctx, err
	}

	include, err := repofind.CompilePatterns(cmd.StringSlice(includeFlag))
	if err != nil {
		return ctx, err
	}

	excludePatterns := append(cfg.ExcludeRepos, cmd.StringSlice(excludeFlag)...)

	exclude, err := repofind.CompilePatterns(excludePatterns)
	if err != nil {
		return ctx, err
	}

	st := &cmdstate.State{
		Cwd:          cwd,
		Depth:        depth,
		Include:      include,
		Exclude:      exclude,
		Prefix:       mode,
		ListOnly:     cmd.Bool(listReposFlag),
		GrepDefaults: cfg.GrepDefaults,
	}

	return cmdstate.With(ctx, st), nil
}
