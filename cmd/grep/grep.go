// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package grep implements the grep subcommand: git grep fanned out over
// every discovered repository.
package grep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matt-FFFFFF/gitr/cmd/cmdstate"
	"github.com/matt-FFFFFF/gitr/internal/color"
	"github.com/matt-FFFFFF/gitr/internal/dispatch"
	"github.com/matt-FFFFFF/gitr/internal/gitcmd"
	"github.com/matt-FFFFFF/gitr/internal/output"
	"github.com/urfave/cli/v3"
)

const (
	excludeFlag    = "exclude"
	noDefaultsFlag = "no-defaults"
)

// Cmd is the grep subcommand.
var Cmd = &cli.Command{
	Name:        "grep",
	Usage:       "run git grep in every repository",
	ArgsUsage:   "[--] [git grep args ...]",
	Description: "Exit code 1 from git grep means no match and is not an error; any other non-zero exit aborts the whole run.",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    excludeFlag,
			Aliases: []string{"x"},
			Usage:   "convenience for git grep's exclude pathspecs (e.g. '*.lock')",
		},
		&cli.BoolFlag{
			Name:  noDefaultsFlag,
			Usage: "don't use default git args: " + strings.Join(gitcmd.DefaultGrepArgs, " "),
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	st := cmdstate.From(ctx)

	repos, err := st.Repos(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(cmd.Root().ErrWriter, "Caught interrupt, exiting.")
			return cli.Exit("", dispatch.ExitInterrupted)
		}

		return cli.Exit(err.Error(), dispatch.ExitError)
	}

	if st.ListOnly {
		for _, repo := range repos {
			fmt.Fprintln(cmd.Root().Writer, repo)
		}

		return nil
	}

	gitArgs := stripSeparator(cmd.Args().Slice())

	useColor := gitcmd.UseColor(gitArgs)
	color.SetEnabled(useColor)

	spec := gitcmd.NewGrep(gitcmd.GrepOptions{
		Args:       gitArgs,
		Excludes:   cmd.StringSlice(excludeFlag),
		Defaults:   st.GrepDefaults,
		NoDefaults: cmd.Bool(noDefaultsFlag),
		Color:      useColor,
	})

	fmt.Fprintf(cmd.Root().ErrWriter, "=> %s\n", spec)

	prefix := st.Prefix
	if prefix == "" {
		prefix = output.PrefixLine
	}

	sess := &dispatch.Session{
		Spec:       spec,
		Aggregator: output.New(os.Stdout, os.Stderr, prefix, st.Cwd),
		Diag:       cmd.Root().ErrWriter,
	}

	if code := sess.Dispatch(ctx, repos); code != dispatch.ExitOK {
		return cli.Exit("", code)
	}

	return nil
}

// stripSeparator removes the leading "--" used to disambiguate gitr's own
// flags from the forwarded git ones.
func stripSeparator(args []string) []string {
	if len(args) > 0 && args[0] == "--" {
		return args[1:]
	}

	return args
}
