// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package exec implements the exec subcommand: an arbitrary git command
// fanned out over every discovered repository.
package exec

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/gitr/cmd/cmdstate"
	"github.com/matt-FFFFFF/gitr/internal/color"
	"github.com/matt-FFFFFF/gitr/internal/dispatch"
	"github.com/matt-FFFFFF/gitr/internal/gitcmd"
	"github.com/matt-FFFFFF/gitr/internal/output"
	"github.com/urfave/cli/v3"
)

// Cmd is the exec subcommand.
var Cmd = &cli.Command{
	Name:        "exec",
	Usage:       "run an arbitrary git command in every repository",
	ArgsUsage:   "[--] <git args ...>",
	Description: "Only exit code 0 is a success; any other exit code aborts the whole run.",
	Action:      actionFunc,
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
	if len(gitArgs) == 0 {
		return cli.Exit("no git arguments given", dispatch.ExitError)
	}

	color.SetEnabled(gitcmd.UseColor(gitArgs))

	spec := gitcmd.NewPassthrough(gitArgs)

	fmt.Fprintf(cmd.Root().ErrWriter, "=> %s\n", spec)

	prefix := st.Prefix
	if prefix == "" {
		prefix = output.PrefixRepo
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

func stripSeparator(args []string) []string {
	if len(args) > 0 && args[0] == "--" {
		return args[1:]
	}

	return args
}
