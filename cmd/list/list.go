// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package list implements the list subcommand, printing the discovered
// repositories without running any command.
package list

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/gitr/cmd/cmdstate"
	"github.com/matt-FFFFFF/gitr/internal/color"
	"github.com/matt-FFFFFF/gitr/internal/dispatch"
	"github.com/urfave/cli/v3"
)

const jsonFlag = "json"

// Cmd is the list subcommand.
var Cmd = &cli.Command{
	Name:  "list",
	Usage: "list discovered repositories and exit (for piping)",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  jsonFlag,
			Usage: "emit the repository list as JSON",
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

	if cmd.Bool(jsonFlag) {
		if err := writeJSON(cmd.Root().Writer, repos); err != nil {
			return cli.Exit(err.Error(), dispatch.ExitError)
		}

		return nil
	}

	for _, repo := range repos {
		fmt.Fprintln(cmd.Root().Writer, repo)
	}

	return nil
}

func writeJSON(w io.Writer, repos []string) error {
	formatter := colorjson.NewFormatter()
	formatter.Indent = 2
	formatter.DisabledColor = !color.Enabled()

	arr := make([]any, 0, len(repos))
	for _, repo := range repos {
		arr = append(arr, repo)
	}

	b, err := formatter.Marshal(arr)
	if err != nil {
		return fmt.Errorf("failed to render repository list: %w", err)
	}

	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write repository list: %w", err)
	}

	return nil
}
