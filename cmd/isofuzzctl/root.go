// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "isofuzzctl",
		Short:         "Drive and inspect the isofuzz concurrency scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		RunSelftestCommand(),
		RunInspectCommand(),
		RunVersionCommand(),
	)
	return cmd
}

// Execute runs the isofuzzctl root command.
func Execute() error {
	return newRootCommand().Execute()
}
