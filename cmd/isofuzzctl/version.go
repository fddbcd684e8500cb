// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	hashiversion "github.com/hashicorp/go-version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// buildVersion is overridden at link time via -ldflags "-X main.buildVersion=...".
var buildVersion = "0.0.0-dev"

// RunVersionCommand prints the CLI's build version. The version string is
// parsed with hashicorp/go-version to validate it before printing, so a
// broken -ldflags setting fails loudly instead of printing garbage.
func RunVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the isofuzzctl build version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := hashiversion.NewVersion(normalizeVersion(buildVersion))
			if err != nil {
				return errors.Wrapf(err, "invalid build version %q", buildVersion)
			}
			cmd.Println(v.Original())
			return nil
		},
	}
}

// normalizeVersion strips a leading "v". Pre-release ("-dev") and build
// metadata ("+build") suffixes are left in place for go-version to parse.
func normalizeVersion(v string) string {
	if len(v) > 0 && v[0] == 'v' {
		return v[1:]
	}
	return v
}
