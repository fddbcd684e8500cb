// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package logging configures the library's own diagnostic logger (distinct
// from the trace sink in internal/trace). It picks a console writer when
// stdout is an interactive terminal and structured JSON otherwise, the same
// split the teacher draws between a developer's terminal and a supervised
// process's log collector.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/KamiliArsyad/libisofuzz/internal/config"
)

// Setup installs the global zerolog logger per cfg.LogLevel, choosing a
// human-readable console writer for an interactive stdout and newline
// JSON otherwise. Unrecognized levels fall back to info.
func Setup(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if term.IsTerminal(int(os.Stdout.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
