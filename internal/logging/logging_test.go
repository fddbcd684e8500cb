// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/KamiliArsyad/libisofuzz/internal/config"
)

func TestSetupAppliesLevel(t *testing.T) {
	Setup(&config.Config{LogLevel: "debug"})
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestSetupFallsBackOnUnknownLevel(t *testing.T) {
	Setup(&config.Config{LogLevel: "not-a-level"})
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
