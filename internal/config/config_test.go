// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, defaultRandomSeed, cfg.RandomSeed)
	require.Equal(t, defaultEpochMS, cfg.EpochMS)
	require.Equal(t, "", cfg.OutFile)
}

func TestLoadRandomSeedFromEnv(t *testing.T) {
	t.Setenv("RANDOM_SEED", "777")
	cfg, err := Load()
	require.NoError(t, err)
	require.EqualValues(t, 777, cfg.RandomSeed)
}

func TestLoadRandomSeedInvalidFallsBackSilently(t *testing.T) {
	t.Setenv("RANDOM_SEED", "not-a-number")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, defaultRandomSeed, cfg.RandomSeed)
}

func TestLoadEpochMSNonPositiveFallsBack(t *testing.T) {
	for _, raw := range []string{"0", "-5", "nope"} {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("ISOFUZZ_EPOCH_MS", raw)
			cfg, err := Load()
			require.NoError(t, err)
			require.Equal(t, defaultEpochMS, cfg.EpochMS)
		})
	}
}

func TestLoadEpochMSValid(t *testing.T) {
	t.Setenv("ISOFUZZ_EPOCH_MS", "50")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 50, cfg.EpochMS)
}

func TestLoadOutFile(t *testing.T) {
	t.Setenv("OUT_FILE", "/tmp/trace.tsv")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/trace.tsv", cfg.OutFile)
}

func TestLoadLogLevelDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadLogLevelFromEnv(t *testing.T) {
	t.Setenv("ISOFUZZ_LOG_LEVEL", "debug")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
}
