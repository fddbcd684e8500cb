// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchEpochNoFileIsNoop(t *testing.T) {
	cfg := &Config{}
	w, err := WatchEpoch(cfg, func(time.Duration) { t.Fatal("apply should not be called") })
	require.NoError(t, err)
	w.Stop()
}

func TestWatchEpochAppliesChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "isofuzz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("epoch_ms: 10\n"), 0o644))

	cfg := &Config{WatchFile: path}
	var got atomic.Int64
	w, err := WatchEpoch(cfg, func(d time.Duration) { got.Store(int64(d)) })
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("epoch_ms: 250\n"), 0o644))

	require.Eventually(t, func() bool {
		return got.Load() == int64(250*time.Millisecond)
	}, 2*time.Second, 10*time.Millisecond)
}
