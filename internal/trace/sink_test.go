// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package trace

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KamiliArsyad/libisofuzz/internal/config"
)

func TestSinkWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.tsv")
	s := New(&config.Config{OutFile: path})
	s.WriteLine("hello")
	s.WriteLine("world")
	s.Close()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\nworld\n", string(b))
}

func TestSinkFallsBackToStderrOnUnwritablePath(t *testing.T) {
	// A path inside a non-existent directory cannot be opened for append.
	path := filepath.Join(t.TempDir(), "missing-dir", "trace.tsv")
	s := New(&config.Config{OutFile: path})
	require.Equal(t, os.Stderr, s.dest)
	s.Close()
}

func TestSinkSerializesConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.tsv")
	s := New(&config.Config{OutFile: path})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.WriteLine("line")
		}()
	}
	wg.Wait()
	s.Close()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	require.Len(t, lines, 50)
	for _, l := range lines {
		require.Equal(t, "line", l)
	}
}

func TestSinkDefaultsToStdout(t *testing.T) {
	s := New(&config.Config{})
	require.Equal(t, os.Stdout, s.dest)
}
