// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package registry

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KamiliArsyad/libisofuzz/internal/config"
	"github.com/KamiliArsyad/libisofuzz/internal/trace"
)

func newTestSink(t *testing.T) (*trace.Sink, string) {
	path := filepath.Join(t.TempDir(), "trace.tsv")
	return trace.New(&config.Config{OutFile: path}), path
}

func TestBeginAllocatesMonotonicIDs(t *testing.T) {
	sink, _ := newTestSink(t)
	defer sink.Close()
	r := New(sink)

	a := r.Begin("thread-a")
	b := r.Begin("thread-b")
	c := r.Begin("thread-a")

	require.Equal(t, uint64(1), a)
	require.Equal(t, uint64(2), b)
	require.Equal(t, uint64(3), c)
}

func TestBeginIsMonotonicUnderConcurrency(t *testing.T) {
	sink, _ := newTestSink(t)
	defer sink.Close()
	r := New(sink)

	const n = 200
	ids := make([]uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = r.Begin("t")
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, n)
	for _, id := range ids {
		require.False(t, seen[id], "duplicate lib_id %d", id)
		seen[id] = true
		require.Greater(t, id, uint64(0))
	}
}

func TestEndRemovesRecord(t *testing.T) {
	sink, _ := newTestSink(t)
	defer sink.Close()
	r := New(sink)

	h := r.Begin("t")
	_, ok := r.Lookup(h)
	require.True(t, ok)

	r.End(h)
	_, ok = r.Lookup(h)
	require.False(t, ok)
}

func TestEndNullHandleIsNoop(t *testing.T) {
	sink, _ := newTestSink(t)
	defer sink.Close()
	r := New(sink)
	require.NotPanics(t, func() { r.End(0) })
}

func TestLookupUnknownHandle(t *testing.T) {
	sink, _ := newTestSink(t)
	defer sink.Close()
	r := New(sink)
	_, ok := r.Lookup(12345)
	require.False(t, ok)
}

func TestEffectiveTrxIDBeforeAndAfterPromote(t *testing.T) {
	sink, _ := newTestSink(t)
	defer sink.Close()
	r := New(sink)

	h := r.Begin("t")
	rec, ok := r.Lookup(h)
	require.True(t, ok)
	require.Equal(t, h, rec.EffectiveTrxID())

	r.Promote(h, 9999, "t")
	require.Equal(t, uint64(9999), rec.EffectiveTrxID())
}

func TestPromoteEmitsTraceLineWithOldLibID(t *testing.T) {
	sink, path := newTestSink(t)
	r := New(sink)

	h := r.Begin("t1")
	r.Promote(h, 9999, "t1")
	sink.Close()

	data, err := readFile(path)
	require.NoError(t, err)
	require.Contains(t, data, "PROMOTE")
	line := strings.TrimSpace(data)
	fields := strings.Split(line, "\t")
	require.Equal(t, "9999", fields[1])
	require.Equal(t, "PROMOTE", fields[2])
	require.Equal(t, "1", fields[6])
}

func TestPromoteNullHandleIsNoop(t *testing.T) {
	sink, _ := newTestSink(t)
	defer sink.Close()
	r := New(sink)
	require.NotPanics(t, func() { r.Promote(0, 5, "t") })
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}
