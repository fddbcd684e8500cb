// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package gid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrentIsNonEmpty(t *testing.T) {
	require.NotEmpty(t, Current())
}

func TestCurrentDiffersAcrossGoroutines(t *testing.T) {
	const n = 8
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = Current()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, id := range ids {
		require.NotEmpty(t, id)
		seen[id] = true
	}
	require.Greater(t, len(seen), 1, "expected distinct goroutine ids across concurrent goroutines")
}
