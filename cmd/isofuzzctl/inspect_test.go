// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTraceLineValid(t *testing.T) {
	e, err := parseTraceLine("140234\t1\tREAD\torders\tstatus\t42\tN/A")
	require.NoError(t, err)
	require.Equal(t, "140234", e.ThreadID)
	require.Equal(t, "1", e.EffectiveTrxID)
	require.Equal(t, "READ", e.Op)
	require.Equal(t, "orders", e.Table)
	require.Equal(t, "42", e.RowID)
	require.Equal(t, "N/A", e.WriterID)
}

func TestParseTraceLineWrongFieldCount(t *testing.T) {
	_, err := parseTraceLine("140234\t1\tREAD")
	require.Error(t, err)
}

func TestParseTraceLinePromote(t *testing.T) {
	e, err := parseTraceLine("140234\t9999\tPROMOTE\tN/A\tN/A\tN/A\t1")
	require.NoError(t, err)
	require.Equal(t, "PROMOTE", e.Op)
	require.Equal(t, "1", e.WriterID)
}
