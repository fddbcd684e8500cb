// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package trace

import "testing"

func TestRecordLineWithObject(t *testing.T) {
	r := Record{
		ThreadID:       "t1",
		EffectiveTrxID: 1,
		Op:             OpRead,
		Object:         Object{Table: "t", Column: "c", RowID: 42, HasRow: true},
		WriterOrOldLibID: 7,
	}
	want := "t1\t1\tREAD\tt\tc\t42\t7"
	if got := r.Line(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRecordLineWithoutObject(t *testing.T) {
	r := Record{
		ThreadID:       "t1",
		EffectiveTrxID: 9999,
		Op:             OpPromote,
		WriterOrOldLibID: 1,
	}
	want := "t1\t9999\tPROMOTE\tN/A\tN/A\tN/A\t1"
	if got := r.Line(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRecordLineSanitizesEmbeddedTabsAndNewlines(t *testing.T) {
	r := Record{
		ThreadID: "t\t1\n",
		Op:       OpUnknown,
		Object:   Object{Table: "ta\tble", Column: "co\nl"},
	}
	line := r.Line()
	fields := len(splitTabs(line))
	if fields != 7 {
		t.Fatalf("expected exactly 7 tab-separated fields, got %d in %q", fields, line)
	}
}

func splitTabs(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\t' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
