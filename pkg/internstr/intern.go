// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package internstr provides string interning for identifiers that repeat at
// high frequency, such as table and column names flowing through a trace
// sink. Interning keeps one shared backing array per distinct value instead
// of one allocation per occurrence.
package internstr

import "unique"

// Intern returns a canonical representation of s using Go's unique package.
// Identical strings share the same underlying memory, which matters for a
// sidecar that re-emits the same handful of table/column names millions of
// times over a fuzzing run.
func Intern(s string) string {
	if s == "" {
		return ""
	}
	return unique.Make(s).Value()
}

// InternOrNA interns s, or returns "N/A" when s is empty. Matches the log
// line format's placeholder for absent object fields.
func InternOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return unique.Make(s).Value()
}
