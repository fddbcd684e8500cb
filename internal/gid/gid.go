// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package gid supplies a best-effort caller-thread identifier for trace
// attribution. The spec's originating-language DBMS sidecar reads the
// native OS thread id directly (pthread_self() or equivalent); Go exposes
// no public, stable equivalent, so this package falls back to the
// goroutine id embedded in a runtime.Stack() frame header. This is strictly
// a correlation label for the trace ("for trace attribution only" per the
// transaction record's thread-identifier field); nothing in the scheduler
// or registry branches on its value.
package gid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current returns the calling goroutine's id as a decimal string, e.g.
// "18". Returns "0" if the id cannot be parsed, which never happens on any
// Go runtime this library targets but is handled rather than panicking;
// trace attribution degrading to "0" is preferable to crashing the host.
func Current() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return "0"
	}
	b = b[len(prefix):]

	sp := bytes.IndexByte(b, ' ')
	if sp < 0 {
		return "0"
	}
	idBytes := b[:sp]

	if _, err := strconv.ParseUint(string(idBytes), 10, 64); err != nil {
		return "0"
	}
	return string(idBytes)
}
