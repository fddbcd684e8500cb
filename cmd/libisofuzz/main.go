// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Command libisofuzz builds the C-ABI shared library surface described by
// the spec's external interfaces: seven entry points, environment-variable
// configuration, no other exit codes or signals. Build with:
//
//	go build -buildmode=c-shared -o libisofuzz.so ./cmd/libisofuzz
//
// Opaque handles cross the boundary as uintptr-sized tokens backed by
// runtime/cgo.Handle, which pins the underlying Go value (here, the
// library-internal isofuzz.Handle) for the lifetime between trx_begin and
// trx_end. This is the standard-library mechanism for handing a Go value
// to C and recovering it later without exposing a raw Go pointer.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"runtime/cgo"

	"github.com/KamiliArsyad/libisofuzz/internal/isofuzz"
)

//export IsoFuzzInit
func IsoFuzzInit() C.int {
	if err := isofuzz.Init(); err != nil {
		return -1
	}
	return 0
}

//export IsoFuzzShutdown
func IsoFuzzShutdown() {
	isofuzz.Shutdown()
}

//export IsoFuzzTrxBegin
func IsoFuzzTrxBegin() C.uintptr_t {
	h := isofuzz.TrxBegin()
	if h == isofuzz.NullHandle {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(h))
}

//export IsoFuzzTrxPromote
func IsoFuzzTrxPromote(raw C.uintptr_t, newID C.ulonglong) {
	h, ok := resolve(raw)
	if !ok {
		return
	}
	isofuzz.TrxPromote(h, uint64(newID))
}

//export IsoFuzzTrxEnd
func IsoFuzzTrxEnd(raw C.uintptr_t) {
	h, ok := resolve(raw)
	if !ok {
		return
	}
	isofuzz.TrxEnd(h)
	cgo.Handle(raw).Delete()
}

//export IsoFuzzScheduleOp
func IsoFuzzScheduleOp(raw C.uintptr_t, intent C.int) {
	h, ok := resolve(raw)
	if !ok {
		return
	}
	isofuzz.ScheduleOp(h, isofuzz.Intent(intent))
}

//export IsoFuzzLogOp
func IsoFuzzLogOp(raw C.uintptr_t, opType C.int, table *C.char, column *C.char, hasRow C.int, rowID C.ulonglong, writerOrOldLibID C.ulonglong) {
	h, ok := resolve(raw)
	if !ok {
		return
	}

	var obj isofuzz.ObjectDescriptor
	if table != nil {
		obj.Table = C.GoString(table)
		if column != nil {
			obj.Column = C.GoString(column)
		}
		obj.HasRow = hasRow != 0
		obj.RowID = uint64(rowID)
	}

	isofuzz.LogOp(h, isofuzz.OpType(opType), obj, uint64(writerOrOldLibID))
}

// resolve recovers the internal handle from a cgo.Handle token. A zero
// token (null handle) or an already-deleted token (use after trx_end)
// resolves to ok=false, matching the spec's "null handle is a no-op, use
// after trx_end is undefined" contract. The safe no-op is chosen over
// letting a stale token panic the host.
func resolve(raw C.uintptr_t) (isofuzz.Handle, bool) {
	if raw == 0 {
		return isofuzz.NullHandle, false
	}
	defer func() { recover() }() //nolint:errcheck // stale/foreign token: treat as invalid, never panic into the host DBMS.

	v := cgo.Handle(raw).Value()
	h, ok := v.(isofuzz.Handle)
	return h, ok
}

func main() {}
