// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package isofuzz

import "github.com/KamiliArsyad/libisofuzz/internal/trace"

// Handle is the opaque token callers use to refer to a transaction record.
// Valid only in [TrxBegin, TrxEnd). A zero Handle is a no-op for every
// entry point.
type Handle uint64

// NullHandle is the no-op handle value.
const NullHandle Handle = 0

// Intent enumerates a schedule_op call's declared purpose. Currently
// informational except for the TXN_* bypass: those intents never park
// (spec §4.3 "Bypass policy").
type Intent int

const (
	IntentTxnBegin Intent = iota
	IntentTxnCommit
	IntentTxnAbort
	IntentOpRead
	IntentOpWrite
)

// String names the intent for metrics labels and logging.
func (i Intent) String() string {
	switch i {
	case IntentTxnBegin:
		return "TXN_BEGIN"
	case IntentTxnCommit:
		return "TXN_COMMIT"
	case IntentTxnAbort:
		return "TXN_ABORT"
	case IntentOpRead:
		return "OP_READ"
	case IntentOpWrite:
		return "OP_WRITE"
	default:
		return "UNKNOWN_INTENT"
	}
}

// schedules reports whether this intent should park the caller. Transaction
// lifecycle intents log only, since parking them risks deadlocking against
// the host DBMS's own transaction-management locks (spec §4.3, §9 "Open
// question").
func (i Intent) schedules() bool {
	switch i {
	case IntentTxnBegin, IntentTxnCommit, IntentTxnAbort:
		return false
	default:
		return true
	}
}

// OpType enumerates a log_op call's record kind.
type OpType int

const (
	OpRead OpType = iota
	OpWriteUpdate
	OpWriteInsert
	OpWriteDelete
	OpTxnPromote
	OpTxnBegin
	OpTxnCommit
)

func (o OpType) traceOpName() trace.OpName {
	switch o {
	case OpRead:
		return trace.OpRead
	case OpWriteUpdate:
		return trace.OpUpdate
	case OpWriteInsert:
		return trace.OpInsert
	case OpWriteDelete:
		return trace.OpDelete
	case OpTxnPromote:
		return trace.OpPromote
	case OpTxnBegin:
		return trace.OpBegin
	case OpTxnCommit:
		return trace.OpCommit
	default:
		return trace.OpUnknown
	}
}

// String names the op type for metrics labels.
func (o OpType) String() string {
	return string(o.traceOpName())
}

// ObjectDescriptor carries the row a READ/UPDATE/INSERT/DELETE touched. The
// zero value means "no object" (transaction-lifecycle events), rendered as
// N/A in every trace field.
type ObjectDescriptor struct {
	Table  string
	Column string
	RowID  uint64
	HasRow bool
}
