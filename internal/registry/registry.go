// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package registry implements the transaction registry: library-assigned
// identifiers, promotion to a DBMS-assigned identifier, and the handle →
// record mapping described by the spec's transaction registry component.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/KamiliArsyad/libisofuzz/internal/trace"
)

// Record is a transaction's metadata. LibID is immutable once assigned;
// DBMSID starts at 0 and is written at most meaningfully once by Promote.
type Record struct {
	LibID    uint64
	DBMSID   atomic.Uint64
	ThreadID string
}

// EffectiveTrxID is DBMSID if non-zero, otherwise LibID, the identifier
// the trace format uses to attribute a log line.
func (r *Record) EffectiveTrxID() uint64 {
	if d := r.DBMSID.Load(); d != 0 {
		return d
	}
	return r.LibID
}

// Registry is a process-wide singleton with lifecycle tied to library
// Init/Shutdown. The zero value is not usable; construct with New.
type Registry struct {
	mu      sync.Mutex
	records map[uint64]*Record
	nextID  atomic.Uint64

	sink *trace.Sink
}

// New constructs an empty registry that emits PROMOTE records to sink.
func New(sink *trace.Sink) *Registry {
	return &Registry{
		records: make(map[uint64]*Record),
		sink:    sink,
	}
}

// Begin allocates the next lib_id, starting at 1 and never reused, and
// registers a new record for threadID. Monotonicity only requires the
// fetch-and-increment to be atomic; acquire-release ordering is not needed
// because every later read of LibID goes through the same registry mutex
// or the atomic DBMSID.
func (r *Registry) Begin(threadID string) uint64 {
	id := r.nextID.Add(1)
	rec := &Record{LibID: id, ThreadID: threadID}

	r.mu.Lock()
	r.records[id] = rec
	r.mu.Unlock()

	return id
}

// End removes libID's record. A zero libID (null handle) is a no-op. The
// record must not be accessed after this call returns.
func (r *Registry) End(libID uint64) {
	if libID == 0 {
		return
	}
	r.mu.Lock()
	delete(r.records, libID)
	r.mu.Unlock()
}

// Lookup returns libID's record. The returned pointer must not be retained
// across a concurrent End call for the same libID; call sites hold it only
// for the duration of a single operation.
func (r *Registry) Lookup(libID uint64) (*Record, bool) {
	if libID == 0 {
		return nil, false
	}
	r.mu.Lock()
	rec, ok := r.records[libID]
	r.mu.Unlock()
	return rec, ok
}

// Promote stores newDBMSID into libID's record and emits one PROMOTE trace
// line whose writer field carries the old lib_id, per the spec's log format.
// Callable at most once per transaction for defined behavior; a second call
// overwrites the value and emits a second PROMOTE line (spec treats this as
// undefined and untested).
func (r *Registry) Promote(libID uint64, newDBMSID uint64, threadID string) {
	if libID == 0 {
		return
	}
	rec, ok := r.Lookup(libID)
	if !ok {
		return
	}
	rec.DBMSID.Store(newDBMSID)

	line := trace.Record{
		ThreadID:         threadID,
		EffectiveTrxID:   newDBMSID,
		Op:               trace.OpPromote,
		WriterOrOldLibID: libID,
	}.Line()
	r.sink.WriteLine(line)
}

// Len reports the number of live transaction records. Used by the optional
// debug HTTP server and tests; not part of the spec's required surface.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
