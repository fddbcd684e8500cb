// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package isofuzz is the Go-native facade over the log sink, transaction
// registry, and epoch scheduler: the seven entry points of the spec's
// public API (Init, Shutdown, TrxBegin, TrxPromote, TrxEnd, ScheduleOp,
// LogOp), wired together the way the library is used in process. cmd/
// libisofuzz is a thin cgo translation layer over this package; a Go host
// can call it directly without cgo at all.
package isofuzz

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KamiliArsyad/libisofuzz/internal/config"
	"github.com/KamiliArsyad/libisofuzz/internal/gid"
	"github.com/KamiliArsyad/libisofuzz/internal/httpdebug"
	"github.com/KamiliArsyad/libisofuzz/internal/logging"
	"github.com/KamiliArsyad/libisofuzz/internal/metrics"
	"github.com/KamiliArsyad/libisofuzz/internal/registry"
	"github.com/KamiliArsyad/libisofuzz/internal/scheduler"
	"github.com/KamiliArsyad/libisofuzz/internal/trace"
)

// app bundles one Init call's worth of singleton state.
type app struct {
	cfg      *config.Config
	sink     *trace.Sink
	registry *registry.Registry
	sched    *scheduler.Scheduler
	metrics  *metrics.Collector
	debugSrv *httpdebug.Server
	watcher  *config.Watcher
}

var (
	mu      sync.Mutex
	current *app
)

// Init initializes the log sink, then the scheduler. Idempotent: calling
// Init twice without an intervening Shutdown is a no-op on the second call.
func Init() error {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg)

	sink := trace.New(cfg)
	collector := metrics.New()
	reg := registry.New(sink)
	sched := scheduler.New(
		time.Duration(cfg.EpochMS)*time.Millisecond,
		cfg.RandomSeed,
		scheduler.WithObserver(collector),
	)
	sched.Start()

	var dbg *httpdebug.Server
	if cfg.MetricsAddr != "" {
		dbg = httpdebug.New(cfg.MetricsAddr, collector, sched, reg)
		dbg.Start()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("libisofuzz debug server listening")
	}

	watcher, err := config.WatchEpoch(cfg, sched.SetEpoch)
	if err != nil {
		log.Warn().Err(err).Msg("libisofuzz: epoch hot-reload watcher not started")
		watcher = &config.Watcher{}
	}

	current = &app{
		cfg:      cfg,
		sink:     sink,
		registry: reg,
		sched:    sched,
		metrics:  collector,
		debugSrv: dbg,
		watcher:  watcher,
	}
	return nil
}

// Shutdown stops the scheduler, then closes the log sink. Idempotent: a
// second call is a no-op. After Shutdown returns, every other entry point
// is a no-op on null handles and undefined on non-null ones.
func Shutdown() {
	mu.Lock()
	a := current
	current = nil
	mu.Unlock()

	if a == nil {
		return
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.debugSrv != nil {
		a.debugSrv.Stop()
	}
	a.sched.Shutdown()
	a.sink.Close()
}

func activeApp() *app {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// TrxBegin registers a new transaction, capturing the calling goroutine's
// id for trace attribution, and returns its handle. Returns NullHandle if
// the library has not been initialized.
func TrxBegin() Handle {
	a := activeApp()
	if a == nil {
		return NullHandle
	}
	id := a.registry.Begin(gid.Current())
	a.metrics.ObserveBegin()
	return Handle(id)
}

// TrxPromote stores newID as h's permanent DBMS-assigned identifier and
// emits one PROMOTE trace line. Null handle: no-op.
func TrxPromote(h Handle, newID uint64) {
	a := activeApp()
	if a == nil || h == NullHandle {
		return
	}
	a.registry.Promote(uint64(h), newID, gid.Current())
	a.metrics.ObservePromote()
}

// TrxEnd unregisters h's transaction. The host DBMS calls this after its
// own commit or abort completes. Null handle: no-op.
func TrxEnd(h Handle) {
	a := activeApp()
	if a == nil || h == NullHandle {
		return
	}
	a.registry.End(uint64(h))
}

// ScheduleOp resolves h to a lib_id and parks the caller until the
// scheduler releases it, unless intent is a transaction-lifecycle intent
// (TXN_BEGIN/COMMIT/ABORT), which is only counted in metrics and returns
// without parking; no trace line is written here. Null handle: no-op.
func ScheduleOp(h Handle, intent Intent) {
	a := activeApp()
	if a == nil || h == NullHandle {
		return
	}
	a.metrics.ObserveScheduled(intent.String())
	if !intent.schedules() {
		return
	}
	a.sched.Request(uint64(h))
}

// LogOp assembles one trace line and submits it to the log sink. Null
// handle, or a handle unknown to the registry (e.g. after TrxEnd), is a
// no-op.
func LogOp(h Handle, op OpType, obj ObjectDescriptor, writerOrOldLibID uint64) {
	a := activeApp()
	if a == nil || h == NullHandle {
		return
	}
	rec, ok := a.registry.Lookup(uint64(h))
	if !ok {
		return
	}

	line := trace.Record{
		ThreadID:       rec.ThreadID,
		EffectiveTrxID: rec.EffectiveTrxID(),
		Op:             op.traceOpName(),
		Object: trace.Object{
			Table:  obj.Table,
			Column: obj.Column,
			RowID:  obj.RowID,
			HasRow: obj.HasRow,
		},
		WriterOrOldLibID: writerOrOldLibID,
	}.Line()

	a.sink.WriteLine(line)
	a.metrics.ObserveLogged(op.String(), obj.Table)
}
