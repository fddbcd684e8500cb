// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package scheduler implements the epoch-based centralized scheduler: a
// rendezvous that batches requests from an arbitrary number of worker
// goroutines over a short wall-clock window (an "epoch") and releases them
// one at a time in a randomized order under a seeded PRNG.
//
// The central subtlety this package encodes is waiter lifetime across
// goroutine boundaries. The source design (a C/C++ DBMS sidecar) fixed a
// heap-corruption bug by moving waiter destruction onto the waking
// goroutine; Go has no manual destruction to place, but the same
// non-owning-reference discipline is preserved: the scheduler holds only a
// map entry pointing at a channel the worker itself allocated, and that
// entry is deleted before the scheduler ever signals it, so no goroutine
// observes a waiter after its owner has been notified.
package scheduler

import (
	"container/heap"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// State is the scheduler's two-phase epoch state.
type State int32

const (
	Collecting State = iota
	Draining
)

func (s State) String() string {
	if s == Draining {
		return "DRAINING"
	}
	return "COLLECTING"
}

// maxPriority is the inclusive upper bound of the uniform priority draw.
const maxPriority = 1_000_000

// Observer receives scheduler lifecycle events for metrics collection. All
// methods must be cheap and non-blocking; a nil Observer passed to
// WithObserver is ignored. Defined here (rather than importing the metrics package
// directly) to keep the scheduler free of a dependency on how its events
// are reported.
type Observer interface {
	RequestSubmitted()
	BatchDrained(batchSize int)
	RequestReleased()
	ShutdownForceReleased(n int)
}

type noopObserver struct{}

func (noopObserver) RequestSubmitted()         {}
func (noopObserver) BatchDrained(int)          {}
func (noopObserver) RequestReleased()          {}
func (noopObserver) ShutdownForceReleased(int) {}

// pending is a (priority, lib_id) pair sitting in the submission FIFO,
// waiting to be drained into the active batch's priority queue.
type pending struct {
	priority uint32
	libID    uint64
}

// Scheduler is a one-shot object: construct with New, Start its background
// goroutine, submit requests with Request, and Shutdown exactly once. A
// scheduler that has been shut down must not be reused; Init/Shutdown
// idempotence is handled one layer up, by always constructing a fresh
// Scheduler on Init.
type Scheduler struct {
	epoch    time.Duration
	observer Observer

	// scheduler-global mutex: protects the priority queue, the waiter map,
	// the PRNG, and epoch-state writes on the DRAINING path.
	mu         sync.Mutex
	state      State
	pq         priorityQueue
	waiters    map[uint64]chan struct{}
	rng        *rand.Rand
	priorityFn func() uint32
	seq        uint64

	// pending-queue mutex: protects only the submission FIFO. Kept
	// separate from mu so that worker submission never contends with
	// priority-queue drain.
	pendingMu sync.Mutex
	pendingQ  []pending

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithObserver attaches an Observer for metrics collection.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithPriorityFunc overrides the PRNG-driven priority draw with fn. Used by
// tests that need deterministic, mocked priorities (spec's "priority-queue
// correctness" scenario); production callers should leave this unset.
func WithPriorityFunc(fn func() uint32) Option {
	return func(s *Scheduler) { s.priorityFn = fn }
}

// New constructs a Scheduler seeded from seed with the given epoch
// duration. Call Start to begin batching.
func New(epoch time.Duration, seed int64, opts ...Option) *Scheduler {
	s := &Scheduler{
		epoch:    epoch,
		observer: noopObserver{},
		waiters:  make(map[uint64]chan struct{}),
		rng:      rand.New(rand.NewSource(seed)),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background scheduler goroutine. Must be called exactly
// once before any Request call.
func (s *Scheduler) Start() {
	s.running.Store(true)
	go s.run()
}

// SetEpoch updates the COLLECTING window duration for future epochs. Safe
// to call concurrently with Start/Request; it never affects an in-flight
// DRAINING batch.
func (s *Scheduler) SetEpoch(d time.Duration) {
	s.mu.Lock()
	s.epoch = d
	s.mu.Unlock()
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	for {
		s.mu.Lock()
		epoch := s.epoch
		s.mu.Unlock()

		timer := time.NewTimer(epoch)
		select {
		case <-s.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		batch := s.drainPending()
		if len(batch) == 0 {
			continue
		}

		s.beginDraining(batch)
		s.observer.BatchDrained(len(batch))
		s.drainBatch()

		select {
		case <-s.stopCh:
			return
		default:
		}
	}
}

// drainPending atomically empties the submission FIFO into a local slice.
func (s *Scheduler) drainPending() []pending {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if len(s.pendingQ) == 0 {
		return nil
	}
	batch := s.pendingQ
	s.pendingQ = nil
	return batch
}

// beginDraining moves a drained batch into the priority queue and flips the
// epoch state to DRAINING. The state write is paired with the same mutex
// acquisition that guards the waiter map, so a DRAINING read of the map is
// never observed concurrently with a COLLECTING-phase insert race.
func (s *Scheduler) beginDraining(batch []pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Draining
	for _, p := range batch {
		s.seq++
		heap.Push(&s.pq, pqItem{priority: p.priority, seq: s.seq, libID: p.libID})
	}
}

// drainBatch pops the active batch in ascending-priority order, releasing
// one waiter per iteration, until the priority queue is empty, then returns
// to COLLECTING.
func (s *Scheduler) drainBatch() {
	for {
		s.mu.Lock()
		if s.pq.Len() == 0 {
			s.state = Collecting
			s.mu.Unlock()
			return
		}
		item := heap.Pop(&s.pq).(pqItem)
		ch, ok := s.waiters[item.libID]
		delete(s.waiters, item.libID)
		s.mu.Unlock()

		if ok {
			close(ch)
			s.observer.RequestReleased()
		}
	}
}

// Request parks the calling goroutine until the scheduler releases it. It
// is the only blocking entry point in the library. A zero libID is treated
// as a caller error by the facade layer and never reaches here.
//
// The waiter is registered in the waiter map before the (priority, libID)
// pair is pushed onto the pending FIFO, never the other way around. The
// scheduler goroutine can only pop a pending entry after it has been
// pushed, so registering the waiter first guarantees the map entry is
// already present by the time drainBatch could possibly look it up; doing
// it in the other order leaves a window where the scheduler drains and
// discards the entry, finds no waiter, and never wakes this call.
func (s *Scheduler) Request(libID uint64) {
	ch := make(chan struct{})

	s.mu.Lock()
	if !s.running.Load() {
		// Shutdown raced us: the force-release pass has already run (or
		// never needs to, since we never registered). Treat this request
		// as released rather than blocking forever.
		s.mu.Unlock()
		return
	}
	var priority uint32
	if s.priorityFn != nil {
		priority = s.priorityFn()
	} else {
		priority = uint32(s.rng.Intn(maxPriority + 1))
	}
	s.waiters[libID] = ch
	s.mu.Unlock()

	s.pendingMu.Lock()
	s.pendingQ = append(s.pendingQ, pending{priority: priority, libID: libID})
	s.pendingMu.Unlock()

	s.observer.RequestSubmitted()

	<-ch
}

// Shutdown stops the background goroutine, then force-releases every
// waiter still parked in the map. Idempotent: a second call is a no-op.
// After Shutdown returns, no goroutine remains blocked in Request.
func (s *Scheduler) Shutdown() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	close(s.stopCh)
	<-s.doneCh

	s.mu.Lock()
	n := len(s.waiters)
	for libID, ch := range s.waiters {
		close(ch)
		delete(s.waiters, libID)
	}
	s.mu.Unlock()

	if n > 0 {
		s.observer.ShutdownForceReleased(n)
	}
}

// State returns the current epoch state. Racy by nature (the state can
// change the instant after this returns); exposed for the debug HTTP
// endpoint and tests, not for scheduling decisions.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// QueueDepth reports the number of requests currently parked in Request,
// whether still sitting in the pending FIFO or already moved into the
// active DRAINING batch. Each parked worker has exactly one waiter-map
// entry regardless of which stage it is in.
// Used by the debug HTTP endpoint; not part of the spec's required surface.
func (s *Scheduler) QueueDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}
