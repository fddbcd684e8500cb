// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metrics exposes a prometheus-backed view of scheduler and
// registry activity: batches drained, requests released, and trace lines
// emitted by type. It is a pure addition, since nothing in the spec's
// Non-goals excludes observability, only "a general RPC or task scheduler".
package metrics

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// tableLabelBuckets bounds the cardinality of the "table" label: a
// long-running fuzzing session can touch an unbounded number of distinct
// table names, which would otherwise make the per-table series count
// unbounded too. The trace line itself always carries the full table name
// (spec's format is unchanged); only this label is bucketed.
const tableLabelBuckets = 64

// Collector implements scheduler.Observer and additionally exposes methods
// for registry/log events the scheduler itself doesn't see.
type Collector struct {
	registry *prometheus.Registry

	requestsSubmitted    prometheus.Counter
	batchesDrained       prometheus.Counter
	batchSize            prometheus.Histogram
	requestsReleased     prometheus.Counter
	shutdownForceRelease prometheus.Counter

	scheduledByIntent *prometheus.CounterVec
	txnBegins         prometheus.Counter
	txnPromotes       prometheus.Counter
	opsLogged         *prometheus.CounterVec
}

// New constructs a Collector with its own registry (mirroring the teacher's
// pattern of one registry per manager instance rather than relying on the
// global default registry, so multiple libisofuzz instances in one process
// never collide).
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := &Collector{
		registry: reg,
		requestsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "isofuzz",
			Name:      "requests_submitted_total",
			Help:      "Total schedule_op calls that parked a worker.",
		}),
		batchesDrained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "isofuzz",
			Name:      "epoch_batches_drained_total",
			Help:      "Total number of DRAINING batches processed.",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "isofuzz",
			Name:      "epoch_batch_size",
			Help:      "Number of requests released per DRAINING batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		requestsReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "isofuzz",
			Name:      "requests_released_total",
			Help:      "Total requests released by the scheduler (normal drain).",
		}),
		shutdownForceRelease: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "isofuzz",
			Name:      "shutdown_force_released_total",
			Help:      "Total waiters force-released by Shutdown.",
		}),
		scheduledByIntent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isofuzz",
			Name:      "scheduled_by_intent_total",
			Help:      "schedule_op calls by intent.",
		}, []string{"intent"}),
		txnBegins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "isofuzz",
			Name:      "trx_begins_total",
			Help:      "Total trx_begin calls.",
		}),
		txnPromotes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "isofuzz",
			Name:      "trx_promotes_total",
			Help:      "Total trx_promote calls.",
		}),
		opsLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isofuzz",
			Name:      "log_lines_total",
			Help:      "Trace lines written, by op_name and bucketed table label.",
		}, []string{"op", "table_bucket"}),
	}

	reg.MustRegister(
		c.requestsSubmitted,
		c.batchesDrained,
		c.batchSize,
		c.requestsReleased,
		c.shutdownForceRelease,
		c.scheduledByIntent,
		c.txnBegins,
		c.txnPromotes,
		c.opsLogged,
	)

	return c
}

// Registry returns the prometheus registry for wiring into an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// scheduler.Observer implementation.

func (c *Collector) RequestSubmitted()  { c.requestsSubmitted.Inc() }
func (c *Collector) RequestReleased()   { c.requestsReleased.Inc() }
func (c *Collector) BatchDrained(n int) { c.batchesDrained.Inc(); c.batchSize.Observe(float64(n)) }
func (c *Collector) ShutdownForceReleased(n int) {
	c.shutdownForceRelease.Add(float64(n))
}

// Registry/log-level events, reported directly by the isofuzz facade.

func (c *Collector) ObserveBegin() { c.txnBegins.Inc() }

func (c *Collector) ObservePromote() { c.txnPromotes.Inc() }

func (c *Collector) ObserveScheduled(intent string) {
	c.scheduledByIntent.WithLabelValues(intent).Inc()
}

func (c *Collector) ObserveLogged(opName, table string) {
	c.opsLogged.WithLabelValues(opName, bucketTable(table)).Inc()
}

func bucketTable(table string) string {
	if table == "" {
		return "none"
	}
	h := xxhash.Sum64String(table)
	return strconv.FormatUint(h%tableLabelBuckets, 10)
}
