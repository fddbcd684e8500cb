// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBucketTableIsStableAndBounded(t *testing.T) {
	a := bucketTable("orders")
	b := bucketTable("orders")
	require.Equal(t, a, b)
	n, err := strconv.Atoi(a)
	require.NoError(t, err)
	require.Less(t, n, tableLabelBuckets)
	require.Equal(t, "none", bucketTable(""))
}

func TestObserveScheduledIncrementsCounter(t *testing.T) {
	c := New()
	c.ObserveScheduled("OP_READ")
	c.ObserveScheduled("OP_READ")
	c.ObserveScheduled("OP_WRITE")

	require.Equal(t, float64(2), testutil.ToFloat64(c.scheduledByIntent.WithLabelValues("OP_READ")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.scheduledByIntent.WithLabelValues("OP_WRITE")))
}

func TestSchedulerObserverMethods(t *testing.T) {
	c := New()
	c.RequestSubmitted()
	c.RequestReleased()
	c.BatchDrained(4)
	c.ShutdownForceReleased(3)

	require.Equal(t, float64(1), testutil.ToFloat64(c.requestsSubmitted))
	require.Equal(t, float64(1), testutil.ToFloat64(c.requestsReleased))
	require.Equal(t, float64(1), testutil.ToFloat64(c.batchesDrained))
	require.Equal(t, float64(3), testutil.ToFloat64(c.shutdownForceRelease))
}
