// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package scheduler

import "container/heap"

// pqItem is one batched request waiting in the active DRAINING batch:
// the (priority, lib_id) pair from the spec's data model, plus a
// monotonic sequence number that breaks ties in insertion order.
type pqItem struct {
	priority uint32
	seq      uint64
	libID    uint64
}

// priorityQueue orders pqItems by ascending priority, ties broken by
// ascending seq (FIFO of insertion). It implements container/heap.Interface;
// no third-party priority-queue library in the reference set improves on
// the standard one for this shape of problem.
type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(pqItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

var _ heap.Interface = (*priorityQueue)(nil)
