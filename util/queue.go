//  Copyright 2016-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package util

////////////////////////////////////////////////////////////
//
// Originally from https://gist.github.com/moraes/2141121
//
// with gratitude.
//
////////////////////////////////////////////////////////////

// Queue is a basic FIFO queue based on a circular list that resizes as needed.
// It is not safe for concurrent use.
type Queue[T any] struct {
	nodes []T
	head  int
	tail  int
	count int
}

func NewQueue[T any](size int) *Queue[T] {
	if size < 1 {
		size = 1
	}

	rv := &Queue[T]{
		nodes: make([]T, size),
	}

	return rv
}

// Add a node to the queue.
func (q *Queue[T]) Add(n T) {
	if q.head == q.tail && q.count > 0 {
		nodes := make([]T, 2*len(q.nodes))
		copy(nodes, q.nodes[q.head:])
		copy(nodes[len(q.nodes)-q.head:], q.nodes[:q.head])
		q.head = 0
		q.tail = len(q.nodes)
		q.nodes = nodes
	}

	q.nodes[q.tail] = n
	q.tail = (q.tail + 1) % len(q.nodes)
	q.count++
}

// Remove and return a node from the queue in FIFO order.
func (q *Queue[T]) Remove() (T, bool) {
	var zero T

	if q.count == 0 {
		return zero, false
	}

	node := q.nodes[q.head]
	q.nodes[q.head] = zero
	q.head = (q.head + 1) % len(q.nodes)
	q.count--
	return node, true
}

// Return the node at the head of the queue without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.count == 0 {
		var zero T
		return zero, false
	}

	return q.nodes[q.head], true
}

func (q *Queue[T]) Capacity() int {
	return len(q.nodes)
}

func (q *Queue[T]) Size() int {
	return q.count
}

// Drain removes every node, handing each to f in FIFO order.
func (q *Queue[T]) Drain(f func(T)) {
	for {
		n, ok := q.Remove()
		if !ok {
			break
		}
		if f != nil {
			f(n)
		}
	}
	q.head = 0
	q.tail = 0
}
