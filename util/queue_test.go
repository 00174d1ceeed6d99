//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package util

import (
	"testing"
)

func TestQueueOrder(t *testing.T) {
	q := NewQueue[int](2)

	// interleave to force wrap-around before growing
	q.Add(1)
	q.Add(2)
	if v, _ := q.Remove(); v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
	for i := 3; i <= 10; i++ {
		q.Add(i)
	}
	if q.Size() != 9 {
		t.Errorf("expected 9 elements, got %v", q.Size())
	}
	if q.Capacity() < 9 {
		t.Errorf("capacity %v smaller than size", q.Capacity())
	}
	for i := 2; i <= 10; i++ {
		v, ok := q.Remove()
		if !ok || v != i {
			t.Errorf("expected %v, got %v (%v)", i, v, ok)
		}
	}
	if _, ok := q.Remove(); ok {
		t.Errorf("remove from empty queue succeeded")
	}
}

func TestQueueDrain(t *testing.T) {
	q := NewQueue[string](0)
	q.Add("a")
	q.Add("b")
	if v, ok := q.Peek(); !ok || v != "a" {
		t.Errorf("unexpected peek %v %v", v, ok)
	}

	var got []string
	q.Drain(func(s string) { got = append(got, s) })
	if len(got) != 2 || got[0] != "a" || got[1] != "b" || q.Size() != 0 {
		t.Errorf("unexpected drain %v, size %v", got, q.Size())
	}
	q.Add("c")
	if v, _ := q.Remove(); v != "c" {
		t.Errorf("queue unusable after drain, got %v", v)
	}
}
