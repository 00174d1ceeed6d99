//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

import (
	"fmt"

	atomic "github.com/couchbase/go-couchbase/platform"

	"github.com/couchbaselabs/rowpipe/memory"
)

/*
ownedValue is a reference counted wrapper around memory that belongs
to exactly one pipeline. Rows that share it Track() it, and the last
Recycle() gives the memory back.
*/
type ownedValue struct {
	Value
	refCnt  int32
	size    uint64
	session memory.MemorySession
}

var liveAllocations atomic.AlignedInt64

/*
NewOwnedValue takes ownership of val, which must not be reachable
from anywhere else. The result starts with a reference count of one.
*/
func NewOwnedValue(val Value) Value {
	if o, ok := val.(*ownedValue); ok {
		return o
	}
	return newOwnedValue(val, nil, 0)
}

func newOwnedValue(val Value, session memory.MemorySession, size uint64) *ownedValue {
	atomic.AddInt64(&liveAllocations, 1)
	return &ownedValue{Value: val, refCnt: 1, session: session, size: size}
}

/*
LiveAllocations returns the number of owned values that have not been
released yet.
*/
func LiveAllocations() int64 {
	return atomic.LoadInt64(&liveAllocations)
}

func (this *ownedValue) Storage() Storage {
	return HEAP
}

func (this *ownedValue) Track() {
	atomic.AddInt32(&this.refCnt, 1)
}

func (this *ownedValue) Recycle() {
	refcnt := atomic.AddInt32(&this.refCnt, -1)
	if refcnt > 0 {
		return
	}
	if refcnt < 0 {
		panic(fmt.Sprintf("owned value released %d times too often", -refcnt))
	}

	val := this.Value
	this.Value = nil
	recycle(val)
	if this.session != nil {
		this.session.Untrack(this.size)
		this.session = nil
	}
	atomic.AddInt64(&liveAllocations, -1)
}

// Copies are not owned until wrapped again.
func (this *ownedValue) Copy() Value {
	return this.Value.Copy()
}

func (this *ownedValue) Equals(other Value) bool {
	if o, ok := other.(*ownedValue); ok {
		other = o.Value
	}
	return this.Value.Equals(other)
}
