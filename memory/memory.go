//  Copyright 2022-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package memory accounts for the owned values materialised by running
pipelines. Each pipeline registers a session; sessions reserve memory
from the node-wide quota in token sized chunks.
*/
package memory

import (
	atomic "github.com/couchbase/go-couchbase/platform"

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/logging"
)

type MemorySession interface {
	Track(s uint64) (uint64, errors.Error)
	Untrack(s uint64)
	Allocated() uint64
	InUseMemory() uint64
	Release()
}

type memoryManager struct {
	max  atomic.AlignedInt64
	curr atomic.AlignedInt64
}

type memorySession struct {
	inUseMemory  atomic.AlignedInt64
	currentLimit atomic.AlignedInt64
	manager      *memoryManager
}

const _MB = 1024 * 1024
const _MEMORY_TOKEN = int64(1 * _MB)

var manager memoryManager

// Config sets the node-wide quota, in MB. Zero disables the limit.
func Config(maxMB uint64) {
	atomic.StoreInt64(&manager.max, int64(maxMB)*_MB)
	logging.Infop("memory quota set", logging.Pair{Name: "quota_mb", Value: maxMB})
}

func Quota() uint64 {
	return uint64(atomic.LoadInt64(&manager.max) / _MB)
}

func AllocatedMemory() uint64 {
	return uint64(atomic.LoadInt64(&manager.curr))
}

func Register() MemorySession {
	rv := &memorySession{manager: &manager}
	atomic.StoreInt64(&rv.currentLimit, _MEMORY_TOKEN)
	atomic.AddInt64(&manager.curr, _MEMORY_TOKEN)
	return rv
}

// Track charges size bytes to the session and returns the memory now in use.
// When the node quota would be exceeded nothing is charged.
func (this *memorySession) Track(size uint64) (uint64, errors.Error) {
	top := atomic.AddInt64(&this.inUseMemory, int64(size))
	currentLimit := atomic.LoadInt64(&this.currentLimit)
	max := atomic.LoadInt64(&this.manager.max)

	// only amend the current memory limit if the manager has a limit
	if max > 0 && top > currentLimit {
		newSize := top - currentLimit
		if newSize < _MEMORY_TOKEN {
			newSize = _MEMORY_TOKEN
		}
		newCurr := atomic.AddInt64(&this.manager.curr, newSize)
		if newCurr > max {
			atomic.AddInt64(&this.manager.curr, -newSize)
			top = atomic.AddInt64(&this.inUseMemory, -int64(size))
			return uint64(top), errors.NewMemoryQuotaExceededError()
		}
		atomic.AddInt64(&this.currentLimit, newSize)
	}
	return uint64(top), nil
}

func (this *memorySession) Untrack(size uint64) {
	atomic.AddInt64(&this.inUseMemory, -int64(size))
}

func (this *memorySession) Allocated() uint64 {
	return uint64(atomic.LoadInt64(&this.currentLimit))
}

func (this *memorySession) InUseMemory() uint64 {
	return uint64(atomic.LoadInt64(&this.inUseMemory))
}

// Release returns the session's reservation to the node quota.
// A session is released once, when its pipeline retires.
func (this *memorySession) Release() {
	size := atomic.LoadInt64(&this.currentLimit)
	if size > 0 {
		atomic.StoreInt64(&this.currentLimit, 0)
		atomic.AddInt64(&this.manager.curr, -size)
	}
}
