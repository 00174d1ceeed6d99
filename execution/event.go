//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"sync"
)

/*
Event is the completion notifier a stage parks on before returning
WAITING. Whoever completes the awaited work fires it; the scheduler
registers the continuation that puts the pipeline back on its queue.
*/
type Event interface {
	// Fire marks the event ready; only the first call has an effect.
	Fire()

	// Wait registers resume to run once the event fired. If it has
	// fired already, resume runs right away.
	Wait(resume func())

	Fired() bool
}

type EventFactory interface {
	NewEvent() Event
}

type simpleEvent struct {
	sync.Mutex
	fired   bool
	waiters []func()
}

func NewSimpleEvent() Event {
	return &simpleEvent{}
}

func (this *simpleEvent) Fire() {
	this.Lock()
	if this.fired {
		this.Unlock()
		return
	}
	this.fired = true
	waiters := this.waiters
	this.waiters = nil
	this.Unlock()

	for _, w := range waiters {
		w()
	}
}

func (this *simpleEvent) Wait(resume func()) {
	this.Lock()
	if !this.fired {
		this.waiters = append(this.waiters, resume)
		this.Unlock()
		return
	}
	this.Unlock()
	resume()
}

func (this *simpleEvent) Fired() bool {
	this.Lock()
	defer this.Unlock()
	return this.fired
}

type simpleEvents struct{}

func (simpleEvents) NewEvent() Event {
	return NewSimpleEvent()
}

// Events that run continuations on the goroutine that fires them.
var SIMPLE_EVENTS EventFactory = simpleEvents{}
