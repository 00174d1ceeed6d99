//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	atomic "github.com/couchbase/go-couchbase/platform"
	"github.com/google/uuid"

	"github.com/couchbaselabs/rowpipe/datastore"
	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/logging"
	"github.com/couchbaselabs/rowpipe/memory"
)

/*
Output receives the results of a pipeline. Rows are delivered in
production order and are only valid for the duration of the call.
Exactly one of Done, Fatal and Cancelled is called, once.
*/
type Output interface {
	Result(row InputRow) bool
	Done()
	Fatal(err errors.Error)
	Cancelled()
}

/*
Context is the per request state shared by the stages of a pipeline:
the transaction, the memory session, the factory for suspension
events and the event the pipeline is currently parked on.
*/
type Context struct {
	parent        context.Context
	cancelFunc    context.CancelFunc
	requestId     string
	trx           datastore.Transaction
	memorySession memory.MemorySession
	events        EventFactory
	output        Output

	mutex     sync.Mutex
	parked    Event
	awaited   Event
	outcome   Outcome
	cancelled int32
}

func NewContext(parent context.Context, trx datastore.Transaction, events EventFactory,
	session memory.MemorySession) *Context {
	if parent == nil {
		parent = context.Background()
	}
	if events == nil {
		events = SIMPLE_EVENTS
	}
	rv := &Context{
		requestId:     uuid.New().String(),
		trx:           trx,
		memorySession: session,
		events:        events,
	}
	rv.parent, rv.cancelFunc = context.WithCancel(parent)
	return rv
}

func (this *Context) RequestId() string {
	return this.requestId
}

func (this *Context) GoContext() context.Context {
	return this.parent
}

func (this *Context) Transaction() datastore.Transaction {
	return this.trx
}

func (this *Context) MemorySession() memory.MemorySession {
	return this.memorySession
}

func (this *Context) NewEvent() Event {
	return this.events.NewEvent()
}

func (this *Context) SetOutput(output Output) {
	this.output = output
}

// Park records the event the pipeline waits for before returning WAITING.
func (this *Context) Park(ev Event) {
	this.mutex.Lock()
	this.parked = ev
	this.awaited = ev
	this.mutex.Unlock()
}

func (this *Context) TakeParked() Event {
	this.mutex.Lock()
	ev := this.parked
	this.parked = nil
	this.mutex.Unlock()
	return ev
}

// Cancel is cooperative: stages observe it between production calls.
func (this *Context) Cancel() {
	atomic.StoreInt32(&this.cancelled, 1)
	this.cancelFunc()

	// wake up a parked pipeline so that it can wind down
	this.mutex.Lock()
	ev := this.awaited
	this.mutex.Unlock()
	if ev != nil {
		ev.Fire()
	}
}

func (this *Context) IsCancelled() bool {
	return atomic.LoadInt32(&this.cancelled) == 1 || this.parent.Err() != nil
}

// Fatal reports err to the output; only the first report counts.
func (this *Context) Fatal(err errors.Error) {
	if !this.report(FAILED) {
		return
	}
	logging.Debugp("pipeline failed", logging.Pair{Name: "request", Value: this.requestId},
		logging.Pair{Name: "error", Value: err})
	if this.output != nil {
		this.output.Fatal(err)
	}
}

func (this *Context) done() {
	if this.report(COMPLETED) && this.output != nil {
		this.output.Done()
	}
}

func (this *Context) notifyCancelled() {
	if this.report(CANCELLED) && this.output != nil {
		this.output.Cancelled()
	}
}

func (this *Context) report(outcome Outcome) bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	if this.outcome != RUNNING {
		return false
	}
	this.outcome = outcome
	return true
}

func (this *Context) Reported() bool {
	return this.Outcome() != RUNNING
}

func (this *Context) Outcome() Outcome {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.outcome
}

// Release gives the request's resources back once the pipeline retired.
func (this *Context) Release() {
	this.cancelFunc()
	if this.memorySession != nil {
		this.memorySession.Release()
		this.memorySession = nil
	}
}

/*
Recover turns a panic in a production call into a fatal error of this
request. It must be deferred directly.
*/
func (this *Context) Recover() {
	err := recover()
	if err != nil {
		buf := make([]byte, 1<<16)
		n := runtime.Stack(buf, false)
		s := string(buf[0:n])
		logging.Severep("", logging.Pair{Name: "panic", Value: err},
			logging.Pair{Name: "request", Value: this.requestId},
			logging.Pair{Name: "stack", Value: s})

		switch err := err.(type) {
		case error:
			this.Fatal(errors.NewExecutionPanicError(err, fmt.Sprintf("Panic: %v", err)))
		default:
			this.Fatal(errors.NewExecutionPanicError(nil, fmt.Sprintf("Panic: %v", err)))
		}
	}
}
