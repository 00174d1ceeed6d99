//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package scheduler runs pipelines on a fixed pool of worker goroutines.
A worker steps a task until it waits, finishes or uses up its time
slice; waiting tasks hold no worker and come back on the queue when
the event they parked on fires.
*/
package scheduler

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	atomic "github.com/couchbase/go-couchbase/platform"

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/execution"
	"github.com/couchbaselabs/rowpipe/logging"
	"github.com/couchbaselabs/rowpipe/settings"
	"github.com/couchbaselabs/rowpipe/util"
)

type Stats struct {
	Scheduled int64 `json:"scheduled"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Cancelled int64 `json:"cancelled"`
	Requeued  int64 `json:"requeued"`
	Waits     int64 `json:"waits"`
}

type counters struct {
	scheduled atomic.AlignedInt64
	completed atomic.AlignedInt64
	failed    atomic.AlignedInt64
	cancelled atomic.AlignedInt64
	requeued  atomic.AlignedInt64
	waits     atomic.AlignedInt64
}

type entry struct {
	task      Task
	resume    func()
	panicked  bool
	cancelled bool
}

type Scheduler struct {
	config  settings.Config
	backend Backend

	mutex    sync.Mutex
	cond     *sync.Cond
	queue    *util.Queue[*entry]
	live     map[*entry]bool
	draining bool
	stopped  bool
	idle     chan struct{}
	done     chan struct{}
	signals  chan os.Signal

	start    sync.Once
	shutdown sync.Once
	workers  sync.WaitGroup
	stats    counters
}

func New(config settings.Config) (*Scheduler, errors.Error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	backend, err := NewBackend(config.Backend)
	if err != nil {
		return nil, err
	}

	rv := &Scheduler{
		config:  config,
		backend: backend,
		queue:   util.NewQueue[*entry](config.QueueSize),
		live:    make(map[*entry]bool),
		idle:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	rv.cond = sync.NewCond(&rv.mutex)
	return rv, nil
}

func (this *Scheduler) Backend() string {
	return this.backend.Name()
}

// Events is the factory pipelines use to create their suspension events.
func (this *Scheduler) Events() execution.EventFactory {
	return this.backend
}

func (this *Scheduler) Threads() int {
	return this.config.Threads
}

// Start spawns the workers. Tasks scheduled before Start wait for it.
func (this *Scheduler) Start() {
	this.start.Do(func() {
		// a fixed pool: a goroutine per task would be unbounded
		for i := 0; i < this.config.Threads; i++ {
			this.workers.Add(1)
			go this.doServe()
		}
		logging.Infop("scheduler started",
			logging.Pair{Name: "threads", Value: this.config.Threads},
			logging.Pair{Name: "backend", Value: this.backend.Name()})
	})
}

func (this *Scheduler) Schedule(task Task) errors.Error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.draining {
		return errors.NewSchedulerShutdownError()
	}
	e := &entry{task: task}
	this.live[e] = true
	this.queue.Add(e)
	atomic.AddInt64(&this.stats.scheduled, 1)
	this.cond.Signal()
	return nil
}

func (this *Scheduler) doServe() {
	defer this.workers.Done()
	for {
		e := this.next()
		if e == nil {
			return
		}
		this.serviceTask(e)
	}
}

func (this *Scheduler) next() *entry {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	for !this.stopped && this.queue.Size() == 0 {
		this.cond.Wait()
	}
	if this.stopped {
		return nil
	}
	e, _ := this.queue.Remove()
	return e
}

func (this *Scheduler) serviceTask(e *entry) {
	deadline := time.Now().Add(time.Duration(this.config.TimeSlice))
	for steps := 1; ; steps++ {
		state := this.step(e)
		if e.panicked {
			this.retire(e)
			return
		}

		switch state {
		case execution.DONE:
			this.retire(e)
			return
		case execution.WAITING:
			this.wait(e)
			return
		}

		if steps >= this.config.MaxSteps || !time.Now().Before(deadline) {
			atomic.AddInt64(&this.stats.requeued, 1)
			this.enqueue(e)
			return
		}
	}
}

// a panic only fails the task that raised it
func (this *Scheduler) step(e *entry) (state execution.ExecutionState) {
	defer func() {
		r := recover()
		if r != nil {
			buf := make([]byte, 1<<16)
			n := runtime.Stack(buf, false)
			logging.Severep("", logging.Pair{Name: "panic", Value: r},
				logging.Pair{Name: "stack", Value: string(buf[:n])})

			e.panicked = true
			state = execution.DONE
			err, _ := r.(error)
			e.task.Fail(errors.NewExecutionPanicError(err, fmt.Sprintf("Panic: %v", r)))
		}
	}()
	return e.task.Step()
}

func (this *Scheduler) wait(e *entry) {
	atomic.AddInt64(&this.stats.waits, 1)

	var once sync.Once
	resume := func() {
		once.Do(func() { this.enqueue(e) })
	}

	this.mutex.Lock()
	e.resume = resume
	this.mutex.Unlock()

	// nothing parked: try again after the others had their turn
	if !e.task.Await(resume) {
		resume()
	}
}

func (this *Scheduler) enqueue(e *entry) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	e.resume = nil
	if this.stopped || !this.live[e] {
		return
	}
	this.queue.Add(e)
	this.cond.Signal()
}

func (this *Scheduler) retire(e *entry) {
	this.mutex.Lock()
	if !this.live[e] {
		this.mutex.Unlock()
		return
	}
	delete(this.live, e)
	if this.draining && len(this.live) == 0 {
		close(this.idle)
	}
	cancelled := e.cancelled
	this.mutex.Unlock()

	outcome := execution.COMPLETED
	if t, ok := e.task.(outcomeTask); ok {
		outcome = t.Outcome()
	} else if e.panicked {
		outcome = execution.FAILED
	} else if cancelled {
		outcome = execution.CANCELLED
	}

	switch outcome {
	case execution.FAILED:
		atomic.AddInt64(&this.stats.failed, 1)
	case execution.CANCELLED:
		atomic.AddInt64(&this.stats.cancelled, 1)
	default:
		atomic.AddInt64(&this.stats.completed, 1)
	}
}

/*
Shutdown stops accepting tasks and lets the live ones finish until ctx
expires. The remaining tasks are then cancelled and given the drain
timeout to wind down; whatever is left after that fails. Later calls
wait for the first one to complete.
*/
func (this *Scheduler) Shutdown(ctx context.Context) errors.Error {
	var rv errors.Error
	this.shutdown.Do(func() {
		rv = this.doShutdown(ctx)
		close(this.done)
	})
	<-this.done
	return rv
}

func (this *Scheduler) doShutdown(ctx context.Context) errors.Error {
	if ctx == nil {
		ctx = context.Background()
	}

	this.mutex.Lock()
	this.draining = true
	if len(this.live) == 0 {
		close(this.idle)
	}
	pending := len(this.live)
	signals := this.signals
	this.mutex.Unlock()

	if signals != nil {
		signal.Stop(signals)
	}
	logging.Infop("scheduler shutting down", logging.Pair{Name: "pending", Value: pending})

	select {
	case <-this.idle:
	case <-ctx.Done():
		this.cancelLive()
		timer := time.NewTimer(time.Duration(this.config.DrainTimeout))
		select {
		case <-this.idle:
		case <-timer.C:
			logging.Warnp("scheduler abandoning tasks after cancellation")
		}
		timer.Stop()
	}

	this.mutex.Lock()
	this.stopped = true
	this.cond.Broadcast()
	this.mutex.Unlock()
	this.workers.Wait()

	// no worker is left, fail whatever did not wind down
	this.mutex.Lock()
	this.queue.Drain(nil)
	left := make([]*entry, 0, len(this.live))
	for e := range this.live {
		left = append(left, e)
	}
	this.mutex.Unlock()
	for _, e := range left {
		e.task.Fail(errors.NewSchedulerShutdownError())
		this.retire(e)
	}

	err := this.backend.Close()
	logging.Infop("scheduler stopped", logging.Pair{Name: "abandoned", Value: len(left)})
	return err
}

func (this *Scheduler) cancelLive() {
	this.mutex.Lock()
	entries := make([]*entry, 0, len(this.live))
	resumes := make([]func(), 0, len(this.live))
	for e := range this.live {
		e.cancelled = true
		entries = append(entries, e)
		if e.resume != nil {
			resumes = append(resumes, e.resume)
		}
	}
	this.mutex.Unlock()

	logging.Infop("scheduler cancelling tasks", logging.Pair{Name: "count", Value: len(entries)})
	for _, e := range entries {
		e.task.Cancel()
	}

	// waiting tasks must get a step to notice
	for _, r := range resumes {
		r()
	}
}

// Done is closed once Shutdown completed.
func (this *Scheduler) Done() <-chan struct{} {
	return this.done
}

/*
HandleSignals shuts the scheduler down on the first of sigs, SIGINT
and SIGTERM by default. Only the first registration has an effect.
*/
func (this *Scheduler) HandleSignals(sigs ...os.Signal) {
	this.mutex.Lock()
	if this.signals != nil || this.draining {
		this.mutex.Unlock()
		return
	}
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ch := make(chan os.Signal, 1)
	this.signals = ch
	this.mutex.Unlock()

	signal.Notify(ch, sigs...)
	go func() {
		select {
		case s := <-ch:
			logging.Infop("signal received", logging.Pair{Name: "signal", Value: s.String()})
			ctx, cancel := context.WithTimeout(context.Background(),
				time.Duration(this.config.DrainTimeout))
			defer cancel()
			this.Shutdown(ctx)
		case <-this.done:
		}
	}()
}

func (this *Scheduler) Stats() Stats {
	return Stats{
		Scheduled: atomic.LoadInt64(&this.stats.scheduled),
		Completed: atomic.LoadInt64(&this.stats.completed),
		Failed:    atomic.LoadInt64(&this.stats.failed),
		Cancelled: atomic.LoadInt64(&this.stats.cancelled),
		Requeued:  atomic.LoadInt64(&this.stats.requeued),
		Waits:     atomic.LoadInt64(&this.stats.waits),
	}
}

// Pending is the number of tasks scheduled and not yet retired.
func (this *Scheduler) Pending() int {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return len(this.live)
}
