//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"

	"github.com/couchbaselabs/rowpipe/datastore"
	"github.com/couchbaselabs/rowpipe/datastore/memstore"
	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/execution"
	"github.com/couchbaselabs/rowpipe/settings"
	"github.com/couchbaselabs/rowpipe/value"
)

func newScheduler(t *testing.T, threads int, backend string) *Scheduler {
	t.Helper()
	config := settings.DefaultConfig()
	config.Threads = threads
	config.Backend = backend
	config.DrainTimeout = settings.Duration(time.Second)
	s, err := New(config)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	return s
}

func shutdown(t *testing.T, s *Scheduler, timeout time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("unexpected shutdown error %v", err)
	}
}

// countingTask returns HAS_MORE n times, then DONE
type countingTask struct {
	name    string
	n       int
	stepped int
	order   *recorder
}

func (this *countingTask) Step() execution.ExecutionState {
	this.stepped++
	if this.stepped > this.n {
		this.order.add(this.name)
		return execution.DONE
	}
	return execution.HAS_MORE
}

func (this *countingTask) Await(resume func()) bool { return false }
func (this *countingTask) Cancel()                  {}
func (this *countingTask) Fail(err errors.Error)    {}

type recorder struct {
	sync.Mutex
	names []string
}

func (this *recorder) add(name string) {
	this.Lock()
	this.names = append(this.names, name)
	this.Unlock()
}

func (this *recorder) get() []string {
	this.Lock()
	defer this.Unlock()
	return append([]string(nil), this.names...)
}

// waits on its own event until cancelled or fired
type waitingTask struct {
	sync.Mutex
	event     execution.Event
	cancelled bool
	failed    errors.Error
}

func (this *waitingTask) Step() execution.ExecutionState {
	this.Lock()
	defer this.Unlock()
	if this.cancelled || this.event.Fired() {
		return execution.DONE
	}
	return execution.WAITING
}

func (this *waitingTask) Await(resume func()) bool {
	this.event.Wait(resume)
	return true
}

func (this *waitingTask) Cancel() {
	this.Lock()
	this.cancelled = true
	this.Unlock()
}

func (this *waitingTask) Fail(err errors.Error) {
	this.Lock()
	this.failed = err
	this.Unlock()
}

type panickingTask struct {
	failed chan errors.Error
}

func (this *panickingTask) Step() execution.ExecutionState {
	panic("boom")
}

func (this *panickingTask) Await(resume func()) bool { return false }
func (this *panickingTask) Cancel()                  {}
func (this *panickingTask) Fail(err errors.Error)    { this.failed <- err }

type output struct {
	sync.Mutex
	rows      []string
	err       errors.Error
	cancelled bool
	done      chan bool
}

func newOutput() *output {
	return &output{done: make(chan bool, 1)}
}

func (this *output) Result(row execution.InputRow) bool {
	this.Lock()
	defer this.Unlock()
	b, _ := row.GetValue(row.NrRegs() - 1).MarshalJSON()
	this.rows = append(this.rows, string(b))
	return true
}

func (this *output) Done()                  { this.done <- true }
func (this *output) Fatal(err errors.Error) { this.err = err; this.done <- false }
func (this *output) Cancelled()             { this.cancelled = true; this.done <- false }

func (this *output) wait(t *testing.T) bool {
	t.Helper()
	select {
	case ok := <-this.done:
		return ok
	case <-time.After(10 * time.Second):
		t.Fatalf("pipeline did not finish")
	}
	return false
}

func TestUnknownBackend(t *testing.T) {
	config := settings.DefaultConfig()
	config.Backend = "kqueue"
	_, err := New(config)
	if err == nil || err.Code() != errors.E_SCHEDULER_UNKNOWN_BACKEND {
		t.Errorf("Expected an unknown backend error, got %v", err)
	}

	s := newScheduler(t, 1, AUTO_BACKEND)
	defer shutdown(t, s, time.Second)
	found := false
	for _, b := range Backends() {
		found = found || b == s.Backend()
	}
	if !found {
		t.Errorf("Backend %s not among %v", s.Backend(), Backends())
	}
}

func TestFairness(t *testing.T) {
	s := newScheduler(t, 1, GOROUTINE_BACKEND)
	s.config.MaxSteps = 1

	order := &recorder{}
	s.Schedule(&countingTask{name: "long", n: 100, order: order})
	s.Schedule(&countingTask{name: "short", n: 2, order: order})
	s.Start()
	shutdown(t, s, 10*time.Second)

	if diff := pretty.Compare(order.get(), []string{"short", "long"}); diff != "" {
		t.Errorf("Unexpected completion order:\n%s", diff)
	}
	stats := s.Stats()
	if stats.Completed != 2 || stats.Requeued < 100 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestPanicFailsOnlyItsTask(t *testing.T) {
	s := newScheduler(t, 2, GOROUTINE_BACKEND)
	s.Start()

	bad := &panickingTask{failed: make(chan errors.Error, 1)}
	order := &recorder{}
	s.Schedule(bad)
	s.Schedule(&countingTask{name: "good", n: 3, order: order})

	select {
	case err := <-bad.failed:
		if err.Code() != errors.E_EXECUTION_PANIC {
			t.Errorf("Expected a panic error, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("panicking task was not failed")
	}
	shutdown(t, s, 10*time.Second)

	if diff := pretty.Compare(order.get(), []string{"good"}); diff != "" {
		t.Errorf("Unexpected completions:\n%s", diff)
	}
	stats := s.Stats()
	if stats.Failed != 1 || stats.Completed != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestWaitingTaskResumes(t *testing.T) {
	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			s := newScheduler(t, 2, backend)
			s.Start()

			task := &waitingTask{event: s.Events().NewEvent()}
			s.Schedule(task)
			time.AfterFunc(20*time.Millisecond, task.event.Fire)
			shutdown(t, s, 10*time.Second)

			stats := s.Stats()
			if stats.Completed != 1 || stats.Waits < 1 {
				t.Errorf("Unexpected stats %+v", stats)
			}
		})
	}
}

func TestPipelinesOnScheduler(t *testing.T) {
	ks, err := memstore.NewKeyspace("docs", 2, "zstd")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ks.Close()

	pairs := make(datastore.Pairs, 0, 20)
	keys := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		k := fmt.Sprintf("k%02d", i)
		keys = append(keys, k)
		pairs = append(pairs, datastore.Pair{Key: k, Value: value.NewValue([]interface{}{i, i + 100})})
	}
	if _, err := ks.Upsert(pairs); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			s := newScheduler(t, 3, backend)
			s.Start()

			outputs := make([]*output, 4)
			for i := range outputs {
				trx := datastore.NewTransaction(ks, 4)
				defer trx.Release()

				ctx := execution.NewContext(context.Background(), trx, s.Events(), nil)
				src, err := execution.NewDocumentSource(keys, 0, 2)
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				infos, err := execution.NewEnumerateListExecutorInfos(0, 2, 2, 3, execution.NewRegisterSet(0), nil)
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				enum, err := execution.NewEnumerateListBlock(ctx, infos, src, 7)
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				outputs[i] = newOutput()
				if err := s.Schedule(execution.NewPipeline(ctx, enum, outputs[i], 5)); err != nil {
					t.Fatalf("unexpected error %v", err)
				}
			}

			for _, out := range outputs {
				if !out.wait(t) {
					t.Fatalf("pipeline failed: %v", out.err)
				}
				if len(out.rows) != 40 || out.rows[0] != "0" || out.rows[39] != "119" {
					t.Errorf("Unexpected rows %v", out.rows)
				}
			}
			shutdown(t, s, 10*time.Second)
			if stats := s.Stats(); stats.Completed != 4 {
				t.Errorf("Unexpected stats %+v", stats)
			}
		})
	}
}

func TestShutdownRefusesTasks(t *testing.T) {
	s := newScheduler(t, 1, GOROUTINE_BACKEND)
	s.Start()
	shutdown(t, s, time.Second)

	err := s.Schedule(&countingTask{order: &recorder{}})
	if err == nil || err.Code() != errors.E_SCHEDULER_SHUTDOWN {
		t.Errorf("Expected a shutdown error, got %v", err)
	}

	// idempotent
	shutdown(t, s, time.Second)
	select {
	case <-s.Done():
	default:
		t.Errorf("Done not closed after shutdown")
	}
}

func TestShutdownCancelsWaitingTasks(t *testing.T) {
	s := newScheduler(t, 1, GOROUTINE_BACKEND)
	s.Start()

	task := &waitingTask{event: execution.NewSimpleEvent()}
	s.Schedule(task)
	for s.Stats().Waits == 0 {
		time.Sleep(time.Millisecond)
	}

	shutdown(t, s, 10*time.Millisecond)
	stats := s.Stats()
	if stats.Cancelled != 1 || s.Pending() != 0 {
		t.Errorf("Unexpected stats %+v, pending %d", stats, s.Pending())
	}
	if task.failed != nil {
		t.Errorf("Cancelled task should not have failed: %v", task.failed)
	}
}

func TestShutdownCancelsPipelines(t *testing.T) {
	s := newScheduler(t, 1, GOROUTINE_BACKEND)
	s.Start()

	ctx := execution.NewContext(context.Background(), nil, s.Events(), nil)
	out := newOutput()
	s.Schedule(execution.NewPipeline(ctx, &stalledSource{}, out, 10))
	for s.Stats().Waits == 0 {
		time.Sleep(time.Millisecond)
	}

	shutdown(t, s, 10*time.Millisecond)
	if out.wait(t) || !out.cancelled {
		t.Errorf("Expected the pipeline to be cancelled")
	}
	if stats := s.Stats(); stats.Cancelled != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

// parks an event nobody fires
type stalledSource struct{}

func (this *stalledSource) FetchBlock(ctx *execution.Context, atMost int) (execution.ExecutionState, *execution.ItemBlock, errors.Error) {
	ctx.Park(ctx.NewEvent())
	return execution.WAITING, nil, nil
}

func TestDrainWaitsForTasks(t *testing.T) {
	s := newScheduler(t, 2, GOROUTINE_BACKEND)
	s.Start()

	task := &waitingTask{event: execution.NewSimpleEvent()}
	s.Schedule(task)
	time.AfterFunc(50*time.Millisecond, task.event.Fire)

	shutdown(t, s, 10*time.Second)
	stats := s.Stats()
	if stats.Completed != 1 || stats.Cancelled != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}
