//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

//go:build linux

package scheduler

import (
	"testing"
	"time"

	"github.com/couchbaselabs/rowpipe/execution"
)

func newEpoll(t *testing.T) Backend {
	t.Helper()
	b, err := NewBackend(EPOLL_BACKEND)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	return b
}

func resumed(t *testing.T, ch chan bool) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("waiter did not run")
	}
}

func TestEpollEvent(t *testing.T) {
	b := newEpoll(t)
	defer b.Close()

	ev := b.NewEvent()
	ch := make(chan bool, 2)
	ev.Wait(func() { ch <- true })
	if ev.Fired() {
		t.Errorf("Event fired before Fire")
	}
	go ev.Fire()
	resumed(t, ch)

	// later waiters run right away, firing twice has no effect
	ev.Fire()
	ev.Wait(func() { ch <- true })
	resumed(t, ch)
	if len(ch) != 0 {
		t.Errorf("Waiter ran more than once")
	}
}

func TestEpollClose(t *testing.T) {
	b := newEpoll(t)

	pending := b.NewEvent()
	ch := make(chan bool, 1)
	pending.Wait(func() { ch <- true })

	if err := b.Close(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// detached events still deliver
	pending.Fire()
	resumed(t, ch)

	ev := b.NewEvent()
	ev.Fire()
	ev.Wait(func() { ch <- true })
	resumed(t, ch)
}

func TestAutoPrefersEpoll(t *testing.T) {
	b, err := NewBackend(AUTO_BACKEND)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer b.Close()
	if b.Name() != EPOLL_BACKEND {
		t.Errorf("Expected %s, got %s", EPOLL_BACKEND, b.Name())
	}
	if _, ok := b.NewEvent().(*epollEvent); !ok {
		t.Errorf("Expected an eventfd backed event")
	}
	var _ execution.EventFactory = b
}
