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
	"encoding/binary"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/execution"
	"github.com/couchbaselabs/rowpipe/logging"
)

const EPOLL_BACKEND = "epoll"

const _EPOLL_BATCH = 64

func init() {
	registerBackend(EPOLL_BACKEND, newEpollBackend)
}

/*
The epoll backend gives every event an eventfd registered one-shot
with a single epoll instance. Firing writes the eventfd, and the
poller goroutine runs the waiters once the kernel reports it ready.
*/
type epollBackend struct {
	epfd   int
	wakeFd int
	mutex  sync.Mutex
	events map[int32]*epollEvent
	closed bool
	once   sync.Once
	done   chan struct{}
}

func newEpollBackend() (Backend, errors.Error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.NewBackendError(EPOLL_BACKEND, err)
	}
	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, errors.NewBackendError(EPOLL_BACKEND, err)
	}
	err = unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd,
		&unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakeFd)})
	if err != nil {
		unix.Close(wakeFd)
		unix.Close(epfd)
		return nil, errors.NewBackendError(EPOLL_BACKEND, err)
	}

	rv := &epollBackend{
		epfd:   epfd,
		wakeFd: wakeFd,
		events: make(map[int32]*epollEvent),
		done:   make(chan struct{}),
	}
	go rv.poll()
	return rv, nil
}

func (this *epollBackend) Name() string {
	return EPOLL_BACKEND
}

// NewEvent falls back to a plain event when no descriptor can be had.
func (this *epollBackend) NewEvent() execution.Event {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.closed {
		return execution.NewSimpleEvent()
	}
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		logging.Warnp("eventfd unavailable", logging.Pair{Name: "error", Value: err})
		return execution.NewSimpleEvent()
	}
	err = unix.EpollCtl(this.epfd, unix.EPOLL_CTL_ADD, fd,
		&unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLONESHOT, Fd: int32(fd)})
	if err != nil {
		unix.Close(fd)
		logging.Warnp("epoll registration failed", logging.Pair{Name: "error", Value: err})
		return execution.NewSimpleEvent()
	}
	ev := &epollEvent{fd: fd, epfd: this.epfd}
	this.events[int32(fd)] = ev
	return ev
}

func (this *epollBackend) poll() {
	defer close(this.done)

	evs := make([]unix.EpollEvent, _EPOLL_BATCH)
	for {
		n, err := unix.EpollWait(this.epfd, evs, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			logging.Errorp("epoll wait failed", logging.Pair{Name: "error", Value: err})
			this.abandon()
			return
		}
		for i := 0; i < n; i++ {
			fd := evs[i].Fd
			if int(fd) == this.wakeFd {
				return
			}
			this.mutex.Lock()
			ev := this.events[fd]
			delete(this.events, fd)
			this.mutex.Unlock()
			if ev != nil {
				ev.dispatch()
			}
		}
	}
}

// events still registered become plain events
func (this *epollBackend) abandon() {
	this.mutex.Lock()
	this.closed = true
	events := this.events
	this.events = make(map[int32]*epollEvent)
	this.mutex.Unlock()

	for _, ev := range events {
		ev.detach()
	}
}

func (this *epollBackend) Close() errors.Error {
	var rv errors.Error
	this.once.Do(func() {
		this.mutex.Lock()
		this.closed = true
		this.mutex.Unlock()

		if err := notify(this.wakeFd); err != nil {
			rv = errors.NewBackendError(EPOLL_BACKEND, err)
		} else {
			<-this.done
		}
		this.abandon()
		unix.Close(this.wakeFd)
		unix.Close(this.epfd)
	})
	return rv
}

type epollEvent struct {
	sync.Mutex
	fd      int
	epfd    int
	fired   bool
	ready   bool
	waiters []func()
}

func (this *epollEvent) Fire() {
	this.Lock()
	if this.fired {
		this.Unlock()
		return
	}
	this.fired = true
	if this.fd >= 0 {
		err := notify(this.fd)
		if err == nil {
			this.Unlock()
			return
		}
		logging.Warnp("eventfd write failed", logging.Pair{Name: "error", Value: err})
		this.release()
	}
	waiters := this.setReady()
	this.Unlock()
	run(waiters)
}

func (this *epollEvent) Wait(resume func()) {
	this.Lock()
	if !this.ready {
		this.waiters = append(this.waiters, resume)
		this.Unlock()
		return
	}
	this.Unlock()
	resume()
}

func (this *epollEvent) Fired() bool {
	this.Lock()
	defer this.Unlock()
	return this.fired
}

func (this *epollEvent) dispatch() {
	this.Lock()
	if this.fd >= 0 {
		var b [8]byte
		unix.Read(this.fd, b[:])
	}
	this.release()
	waiters := this.setReady()
	this.Unlock()
	run(waiters)
}

func (this *epollEvent) detach() {
	this.Lock()
	this.release()
	var waiters []func()
	if this.fired {
		waiters = this.setReady()
	}
	this.Unlock()
	run(waiters)
}

func (this *epollEvent) release() {
	if this.fd < 0 {
		return
	}
	unix.EpollCtl(this.epfd, unix.EPOLL_CTL_DEL, this.fd, nil)
	unix.Close(this.fd)
	this.fd = -1
}

func (this *epollEvent) setReady() []func() {
	this.ready = true
	waiters := this.waiters
	this.waiters = nil
	return waiters
}

func run(waiters []func()) {
	for _, w := range waiters {
		w()
	}
}

func notify(fd int) error {
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], 1)
	_, err := unix.Write(fd, b[:])
	return err
}
