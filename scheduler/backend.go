//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package scheduler

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/execution"
)

/*
Backend is the I/O multiplexer that delivers the completion of
suspension events. Events created by a backend run their waiters on
the backend's own goroutines.
*/
type Backend interface {
	execution.EventFactory
	Name() string
	Close() errors.Error
}

const (
	AUTO_BACKEND      = "auto"
	GOROUTINE_BACKEND = "goroutine"
)

type backendFactory func() (Backend, errors.Error)

var backendsMutex sync.RWMutex
var backends = map[string]backendFactory{
	GOROUTINE_BACKEND: newGoroutineBackend,
}

// most preferred first, for auto selection
var backendPreference []string

func registerBackend(name string, f backendFactory) {
	backendsMutex.Lock()
	backends[name] = f
	backendPreference = append(backendPreference, name)
	backendsMutex.Unlock()
}

// Backends lists the I/O backends available on this platform.
func Backends() []string {
	backendsMutex.RLock()
	defer backendsMutex.RUnlock()
	return knownBackends()
}

func NewBackend(name string) (Backend, errors.Error) {
	backendsMutex.RLock()
	defer backendsMutex.RUnlock()

	if name == "" || name == AUTO_BACKEND {
		for _, n := range backendPreference {
			if b, err := backends[n](); err == nil {
				return b, nil
			}
		}
		return newGoroutineBackend()
	}

	f, ok := backends[name]
	if !ok {
		return nil, errors.NewUnknownBackendError(name, knownBackends())
	}
	return f()
}

func knownBackends() []string {
	rv := maps.Keys(backends)
	slices.Sort(rv)
	return rv
}

// The goroutine backend runs waiters on the goroutine that fires.
type goroutineBackend struct{}

func newGoroutineBackend() (Backend, errors.Error) {
	return goroutineBackend{}, nil
}

func (goroutineBackend) Name() string {
	return GOROUTINE_BACKEND
}

func (goroutineBackend) NewEvent() execution.Event {
	return execution.NewSimpleEvent()
}

func (goroutineBackend) Close() errors.Error {
	return nil
}
