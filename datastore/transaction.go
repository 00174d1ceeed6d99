//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package datastore

import (
	"sync"

	"github.com/google/uuid"

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/logging"
	"github.com/couchbaselabs/rowpipe/value"
)

const _DEFAULT_LOOKUPS = 16

type transaction struct {
	sync.Mutex
	id       string
	keyspace Keyspace
	reads    map[string]value.Value
	lookups  chan struct{}
	wg       sync.WaitGroup
	released bool
}

/*
NewTransaction starts a read transaction on keyspace. At most
maxLookups asynchronous lookups run at the same time.
*/
func NewTransaction(keyspace Keyspace, maxLookups int) Transaction {
	if maxLookups <= 0 {
		maxLookups = _DEFAULT_LOOKUPS
	}
	return &transaction{
		id:       uuid.New().String(),
		keyspace: keyspace,
		reads:    make(map[string]value.Value),
		lookups:  make(chan struct{}, maxLookups),
	}
}

func (this *transaction) Id() string {
	return this.id
}

func (this *transaction) Lookup(key string) (value.Value, errors.Error) {
	this.Lock()
	if this.released {
		this.Unlock()
		return nil, errors.NewDatastoreClosedError(this.keyspace.Name())
	}
	v, ok := this.reads[key]
	this.Unlock()
	if ok {
		return v, nil
	}

	v, err := this.keyspace.FetchOne(key)
	if err != nil {
		return nil, err
	}

	this.Lock()
	defer this.Unlock()

	if this.released {
		return nil, errors.NewDatastoreClosedError(this.keyspace.Name())
	}

	// a concurrent lookup of the same key may have won
	if prev, ok := this.reads[key]; ok {
		return prev, nil
	}
	this.reads[key] = v
	return v, nil
}

func (this *transaction) LookupAsync(key string, done func(value.Value, errors.Error)) {
	this.Lock()
	v, ok := this.reads[key]
	released := this.released
	if !ok && !released {
		this.wg.Add(1)
	}
	this.Unlock()

	if released {
		done(nil, errors.NewDatastoreClosedError(this.keyspace.Name()))
		return
	}
	if ok {
		done(v, nil)
		return
	}

	go func() {
		defer this.wg.Done()
		this.lookups <- struct{}{}
		v, err := this.Lookup(key)
		<-this.lookups
		done(v, err)
	}()
}

// Release waits for the lookups in flight and forgets the documents read.
func (this *transaction) Release() {
	this.Lock()
	if this.released {
		this.Unlock()
		return
	}
	this.released = true
	this.Unlock()

	this.wg.Wait()

	this.Lock()
	n := len(this.reads)
	this.reads = nil
	this.Unlock()
	logging.Debugp("transaction released", logging.Pair{Name: "id", Value: this.id}, logging.Pair{Name: "reads", Value: n})
}
