//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"fmt"
	"sync"

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/logging"
	"github.com/couchbaselabs/rowpipe/value"
)

/*
DocumentSource is a leaf stage emitting one row per existing document
key, with the document in the given register. Documents are fetched
through the request's transaction asynchronously: while a batch is in
flight the source parks an event on the context and returns WAITING.
Keys that do not exist produce no row.
*/
type DocumentSource struct {
	keys   []string
	reg    RegisterId
	nrRegs RegisterId

	mutex   sync.Mutex
	next    int
	pending int
	event   Event
	results []value.Value
	err     errors.Error
	done    bool
}

func NewDocumentSource(keys []string, reg, nrRegs RegisterId) (*DocumentSource, errors.Error) {
	if reg >= nrRegs {
		return nil, errors.NewRegisterLayoutError(
			fmt.Sprintf("document register %d out of range (%d registers)", reg, nrRegs))
	}
	return &DocumentSource{keys: keys, reg: reg, nrRegs: nrRegs}, nil
}

func (this *DocumentSource) FetchBlock(ctx *Context, atMost int) (ExecutionState, *ItemBlock, errors.Error) {
	this.mutex.Lock()
	if this.done {
		this.mutex.Unlock()
		return DONE, nil, nil
	}
	if this.err != nil {
		err := this.err
		this.done = true
		this.mutex.Unlock()
		return DONE, nil, err
	}
	if ctx.IsCancelled() {
		this.done = true
		this.mutex.Unlock()
		return DONE, nil, nil
	}

	// still in flight, possibly a spurious wake up
	if this.pending > 0 {
		ev := this.event
		this.mutex.Unlock()
		ctx.Park(ev)
		return WAITING, nil, nil
	}

	if this.results != nil {
		results := this.results
		this.results = nil
		last := this.next >= len(this.keys)
		if last {
			this.done = true
		}
		this.mutex.Unlock()

		block := this.makeBlock(results)
		if last {
			return DONE, block, nil
		}
		return HAS_MORE, block, nil
	}

	if this.next >= len(this.keys) {
		this.done = true
		this.mutex.Unlock()
		return DONE, nil, nil
	}

	trx := ctx.Transaction()
	if trx == nil {
		this.done = true
		this.mutex.Unlock()
		return DONE, nil, errors.NewExecutionParameterError("document source without a transaction")
	}

	if atMost <= 0 {
		atMost = DEFAULT_BATCH_SIZE
	}
	end := this.next + atMost
	if end > len(this.keys) {
		end = len(this.keys)
	}
	batch := this.keys[this.next:end]
	this.next = end
	this.pending = len(batch)
	this.results = make([]value.Value, len(batch))
	ev := ctx.NewEvent()
	this.event = ev
	this.mutex.Unlock()

	// park first: lookups may complete before LookupAsync returns
	ctx.Park(ev)
	logging.Debugp("document source: lookup", logging.Pair{Name: "request", Value: ctx.RequestId()},
		logging.Pair{Name: "keys", Value: len(batch)})
	for i, key := range batch {
		i := i
		trx.LookupAsync(key, func(val value.Value, err errors.Error) {
			this.complete(i, val, err)
		})
	}
	return WAITING, nil, nil
}

func (this *DocumentSource) complete(i int, val value.Value, err errors.Error) {
	this.mutex.Lock()
	if err != nil {
		if err.Code() != errors.E_DATASTORE_KEY_NOT_FOUND && this.err == nil {
			this.err = err
		}
	} else {
		this.results[i] = val
	}
	this.pending--
	fire := this.pending == 0
	ev := this.event
	this.mutex.Unlock()

	if fire {
		ev.Fire()
	}
}

func (this *DocumentSource) makeBlock(results []value.Value) *ItemBlock {
	n := 0
	for _, v := range results {
		if v != nil {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	block := NewItemBlock(n, this.nrRegs)
	row := 0
	for _, v := range results {
		if v != nil {
			block.setValue(row, this.reg, value.Borrowed(v))
			row++
		}
	}
	return block
}
