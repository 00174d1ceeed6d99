//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/logging"
	"github.com/couchbaselabs/rowpipe/value"
)

/*
EnumerateListExecutor emits one row per element of the array held in
its input register, in array order. The element goes to the output
register and the registers to keep are copied through.
*/
type EnumerateListExecutor struct {
	ctx        *Context
	infos      *EnumerateListExecutorInfos
	fetcher    *SingleRowFetcher
	currentRow InputRow
	rowState   ExecutionState
	position   int
	done       bool
}

func NewEnumerateListExecutor(ctx *Context, infos *EnumerateListExecutorInfos,
	fetcher *SingleRowFetcher) *EnumerateListExecutor {
	return &EnumerateListExecutor{
		ctx:     ctx,
		infos:   infos,
		fetcher: fetcher,
	}
}

func EnumerateListFactory(infos *EnumerateListExecutorInfos) ExecutorFactory {
	return func(ctx *Context, fetcher *SingleRowFetcher) (Executor, errors.Error) {
		return NewEnumerateListExecutor(ctx, infos, fetcher), nil
	}
}

func (this *EnumerateListExecutor) ProduceRow(output *OutputRow) (ExecutionState, errors.Error) {
	if this.done {
		return DONE, nil
	}

	for {
		if !this.currentRow.IsInitialized() {
			state, row, err := this.fetcher.FetchRow()
			if err != nil {
				return this.fail(err)
			}
			if state == WAITING {
				return WAITING, nil
			}
			if !row.IsInitialized() {
				if state == DONE {
					this.done = true
					return DONE, nil
				}
				return HAS_MORE, nil
			}
			this.currentRow = row
			this.rowState = state
			this.position = 0
		}

		list := this.currentRow.GetValue(this.infos.InputRegister())
		if list.Type() != value.ARRAY {
			logging.Debugp("enumerate list: not an array", logging.Pair{Name: "request", Value: this.ctx.RequestId()},
				logging.Pair{Name: "type", Value: list.Type()})
			return this.fail(errors.NewArrayExpectedError(list.Type().String()))
		}

		if this.position >= list.Len() {
			// empty array, nothing to emit for this row
			if this.dropRow() {
				return DONE, nil
			}
			continue
		}

		h, err := value.ExtractElementTracked(list, this.position, this.ctx.MemorySession())
		if err != nil {
			return this.fail(err)
		}
		if err = output.SetValue(this.infos.OutputRegister(), this.currentRow, h); err != nil {
			return this.fail(err)
		}

		this.position++
		if this.position >= list.Len() && this.dropRow() {
			return DONE, nil
		}
		return HAS_MORE, nil
	}
}

// dropRow forgets the current input row and reports whether it was the
// last one.
func (this *EnumerateListExecutor) dropRow() bool {
	last := this.rowState == DONE
	this.currentRow = InputRow{}
	this.position = 0
	if last {
		this.done = true
	}
	return last
}

func (this *EnumerateListExecutor) fail(err errors.Error) (ExecutionState, errors.Error) {
	this.done = true
	this.currentRow = InputRow{}
	return DONE, err
}
