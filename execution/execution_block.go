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
)

const DEFAULT_BATCH_SIZE = 1000

/*
ExecutionBlock drives an executor and packs the rows it produces into
blocks. It is itself a BlockFetcher, so blocks chain into pipelines.
*/
type ExecutionBlock struct {
	infos    *ExecutorInfos
	fetcher  *SingleRowFetcher
	executor Executor
	done     bool
}

func NewExecutionBlock(ctx *Context, infos *ExecutorInfos, upstream BlockFetcher,
	atMost int, newExecutor ExecutorFactory) (*ExecutionBlock, errors.Error) {
	fetcher := NewSingleRowFetcher(ctx, upstream, atMost, infos.RegistersToClear())
	executor, err := newExecutor(ctx, fetcher)
	if err != nil {
		return nil, err
	}
	return &ExecutionBlock{
		infos:    infos,
		fetcher:  fetcher,
		executor: executor,
	}, nil
}

func NewEnumerateListBlock(ctx *Context, infos *EnumerateListExecutorInfos,
	upstream BlockFetcher, atMost int) (*ExecutionBlock, errors.Error) {
	return NewExecutionBlock(ctx, infos.ExecutorInfos, upstream, atMost, EnumerateListFactory(infos))
}

func NewFilterBlock(ctx *Context, infos *FilterExecutorInfos,
	upstream BlockFetcher, atMost int) (*ExecutionBlock, errors.Error) {
	return NewExecutionBlock(ctx, infos.ExecutorInfos, upstream, atMost, FilterFactory(infos))
}

/*
FetchBlock produces up to atMost rows. When the executor has to wait
after some rows were produced, those rows are returned with HAS_MORE
and the wait is reported on the next call. Cancellation is checked
between production calls and ends the block with DONE.
*/
func (this *ExecutionBlock) FetchBlock(ctx *Context, atMost int) (ExecutionState, *ItemBlock, errors.Error) {
	if this.done {
		return DONE, nil, nil
	}
	if atMost <= 0 {
		atMost = DEFAULT_BATCH_SIZE
	}

	output := NewOutputRow(NewItemBlock(atMost, this.infos.NumberOfOutputRegisters()), this.infos)
	state := HAS_MORE
	for !output.IsFull() {
		if ctx.IsCancelled() {
			output.StealBlock().Destroy()
			this.close()
			return DONE, nil, nil
		}

		var err errors.Error
		state, err = this.executor.ProduceRow(output)
		if err != nil {
			output.StealBlock().Destroy()
			this.close()
			return DONE, nil, err
		}

		produced := output.Produced()
		if produced {
			if err = output.AdvanceRow(); err != nil {
				output.StealBlock().Destroy()
				this.close()
				return DONE, nil, err
			}
		} else if output.NumWrittenInRow() > 0 {
			output.StealBlock().Destroy()
			this.close()
			return DONE, nil, errors.NewExecutionProtocolError(
				"executor returned " + state.String() + " with an incomplete row")
		}

		if state != HAS_MORE || !produced {
			break
		}
	}

	block := output.StealBlock()
	switch state {
	case DONE:
		this.close()
	case WAITING:
		if block != nil {
			state = HAS_MORE
		}
	}
	logging.Tracep("execution block", logging.Pair{Name: "state", Value: state}, logging.Pair{Name: "rows", Value: blockSize(block)})
	return state, block, nil
}

// Close releases the rows held by this block and its upstream stages.
func (this *ExecutionBlock) Close() {
	this.close()
}

func (this *ExecutionBlock) close() {
	this.done = true
	this.fetcher.Close()
}

func blockSize(block *ItemBlock) int {
	if block == nil {
		return 0
	}
	return block.Size()
}
