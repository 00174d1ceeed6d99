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
)

/*
BlockFetcher is a stage that produces blocks of rows. A block may come
with DONE, in which case it holds the last rows of the stage. WAITING
never comes with a block.
*/
type BlockFetcher interface {
	FetchBlock(ctx *Context, atMost int) (ExecutionState, *ItemBlock, errors.Error)
}

/*
SingleRowFetcher hands out the rows of an upstream stage one at a
time. It holds at most one upstream block, and releases it once all of
its rows were handed out.
*/
type SingleRowFetcher struct {
	ctx           *Context
	upstream      BlockFetcher
	atMost        int
	clear         RegisterSet
	block         *ItemBlock
	next          int
	upstreamState ExecutionState
	done          bool
}

func NewSingleRowFetcher(ctx *Context, upstream BlockFetcher, atMost int,
	clear RegisterSet) *SingleRowFetcher {
	if atMost <= 0 {
		atMost = DEFAULT_BATCH_SIZE
	}
	return &SingleRowFetcher{
		ctx:           ctx,
		upstream:      upstream,
		atMost:        atMost,
		clear:         clear,
		upstreamState: HAS_MORE,
	}
}

/*
FetchRow returns the next upstream row. With the last row it returns
DONE; after that it returns DONE and no row forever. WAITING comes
without a row and the same call is to be repeated later. HAS_MORE may
come without a row when the upstream produced an empty block.
*/
func (this *SingleRowFetcher) FetchRow() (ExecutionState, InputRow, errors.Error) {
	if this.done || this.upstream == nil {
		this.done = true
		if this.block != nil {
			this.block.Destroy()
			this.block = nil
		}
		return DONE, InputRow{}, nil
	}

	if this.block == nil || this.next >= this.block.Size() {
		if this.block != nil {
			this.block.Destroy()
			this.block = nil
		}
		if this.upstreamState == DONE {
			this.done = true
			return DONE, InputRow{}, nil
		}

		state, block, err := this.upstream.FetchBlock(this.ctx, this.atMost)
		if err != nil {
			if block != nil {
				block.Destroy()
			}
			this.done = true
			return DONE, InputRow{}, err
		}
		if state == WAITING {
			if block != nil {
				block.Destroy()
				this.done = true
				return DONE, InputRow{}, errors.NewExecutionProtocolError("WAITING with a block")
			}
			return WAITING, InputRow{}, nil
		}
		this.upstreamState = state
		if block == nil || block.Size() == 0 {
			if block != nil {
				block.Destroy()
			}
			if state == DONE {
				this.done = true
				return DONE, InputRow{}, nil
			}
			return HAS_MORE, InputRow{}, nil
		}
		this.block = block
		this.next = 0
	} else if this.next > 0 {
		// the previous row is no longer referenced by the caller
		for _, r := range this.clear.ids {
			if r < this.block.NrRegs() {
				this.block.clearValue(this.next-1, r)
			}
		}
	}

	row := InputRow{block: this.block, index: this.next}
	this.next++
	if this.next >= this.block.Size() && this.upstreamState == DONE {
		this.done = true
		return DONE, row, nil
	}
	return HAS_MORE, row, nil
}

// Close releases the buffered block, and closes the upstream stage.
func (this *SingleRowFetcher) Close() {
	if this.block != nil {
		this.block.Destroy()
		this.block = nil
	}
	if this.upstream != nil {
		if c, ok := this.upstream.(interface{ Close() }); ok {
			c.Close()
		}
		this.upstream = nil
	}
}
