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

/*
Pipeline is the resumable unit of work the scheduler drives: the root
stage of a request together with its context. Only one goroutine runs
a given pipeline at a time.
*/
type Pipeline struct {
	ctx      *Context
	root     BlockFetcher
	atMost   int
	finished bool
}

func NewPipeline(ctx *Context, root BlockFetcher, output Output, atMost int) *Pipeline {
	if atMost <= 0 {
		atMost = DEFAULT_BATCH_SIZE
	}
	ctx.SetOutput(output)
	return &Pipeline{
		ctx:    ctx,
		root:   root,
		atMost: atMost,
	}
}

func (this *Pipeline) Context() *Context {
	return this.ctx
}

func (this *Pipeline) Id() string {
	return this.ctx.RequestId()
}

func (this *Pipeline) Outcome() Outcome {
	return this.ctx.Outcome()
}

/*
Step pulls one block from the root and delivers its rows. It returns
WAITING when the pipeline parked an event, and DONE once the output
was told the outcome.
*/
func (this *Pipeline) Step() (state ExecutionState) {
	if this.finished {
		return DONE
	}

	defer func() {
		// a panic in a stage is reported by Recover as a fatal error
		if this.ctx.Reported() && !this.finished {
			this.finish()
			state = DONE
		}
	}()
	defer this.ctx.Recover()

	if this.ctx.IsCancelled() {
		this.cancel()
		return DONE
	}

	// a stale event from a block returned before its wait
	this.ctx.TakeParked()

	state, block, err := this.root.FetchBlock(this.ctx, this.atMost)
	if err != nil {
		block.Destroy()
		this.ctx.Fatal(err)
		this.finish()
		return DONE
	}

	if block != nil {
		output := this.ctx.output
		for i := 0; i < block.Size(); i++ {
			if output != nil && !output.Result(InputRow{block: block, index: i}) {
				block.Destroy()
				this.ctx.Cancel()
				this.cancel()
				return DONE
			}
		}
		block.Destroy()
	}

	switch state {
	case DONE:
		this.ctx.done()
		this.finish()
	case WAITING:
		if this.ctx.IsCancelled() {
			this.cancel()
			return DONE
		}
	}
	return state
}

/*
Await registers resume with the event the last step parked on. It
returns false when nothing was parked; the caller then simply retries
the step later.
*/
func (this *Pipeline) Await(resume func()) bool {
	ev := this.ctx.TakeParked()
	if ev == nil {
		return false
	}
	ev.Wait(resume)
	return true
}

func (this *Pipeline) Cancel() {
	this.ctx.Cancel()
}

// Fail ends the pipeline with err, unless it already ended.
func (this *Pipeline) Fail(err errors.Error) {
	if this.finished {
		return
	}
	this.ctx.Fatal(err)
	this.finish()
}

func (this *Pipeline) cancel() {
	logging.Debugp("pipeline cancelled", logging.Pair{Name: "request", Value: this.ctx.RequestId()})
	this.ctx.notifyCancelled()
	this.finish()
}

func (this *Pipeline) finish() {
	this.finished = true
	if c, ok := this.root.(interface{ Close() }); ok {
		c.Close()
	}
	this.ctx.Release()
}
