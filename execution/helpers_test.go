//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"sync"
	"testing"

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/value"
)

// suspendingFetcher makes every other call of its upstream wait first.
type suspendingFetcher struct {
	upstream BlockFetcher
	calls    int
	waits    int
}

func (this *suspendingFetcher) FetchBlock(ctx *Context, atMost int) (ExecutionState, *ItemBlock, errors.Error) {
	this.calls++
	if this.calls%2 == 1 {
		this.waits++
		ev := ctx.NewEvent()
		ctx.Park(ev)
		ev.Fire()
		return WAITING, nil, nil
	}
	return this.upstream.FetchBlock(ctx, atMost)
}

// collector records rows as JSON, one string per register.
type collector struct {
	sync.Mutex
	rows      [][]string
	done      int
	cancelled int
	fatal     []errors.Error
	limit     int
}

func (this *collector) Result(row InputRow) bool {
	this.Lock()
	defer this.Unlock()
	r := make([]string, row.NrRegs())
	for i := range r {
		r[i] = row.GetValue(RegisterId(i)).String()
	}
	this.rows = append(this.rows, r)
	return this.limit == 0 || len(this.rows) < this.limit
}

func (this *collector) Done() {
	this.Lock()
	this.done++
	this.Unlock()
}

func (this *collector) Fatal(err errors.Error) {
	this.Lock()
	this.fatal = append(this.fatal, err)
	this.Unlock()
}

func (this *collector) Cancelled() {
	this.Lock()
	this.cancelled++
	this.Unlock()
}

func (this *collector) column(reg int) []string {
	this.Lock()
	defer this.Unlock()
	rv := make([]string, len(this.rows))
	for i, r := range this.rows {
		rv[i] = r[reg]
	}
	return rv
}

// drive runs a pipeline on the calling goroutine.
func drive(t *testing.T, p *Pipeline) {
	t.Helper()
	for i := 0; i < 100000; i++ {
		switch p.Step() {
		case DONE:
			return
		case WAITING:
			ch := make(chan struct{})
			if p.Await(func() { close(ch) }) {
				<-ch
			}
		}
	}
	t.Fatalf("pipeline did not finish")
}

func array(elems ...interface{}) value.Value {
	return value.NewValue(elems)
}

// list rows: register 0 holds the list, register 1 a tag
func listRows(lists ...value.Value) *ValuesBlock {
	rows := make([][]value.Value, len(lists))
	for i, l := range lists {
		rows[i] = []value.Value{l, value.NewValue(i)}
	}
	vb, err := NewValuesBlock(2, rows...)
	if err != nil {
		panic(err)
	}
	return vb
}

func enumerateInfos(t *testing.T) *EnumerateListExecutorInfos {
	t.Helper()
	infos, err := NewEnumerateListExecutorInfos(0, 2, 2, 3, NewRegisterSet(0), nil)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	return infos
}
