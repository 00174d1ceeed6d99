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

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/value"
)

/*
ValuesBlock is a leaf stage emitting a fixed set of rows. The values
are borrowed: the caller keeps them alive until the pipeline retired.
*/
type ValuesBlock struct {
	nrRegs RegisterId
	rows   [][]value.Value
	next   int
}

func NewValuesBlock(nrRegs RegisterId, rows ...[]value.Value) (*ValuesBlock, errors.Error) {
	for i, r := range rows {
		if len(r) > int(nrRegs) {
			return nil, errors.NewExecutionParameterError(
				fmt.Sprintf("row %d has %d values for %d registers", i, len(r), nrRegs))
		}
	}
	return &ValuesBlock{nrRegs: nrRegs, rows: rows}, nil
}

// One register per row, one row per value.
func NewSingleRegisterValues(vals ...value.Value) *ValuesBlock {
	rows := make([][]value.Value, len(vals))
	for i, v := range vals {
		rows[i] = []value.Value{v}
	}
	return &ValuesBlock{nrRegs: 1, rows: rows}
}

func (this *ValuesBlock) FetchBlock(ctx *Context, atMost int) (ExecutionState, *ItemBlock, errors.Error) {
	if this.next >= len(this.rows) || ctx.IsCancelled() {
		this.next = len(this.rows)
		return DONE, nil, nil
	}
	if atMost <= 0 {
		atMost = DEFAULT_BATCH_SIZE
	}

	n := len(this.rows) - this.next
	if n > atMost {
		n = atMost
	}
	block := NewItemBlock(n, this.nrRegs)
	for i := 0; i < n; i++ {
		for r, v := range this.rows[this.next+i] {
			if v != nil {
				block.setValue(i, RegisterId(r), value.Borrowed(v))
			}
		}
	}
	this.next += n

	if this.next >= len(this.rows) {
		return DONE, block, nil
	}
	return HAS_MORE, block, nil
}
