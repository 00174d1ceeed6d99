//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"github.com/couchbaselabs/rowpipe/value"
)

type cell struct {
	val   value.Value
	owned bool
}

/*
ItemBlock is a rows x registers matrix of values. Each cell remembers
whether the block holds a reference on its value; Destroy gives every
such reference back exactly once.
*/
type ItemBlock struct {
	nrRegs    RegisterId
	nrRows    int
	cells     []cell
	destroyed bool
}

func NewItemBlock(nrRows int, nrRegs RegisterId) *ItemBlock {
	if nrRows < 0 {
		nrRows = 0
	}
	return &ItemBlock{
		nrRegs: nrRegs,
		nrRows: nrRows,
		cells:  make([]cell, nrRows*int(nrRegs)),
	}
}

func (this *ItemBlock) Size() int {
	return this.nrRows
}

func (this *ItemBlock) NrRegs() RegisterId {
	return this.nrRegs
}

func (this *ItemBlock) cell(row int, reg RegisterId) *cell {
	return &this.cells[row*int(this.nrRegs)+int(reg)]
}

// GetValue returns MISSING for cells that were never written.
func (this *ItemBlock) GetValue(row int, reg RegisterId) value.Value {
	if row < 0 || row >= this.nrRows || reg >= this.nrRegs {
		return value.MISSING_VALUE
	}
	c := this.cell(row, reg)
	if c.val == nil {
		return value.MISSING_VALUE
	}
	return c.val
}

func (this *ItemBlock) isEmpty(row int, reg RegisterId) bool {
	return this.cell(row, reg).val == nil
}

// The block takes over the handle's ownership.
func (this *ItemBlock) setValue(row int, reg RegisterId, h value.Handle) {
	c := this.cell(row, reg)
	this.release(c)
	c.val = h.Value()
	c.owned = h.MustDestroy()
}

// Copy the cell of another block, sharing its value.
func (this *ItemBlock) copyValue(row int, reg RegisterId, src *ItemBlock, srcRow int) {
	s := src.cell(srcRow, reg)
	if s.val == nil {
		return
	}
	c := this.cell(row, reg)
	this.release(c)
	if s.owned {
		s.val.Track()
	}
	c.val = s.val
	c.owned = s.owned
}

func (this *ItemBlock) clearValue(row int, reg RegisterId) {
	this.release(this.cell(row, reg))
}

func (this *ItemBlock) release(c *cell) {
	if c.owned && c.val != nil {
		c.val.Recycle()
	}
	c.val = nil
	c.owned = false
}

// Destroy is idempotent, and a no-op on a nil block.
func (this *ItemBlock) Destroy() {
	if this == nil || this.destroyed {
		return
	}
	this.destroyed = true
	for i := range this.cells {
		this.release(&this.cells[i])
	}
	this.cells = nil
	this.nrRows = 0
}

// Shrink drops the rows from n onwards.
func (this *ItemBlock) Shrink(n int) {
	if n < 0 || n >= this.nrRows {
		return
	}
	for i := n * int(this.nrRegs); i < len(this.cells); i++ {
		this.release(&this.cells[i])
	}
	this.cells = this.cells[:n*int(this.nrRegs)]
	this.nrRows = n
}
