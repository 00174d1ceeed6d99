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
	"github.com/couchbaselabs/rowpipe/value"
)

/*
InputRow is a read-only view of one row of a block. It is valid as
long as the block is alive; the fetcher that handed it out decides
when that ends.
*/
type InputRow struct {
	block *ItemBlock
	index int
}

func NewInputRow(block *ItemBlock, index int) InputRow {
	return InputRow{block: block, index: index}
}

func (this InputRow) IsInitialized() bool {
	return this.block != nil
}

func (this InputRow) GetValue(reg RegisterId) value.Value {
	if this.block == nil {
		return value.MISSING_VALUE
	}
	return this.block.GetValue(this.index, reg)
}

func (this InputRow) NrRegs() RegisterId {
	if this.block == nil {
		return 0
	}
	return this.block.NrRegs()
}

// Values returns the natives of all registers, for display.
func (this InputRow) Values() []interface{} {
	rv := make([]interface{}, this.NrRegs())
	for r := range rv {
		rv[r] = this.GetValue(RegisterId(r)).Actual()
	}
	return rv
}

/*
OutputRow is a cursor writing rows into a block. Within one row every
output register is written once and the registers to keep are copied
from the input row; only then may the row be advanced.
*/
type OutputRow struct {
	block       *ItemBlock
	infos       *ExecutorInfos
	row         int
	written     []bool
	numWritten  int
	copied      bool
	rowsWritten int
}

func NewOutputRow(block *ItemBlock, infos *ExecutorInfos) *OutputRow {
	return &OutputRow{
		block:   block,
		infos:   infos,
		written: make([]bool, infos.NumberOfOutputRegisters()),
	}
}

/*
SetValue moves the handle into the given output register of the
current row, and copies the registers to keep from input. On error an
owned handle is released, so ownership always passes to the row.
*/
func (this *OutputRow) SetValue(reg RegisterId, input InputRow, h value.Handle) errors.Error {
	if err := this.checkWrite(reg); err != nil {
		h.Release()
		return err
	}
	this.block.setValue(this.row, reg, h)
	this.written[reg] = true
	this.numWritten++
	if !this.copied {
		return this.CopyRow(input)
	}
	return nil
}

func (this *OutputRow) checkWrite(reg RegisterId) errors.Error {
	if this.block == nil || this.IsFull() {
		return errors.NewRegisterWriteError(uint32(reg), "output block is full")
	}
	if !this.infos.OutputRegisters().Contains(reg) {
		return errors.NewRegisterWriteError(uint32(reg), "not an output register")
	}
	if this.written[reg] {
		return errors.NewRegisterWriteError(uint32(reg), "already written in this row")
	}
	return nil
}

// CopyRow passes the registers to keep through to the current row.
func (this *OutputRow) CopyRow(input InputRow) errors.Error {
	if this.block == nil || this.IsFull() {
		return errors.NewExecutionProtocolError("copy into a full output block")
	}
	if this.copied {
		return errors.NewExecutionProtocolError("row copied twice")
	}
	if input.IsInitialized() {
		for _, r := range this.infos.RegistersToKeep().ids {
			if r < input.NrRegs() {
				this.block.copyValue(this.row, r, input.block, input.index)
			}
		}
	}
	this.copied = true
	return nil
}

// Produced reports whether the current row is complete.
func (this *OutputRow) Produced() bool {
	return this.copied && this.numWritten == this.infos.OutputRegisters().Len()
}

// NumWrittenInRow is the number of output registers set in the current row.
func (this *OutputRow) NumWrittenInRow() int {
	return this.numWritten
}

// AdvanceRow moves to the next row; a row is advanced exactly once.
func (this *OutputRow) AdvanceRow() errors.Error {
	if this.IsFull() {
		return errors.NewRowAlreadyProducedError(this.row)
	}
	if !this.Produced() {
		return errors.NewExecutionProtocolError("row advanced before it was complete")
	}
	this.row++
	this.rowsWritten++
	for i := range this.written {
		this.written[i] = false
	}
	this.numWritten = 0
	this.copied = false
	return nil
}

func (this *OutputRow) IsFull() bool {
	return this.block == nil || this.row >= this.block.Size()
}

func (this *OutputRow) NumRowsWritten() int {
	return this.rowsWritten
}

/*
StealBlock hands the written rows over to the caller; an incomplete
current row is discarded. Returns nil if nothing was written.
*/
func (this *OutputRow) StealBlock() *ItemBlock {
	block := this.block
	this.block = nil
	if block == nil {
		return nil
	}
	if this.rowsWritten == 0 {
		block.Destroy()
		return nil
	}
	block.Shrink(this.rowsWritten)
	return block
}
