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

	"golang.org/x/exp/slices"

	"github.com/couchbaselabs/rowpipe/datastore"
	"github.com/couchbaselabs/rowpipe/errors"
)

type RegisterId uint32

// RegisterSet is an immutable, sorted set of register ids.
type RegisterSet struct {
	ids []RegisterId
}

func NewRegisterSet(ids ...RegisterId) RegisterSet {
	if len(ids) == 0 {
		return RegisterSet{}
	}
	s := slices.Clone(ids)
	slices.Sort(s)
	return RegisterSet{ids: slices.Compact(s)}
}

func (this RegisterSet) Contains(id RegisterId) bool {
	_, ok := slices.BinarySearch(this.ids, id)
	return ok
}

func (this RegisterSet) Len() int {
	return len(this.ids)
}

func (this RegisterSet) Ids() []RegisterId {
	return slices.Clone(this.ids)
}

func (this RegisterSet) String() string {
	return fmt.Sprint(this.ids)
}

/*
ExecutorInfos describes the register layout of one operator: the
registers it reads, the registers it writes, how many registers its
input and output rows have, and which input registers are no longer
needed once it ran. It is immutable and may be shared by every
goroutine running instances of the operator.
*/
type ExecutorInfos struct {
	inputs  RegisterSet
	outputs RegisterSet
	nrIn    RegisterId
	nrOut   RegisterId
	clear   RegisterSet
	keep    RegisterSet
}

func NewExecutorInfos(inputs, outputs RegisterSet, nrIn, nrOut RegisterId,
	clear RegisterSet) (*ExecutorInfos, errors.Error) {

	if nrOut < nrIn {
		return nil, errors.NewRegisterLayoutError(
			fmt.Sprintf("%d output registers cannot hold %d input registers", nrOut, nrIn))
	}
	for _, r := range inputs.ids {
		if r >= nrIn {
			return nil, errors.NewRegisterLayoutError(
				fmt.Sprintf("input register %d out of range (%d registers)", r, nrIn))
		}
	}
	for _, r := range outputs.ids {
		if r >= nrOut {
			return nil, errors.NewRegisterLayoutError(
				fmt.Sprintf("output register %d out of range (%d registers)", r, nrOut))
		}
		if r < nrIn {
			return nil, errors.NewRegisterLayoutError(
				fmt.Sprintf("output register %d overlaps the input registers", r))
		}
	}
	for _, r := range clear.ids {
		if outputs.Contains(r) {
			return nil, errors.NewRegisterLayoutError(
				fmt.Sprintf("output register %d cannot be cleared", r))
		}
		if r >= nrIn {
			return nil, errors.NewRegisterLayoutError(
				fmt.Sprintf("register to clear %d out of range (%d registers)", r, nrIn))
		}
	}

	keep := make([]RegisterId, 0, nrIn)
	for r := RegisterId(0); r < nrIn; r++ {
		if !clear.Contains(r) {
			keep = append(keep, r)
		}
	}

	return &ExecutorInfos{
		inputs:  inputs,
		outputs: outputs,
		nrIn:    nrIn,
		nrOut:   nrOut,
		clear:   clear,
		keep:    RegisterSet{ids: keep},
	}, nil
}

func (this *ExecutorInfos) InputRegisters() RegisterSet {
	return this.inputs
}

func (this *ExecutorInfos) OutputRegisters() RegisterSet {
	return this.outputs
}

func (this *ExecutorInfos) NumberOfInputRegisters() RegisterId {
	return this.nrIn
}

func (this *ExecutorInfos) NumberOfOutputRegisters() RegisterId {
	return this.nrOut
}

func (this *ExecutorInfos) RegistersToClear() RegisterSet {
	return this.clear
}

// Input registers copied through to every output row.
func (this *ExecutorInfos) RegistersToKeep() RegisterSet {
	return this.keep
}

type EnumerateListExecutorInfos struct {
	*ExecutorInfos
	inputRegister  RegisterId
	outputRegister RegisterId
	trx            datastore.Transaction
}

func NewEnumerateListExecutorInfos(inputRegister, outputRegister RegisterId,
	nrIn, nrOut RegisterId, clear RegisterSet, trx datastore.Transaction) (
	*EnumerateListExecutorInfos, errors.Error) {

	infos, err := NewExecutorInfos(NewRegisterSet(inputRegister), NewRegisterSet(outputRegister),
		nrIn, nrOut, clear)
	if err != nil {
		return nil, err
	}
	return &EnumerateListExecutorInfos{
		ExecutorInfos:  infos,
		inputRegister:  inputRegister,
		outputRegister: outputRegister,
		trx:            trx,
	}, nil
}

func (this *EnumerateListExecutorInfos) InputRegister() RegisterId {
	return this.inputRegister
}

func (this *EnumerateListExecutorInfos) OutputRegister() RegisterId {
	return this.outputRegister
}

func (this *EnumerateListExecutorInfos) Transaction() datastore.Transaction {
	return this.trx
}

type FilterExecutorInfos struct {
	*ExecutorInfos
	conditionRegister RegisterId
}

// A filter writes nothing: its output rows have the input's registers.
func NewFilterExecutorInfos(conditionRegister RegisterId, nrIn RegisterId,
	clear RegisterSet) (*FilterExecutorInfos, errors.Error) {

	infos, err := NewExecutorInfos(NewRegisterSet(conditionRegister), NewRegisterSet(),
		nrIn, nrIn, clear)
	if err != nil {
		return nil, err
	}
	return &FilterExecutorInfos{
		ExecutorInfos:     infos,
		conditionRegister: conditionRegister,
	}, nil
}

func (this *FilterExecutorInfos) ConditionRegister() RegisterId {
	return this.conditionRegister
}
