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

// FilterExecutor passes on the input rows whose condition register is true.
type FilterExecutor struct {
	infos   *FilterExecutorInfos
	fetcher *SingleRowFetcher
	done    bool
}

func NewFilterExecutor(infos *FilterExecutorInfos, fetcher *SingleRowFetcher) *FilterExecutor {
	return &FilterExecutor{
		infos:   infos,
		fetcher: fetcher,
	}
}

func FilterFactory(infos *FilterExecutorInfos) ExecutorFactory {
	return func(ctx *Context, fetcher *SingleRowFetcher) (Executor, errors.Error) {
		return NewFilterExecutor(infos, fetcher), nil
	}
}

func (this *FilterExecutor) ProduceRow(output *OutputRow) (ExecutionState, errors.Error) {
	if this.done {
		return DONE, nil
	}

	for {
		state, row, err := this.fetcher.FetchRow()
		if err != nil {
			this.done = true
			return DONE, err
		}
		if state == WAITING {
			return WAITING, nil
		}
		if state == DONE {
			this.done = true
		}
		if row.IsInitialized() && row.GetValue(this.infos.ConditionRegister()).Truth() {
			if err = output.CopyRow(row); err != nil {
				this.done = true
				return DONE, err
			}
			return state, nil
		}
		if state == DONE || !row.IsInitialized() {
			return state, nil
		}
	}
}
