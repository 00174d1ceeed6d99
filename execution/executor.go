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
Executor is the per operator unit of work. ProduceRow pulls from the
executor's fetcher, writes at most one row to output, and reports
whether more may follow. Once it returned DONE, or an error, it
returns DONE and writes nothing on every later call.
*/
type Executor interface {
	ProduceRow(output *OutputRow) (ExecutionState, errors.Error)
}

// ExecutorFactory builds an executor reading from the given fetcher.
type ExecutorFactory func(ctx *Context, fetcher *SingleRowFetcher) (Executor, errors.Error)
