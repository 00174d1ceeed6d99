//  Copyright 2019-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package scheduler

// This module defines the interfaces of the work the scheduler runs.
// *execution.Pipeline is the usual implementation.

import (
	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/execution"
)

type Task interface {
	// Step does a bounded amount of work and never blocks.
	Step() execution.ExecutionState

	// Await registers resume with whatever the last WAITING step parked
	// on; false if nothing was parked.
	Await(resume func()) bool

	Cancel()
	Fail(err errors.Error)
}

// Tasks that know how they ended are accounted by outcome.
type outcomeTask interface {
	Outcome() execution.Outcome
}

var _ Task = (*execution.Pipeline)(nil)
var _ outcomeTask = (*execution.Pipeline)(nil)
