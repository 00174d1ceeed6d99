//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

/*
ExecutionState is what every production call returns.

	WAITING   nothing was produced; call again once the parked event fired
	HAS_MORE  a row may have been produced; safe to call again right away
	DONE      exhausted; every later call returns DONE and produces nothing
*/
type ExecutionState int

const (
	WAITING = ExecutionState(iota)
	HAS_MORE
	DONE
)

var _STATE_NAMES = []string{
	WAITING:  "WAITING",
	HAS_MORE: "HAS_MORE",
	DONE:     "DONE",
}

func (this ExecutionState) String() string {
	if this < WAITING || this > DONE {
		return "UNKNOWN"
	}
	return _STATE_NAMES[this]
}

// Outcome is how a pipeline's request ended, RUNNING until reported.
type Outcome int

const (
	RUNNING = Outcome(iota)
	COMPLETED
	FAILED
	CANCELLED
)

func (this Outcome) String() string {
	switch this {
	case RUNNING:
		return "running"
	case COMPLETED:
		return "completed"
	case FAILED:
		return "failed"
	case CANCELLED:
		return "cancelled"
	default:
		return "unknown"
	}
}
