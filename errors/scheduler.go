//  Copyright 2019-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package errors

import (
	"fmt"
)

func NewSchedulerError(what string, e error) Error {
	return &err{level: EXCEPTION, ICode: E_SCHEDULER, IKey: "scheduler.generic.error", ICause: e,
		InternalMsg:    fmt.Sprintf("The scheduler encountered an error in %v", what),
		InternalCaller: CallerN(1)}
}

func NewSchedulerShutdownError() Error {
	return &err{level: EXCEPTION, ICode: E_SCHEDULER_SHUTDOWN, IKey: "scheduler.shutdown.error",
		InternalMsg:    "The scheduler is shutting down and does not accept new tasks",
		InternalCaller: CallerN(1), retry: true}
}

func NewUnknownBackendError(name string, known []string) Error {
	return &err{level: EXCEPTION, ICode: E_SCHEDULER_UNKNOWN_BACKEND, IKey: "scheduler.backend.unknown",
		InternalMsg:    fmt.Sprintf("Unknown I/O backend %q (available: %v)", name, known),
		InternalCaller: CallerN(1)}
}

func NewBackendError(backend string, e error) Error {
	return &err{level: EXCEPTION, ICode: E_SCHEDULER_BACKEND, IKey: "scheduler.backend.error", ICause: e,
		InternalMsg:    fmt.Sprintf("I/O backend %v failed", backend),
		InternalCaller: CallerN(1)}
}
