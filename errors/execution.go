//  Copyright 2014-Present Couchbase, Inc.
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

// Execution errors - errors that are created in the execution package

func NewExecutionPanicError(e error, msg string) Error {
	return &err{level: EXCEPTION, ICode: E_EXECUTION_PANIC, IKey: "execution.panic", ICause: e,
		InternalMsg: msg, InternalCaller: CallerN(1)}
}

func NewExecutionInternalError(what string) Error {
	return &err{level: EXCEPTION, ICode: E_EXECUTION_INTERNAL, IKey: "execution.internal_error",
		InternalMsg: fmt.Sprintf("Execution internal error: %v", what), InternalCaller: CallerN(1)}
}

func NewExecutionParameterError(what string) Error {
	return &err{level: EXCEPTION, ICode: E_EXECUTION_PARAMETER, IKey: "execution.parameter_error",
		InternalMsg: fmt.Sprintf("Execution parameter error: %v", what), InternalCaller: CallerN(1)}
}

func NewInvalidValueError(msg string) Error {
	return &err{level: EXCEPTION, ICode: E_INVALID_VALUE, IKey: "execution.invalid_value_error",
		InternalMsg: msg, InternalCaller: CallerN(1)}
}

// The value of the input register of a list enumeration is not an array.
func NewArrayExpectedError(actual string) Error {
	return &err{level: EXCEPTION, ICode: E_ARRAY_EXPECTED, IKey: "execution.array_expected",
		InternalMsg:    fmt.Sprintf("collection expression expected an array, but got %s", actual),
		InternalCaller: CallerN(1)}
}

func NewRegisterLayoutError(what string) Error {
	return &err{level: EXCEPTION, ICode: E_REGISTER_LAYOUT, IKey: "execution.register_layout",
		InternalMsg: fmt.Sprintf("Invalid register layout: %v", what), InternalCaller: CallerN(1)}
}

func NewRegisterWriteError(reg uint32, what string) Error {
	return &err{level: EXCEPTION, ICode: E_REGISTER_WRITE, IKey: "execution.register_write",
		InternalMsg: fmt.Sprintf("Cannot write register %d: %v", reg, what), InternalCaller: CallerN(1)}
}

func NewRowAlreadyProducedError(row int) Error {
	return &err{level: EXCEPTION, ICode: E_ROW_ALREADY_PRODUCED, IKey: "execution.row_produced",
		InternalMsg: fmt.Sprintf("Output row %d has already been produced", row), InternalCaller: CallerN(1)}
}

// An executor or fetcher broke the WAITING / HAS_MORE / DONE contract.
func NewExecutionProtocolError(what string) Error {
	return &err{level: EXCEPTION, ICode: E_EXECUTION_PROTOCOL, IKey: "execution.protocol",
		InternalMsg: fmt.Sprintf("Execution protocol violation: %v", what), InternalCaller: CallerN(1)}
}
