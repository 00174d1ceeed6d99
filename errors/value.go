//  Copyright 2024-Present Couchbase, Inc.
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

func NewTypeMismatchError(op string, expected, actual string) Error {
	return &err{level: EXCEPTION, ICode: E_TYPE_MISMATCH, IKey: "value.type_mismatch",
		InternalMsg:    fmt.Sprintf("%s expected %s but got %s", op, expected, actual),
		InternalCaller: CallerN(1)}
}

func NewMemoryQuotaExceededError() Error {
	return &err{level: EXCEPTION, ICode: E_MEMORY_QUOTA_EXCEEDED, IKey: "execution.memory_quota.exceeded",
		InternalMsg:    "Request has exceeded memory quota",
		InternalCaller: CallerN(1)}
}

func NewMemoryAllocationError(size uint64) Error {
	return &err{level: EXCEPTION, ICode: E_MEMORY_ALLOCATION, IKey: "execution.memory_allocation",
		InternalMsg:    fmt.Sprintf("Unable to allocate %d bytes", size),
		InternalCaller: CallerN(1)}
}
