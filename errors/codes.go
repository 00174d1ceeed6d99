//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package errors

const (
	E_ADMIN_INVALID_SETTING ErrorCode = 2010
	E_ADMIN_UNKNOWN_LOGGER  ErrorCode = 2020

	E_INTERNAL                  ErrorCode = 5000
	E_EXECUTION_PANIC           ErrorCode = 5001
	E_EXECUTION_INTERNAL        ErrorCode = 5002
	E_EXECUTION_PARAMETER       ErrorCode = 5003
	E_INVALID_VALUE             ErrorCode = 5030
	E_MEMORY_QUOTA_EXCEEDED     ErrorCode = 5500
	E_MEMORY_ALLOCATION         ErrorCode = 5501
	E_TYPE_MISMATCH             ErrorCode = 5510
	E_ARRAY_EXPECTED            ErrorCode = 5511
	E_REGISTER_LAYOUT           ErrorCode = 5520
	E_REGISTER_WRITE            ErrorCode = 5521
	E_ROW_ALREADY_PRODUCED      ErrorCode = 5522
	E_EXECUTION_PROTOCOL        ErrorCode = 5530
	E_SCHEDULER                 ErrorCode = 6001
	E_SCHEDULER_SHUTDOWN        ErrorCode = 6005
	E_SCHEDULER_UNKNOWN_BACKEND ErrorCode = 6006
	E_SCHEDULER_BACKEND         ErrorCode = 6007

	E_NOT_IMPLEMENTED ErrorCode = 9999

	E_DATASTORE_KEY_NOT_FOUND ErrorCode = 12004
	E_DATASTORE_DECODE        ErrorCode = 12050
	E_DATASTORE_ENCODE        ErrorCode = 12051
	E_DATASTORE_CLOSED        ErrorCode = 12052
)
