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

func NewKeyNotFoundError(keyspace, key string) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_KEY_NOT_FOUND, IKey: "datastore.key_not_found",
		InternalMsg:    fmt.Sprintf("Key %s not found in %s", key, keyspace),
		InternalCaller: CallerN(1)}
}

func NewDocumentDecodeError(key string, e error) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_DECODE, IKey: "datastore.decode", ICause: e,
		InternalMsg:    fmt.Sprintf("Unable to decode document %s", key),
		InternalCaller: CallerN(1)}
}

func NewDocumentEncodeError(key string, e error) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_ENCODE, IKey: "datastore.encode", ICause: e,
		InternalMsg:    fmt.Sprintf("Unable to encode document %s", key),
		InternalCaller: CallerN(1)}
}

func NewDatastoreClosedError(keyspace string) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_CLOSED, IKey: "datastore.closed",
		InternalMsg:    fmt.Sprintf("Keyspace %s is closed", keyspace),
		InternalCaller: CallerN(1)}
}
