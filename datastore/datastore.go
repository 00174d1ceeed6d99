//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package datastore defines the storage collaborator of the row
pipeline: keyspaces holding JSON documents, and transactions through
which pipelines resolve document keys.
*/
package datastore

import (
	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/value"
)

/*
Keyspace is a set of documents addressed by key. Documents returned by
Fetch and FetchOne are EXTERNAL values: their bytes belong to the
caller's transaction and must not be modified.
*/
type Keyspace interface {
	Name() string
	Count() (int64, errors.Error)

	// Keys that do not exist are left out of the result.
	Fetch(keys []string) (Pairs, errors.Error)
	FetchOne(key string) (value.Value, errors.Error)

	Upsert(pairs Pairs) (Pairs, errors.Error)
	Delete(keys []string) errors.Error

	// Etag identifies the current version of a document.
	Etag(key string) (string, errors.Error)

	Close()
}

/*
Transaction resolves documents for one request. Reads are repeatable:
a key read once keeps its value for the lifetime of the transaction,
so borrowed handles on documents stay valid until the request ends.
*/
type Transaction interface {
	Id() string
	Lookup(key string) (value.Value, errors.Error)

	// LookupAsync calls done exactly once, possibly on another
	// goroutine, possibly before it returns.
	LookupAsync(key string, done func(value.Value, errors.Error))

	Release()
}
