//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package datastore

import (
	"github.com/couchbaselabs/rowpipe/value"
)

type Pairs []Pair

// Key-value pair
type Pair struct {
	Key   string
	Value value.Value
}

func (this Pairs) Keys() []string {
	rv := make([]string, len(this))
	for i, p := range this {
		rv[i] = p.Key
	}
	return rv
}
