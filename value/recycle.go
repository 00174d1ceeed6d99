//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

// recycle drops the references held by an exclusively owned composite,
// so that a stale reader sees an emptied value rather than live data.
func recycle(o interface{}) {
	if o == nil {
		return
	}

	switch act := o.(type) {
	case *parsedValue:
		// borrowed documents belong to the datastore
		return
	case *ownedValue:
		act.Recycle()
		return
	case Value:
		o = act.Actual()
	}

	// It's a JSON object, a map.
	m, ok := o.(map[string]interface{})
	if ok {
		for k, v := range m {
			recycle(v)
			delete(m, k)
		}
		return
	}

	// It's a JSON array.
	a, ok := o.([]interface{})
	if ok {
		for i, v := range a {
			recycle(v)
			a[i] = nil
		}
		return
	}

	// Don't care about the other possibilities.
}
