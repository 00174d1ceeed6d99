//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

import (
	json "github.com/couchbase/go_json"
)

/*
sliceValue is an array held in process memory. Elements may be Go
natives or Values; Index wraps natives without copying, so composite
elements returned by Index share memory with the array.
*/
type sliceValue []interface{}

func (this sliceValue) String() string {
	b, err := this.MarshalJSON()
	if err != nil {
		return "[]"
	}
	return string(b)
}

func (this sliceValue) MarshalJSON() ([]byte, error) {
	if this == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]interface{}(this))
}

func (this sliceValue) Type() Type {
	return ARRAY
}

func (this sliceValue) Storage() Storage {
	return HEAP
}

func (this sliceValue) Actual() interface{} {
	return []interface{}(this)
}

func (this sliceValue) Len() int {
	return len(this)
}

func (this sliceValue) Index(index int) (Value, bool) {
	if index < 0 || index >= len(this) {
		return MISSING_VALUE, false
	}
	return NewValue(this[index]), true
}

func (this sliceValue) Field(field string) (Value, bool) {
	return MISSING_VALUE, false
}

func (this sliceValue) Equals(other Value) bool {
	return equalsAny(this.Actual(), other.Actual())
}

func (this sliceValue) Truth() bool {
	return len(this) > 0
}

func (this sliceValue) Copy() Value {
	return sliceValue(copyAny([]interface{}(this)).([]interface{}))
}

func (this sliceValue) Size() uint64 {
	return anySize([]interface{}(this))
}

func (this sliceValue) Track() {
}

func (this sliceValue) Recycle() {
}

// Natives from JSON decoding and from NewValue may differ in their
// number representation; compare through Values.
func equalsAny(a, b interface{}) bool {
	a = actualOf(a)
	b = actualOf(b)
	switch a := a.(type) {
	case []interface{}:
		bs, ok := b.([]interface{})
		if !ok || len(a) != len(bs) {
			return false
		}
		for i := range a {
			if !equalsAny(a[i], bs[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		bm, ok := b.(map[string]interface{})
		if !ok || len(a) != len(bm) {
			return false
		}
		for k, av := range a {
			bv, ok := bm[k]
			if !ok || !equalsAny(av, bv) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		if b == nil {
			return false
		}
		switch b.(type) {
		case []interface{}, map[string]interface{}:
			return false
		}
		return NewValue(a).Equals(NewValue(b))
	}
}
