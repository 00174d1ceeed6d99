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

type objectValue map[string]interface{}

func (this objectValue) String() string {
	b, err := this.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}

// go_json sorts map keys, so the output is stable
func (this objectValue) MarshalJSON() ([]byte, error) {
	if this == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]interface{}(this))
}

func (this objectValue) Type() Type {
	return OBJECT
}

func (this objectValue) Storage() Storage {
	return HEAP
}

func (this objectValue) Actual() interface{} {
	return map[string]interface{}(this)
}

func (this objectValue) Len() int {
	return len(this)
}

func (this objectValue) Index(index int) (Value, bool) {
	return MISSING_VALUE, false
}

func (this objectValue) Field(field string) (Value, bool) {
	v, ok := this[field]
	if !ok {
		return MISSING_VALUE, false
	}
	return NewValue(v), true
}

func (this objectValue) Equals(other Value) bool {
	return equalsAny(this.Actual(), other.Actual())
}

func (this objectValue) Truth() bool {
	return len(this) > 0
}

func (this objectValue) Copy() Value {
	return objectValue(copyAny(map[string]interface{}(this)).(map[string]interface{}))
}

func (this objectValue) Size() uint64 {
	return anySize(map[string]interface{}(this))
}

func (this objectValue) Track() {
}

func (this objectValue) Recycle() {
}
