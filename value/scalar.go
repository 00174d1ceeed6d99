//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

import (
	"math"
	"strconv"

	json "github.com/couchbase/go_json"
)

// Scalars are held by value, they are always INLINE and need no release.

type missingValue struct{}

func (this missingValue) String() string { return "missing" }
func (this missingValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
func (this missingValue) Type() Type { return MISSING }
func (this missingValue) Storage() Storage { return INLINE }
func (this missingValue) Actual() interface{} { return nil }
func (this missingValue) Len() int { return 0 }
func (this missingValue) Index(index int) (Value, bool) { return MISSING_VALUE, false }
func (this missingValue) Field(field string) (Value, bool) { return MISSING_VALUE, false }
func (this missingValue) Truth() bool { return false }
func (this missingValue) Copy() Value { return this }
func (this missingValue) Size() uint64 { return 0 }
func (this missingValue) Track() {}
func (this missingValue) Recycle() {}

func (this missingValue) Equals(other Value) bool {
	return other.Type() == MISSING
}

type nullValue struct{}

func (this nullValue) String() string { return "null" }
func (this nullValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
func (this nullValue) Type() Type { return NULL }
func (this nullValue) Storage() Storage { return INLINE }
func (this nullValue) Actual() interface{} { return nil }
func (this nullValue) Len() int { return 0 }
func (this nullValue) Index(index int) (Value, bool) { return MISSING_VALUE, false }
func (this nullValue) Field(field string) (Value, bool) { return MISSING_VALUE, false }
func (this nullValue) Truth() bool { return false }
func (this nullValue) Copy() Value { return this }
func (this nullValue) Size() uint64 { return 0 }
func (this nullValue) Track() {}
func (this nullValue) Recycle() {}

func (this nullValue) Equals(other Value) bool {
	return other.Type() == NULL
}

type boolValue bool

func (this boolValue) String() string {
	return strconv.FormatBool(bool(this))
}

func (this boolValue) MarshalJSON() ([]byte, error) {
	return []byte(this.String()), nil
}

func (this boolValue) Type() Type { return BOOLEAN }
func (this boolValue) Storage() Storage { return INLINE }
func (this boolValue) Actual() interface{} { return bool(this) }
func (this boolValue) Len() int { return 0 }
func (this boolValue) Index(index int) (Value, bool) { return MISSING_VALUE, false }
func (this boolValue) Field(field string) (Value, bool) { return MISSING_VALUE, false }
func (this boolValue) Truth() bool { return bool(this) }
func (this boolValue) Copy() Value { return this }
func (this boolValue) Size() uint64 { return 1 }
func (this boolValue) Track() {}
func (this boolValue) Recycle() {}

func (this boolValue) Equals(other Value) bool {
	o, ok := other.Actual().(bool)
	return ok && other.Type() == BOOLEAN && o == bool(this)
}

type intValue int64

func (this intValue) String() string {
	return strconv.FormatInt(int64(this), 10)
}

func (this intValue) MarshalJSON() ([]byte, error) {
	return []byte(this.String()), nil
}

func (this intValue) Type() Type { return NUMBER }
func (this intValue) Storage() Storage { return INLINE }
func (this intValue) Actual() interface{} { return int64(this) }
func (this intValue) Len() int { return 0 }
func (this intValue) Index(index int) (Value, bool) { return MISSING_VALUE, false }
func (this intValue) Field(field string) (Value, bool) { return MISSING_VALUE, false }
func (this intValue) Truth() bool { return this != 0 }
func (this intValue) Copy() Value { return this }
func (this intValue) Size() uint64 { return 8 }
func (this intValue) Track() {}
func (this intValue) Recycle() {}

func (this intValue) Equals(other Value) bool {
	switch o := other.Actual().(type) {
	case int64:
		return o == int64(this)
	case float64:
		return o == float64(this)
	}
	return false
}

type floatValue float64

func (this floatValue) String() string {
	return strconv.FormatFloat(float64(this), 'g', -1, 64)
}

func (this floatValue) MarshalJSON() ([]byte, error) {
	f := float64(this)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(this.String()), nil
}

func (this floatValue) Type() Type { return NUMBER }
func (this floatValue) Storage() Storage { return INLINE }
func (this floatValue) Actual() interface{} { return float64(this) }
func (this floatValue) Len() int { return 0 }
func (this floatValue) Index(index int) (Value, bool) { return MISSING_VALUE, false }
func (this floatValue) Field(field string) (Value, bool) { return MISSING_VALUE, false }
func (this floatValue) Truth() bool { return this != 0 && !math.IsNaN(float64(this)) }
func (this floatValue) Copy() Value { return this }
func (this floatValue) Size() uint64 { return 8 }
func (this floatValue) Track() {}
func (this floatValue) Recycle() {}

func (this floatValue) Equals(other Value) bool {
	switch o := other.Actual().(type) {
	case int64:
		return float64(o) == float64(this)
	case float64:
		return o == float64(this)
	}
	return false
}

type stringValue string

func (this stringValue) String() string {
	b, _ := this.MarshalJSON()
	return string(b)
}

func (this stringValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(this))
}

func (this stringValue) Type() Type { return STRING }
func (this stringValue) Storage() Storage { return INLINE }
func (this stringValue) Actual() interface{} { return string(this) }
func (this stringValue) Len() int { return 0 }
func (this stringValue) Index(index int) (Value, bool) { return MISSING_VALUE, false }
func (this stringValue) Field(field string) (Value, bool) { return MISSING_VALUE, false }
func (this stringValue) Truth() bool { return len(this) > 0 }
func (this stringValue) Copy() Value { return this }
func (this stringValue) Size() uint64 { return uint64(len(this)) + _INTERFACE_SIZE }
func (this stringValue) Track() {}
func (this stringValue) Recycle() {}

func (this stringValue) Equals(other Value) bool {
	o, ok := other.Actual().(string)
	return ok && other.Type() == STRING && o == string(this)
}
