//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package value represents the data flowing through the row pipeline. It
provides a native abstraction for JSON data values, with delayed
parsing of documents borrowed from the datastore, and an explicit
ownership type (Handle) for values that must be released by their
holder.
*/
package value

import (
	"fmt"
	"math"
	"reflect"

	json "github.com/couchbase/go_json"
)

/*
The data types supported by Value.
*/
type Type int

/*
List of valid types. Missing is the absence of a value and Binary
refers to non-JSON bytes.
*/
const (
	MISSING = Type(iota) // Missing field
	NULL                 // Explicit null
	BOOLEAN              // JSON boolean
	NUMBER               // JSON number
	STRING               // JSON string
	ARRAY                // JSON array
	OBJECT               // JSON object
	BINARY               // non-JSON
)

func (this Type) String() string {
	if this < MISSING || this > BINARY {
		return "unknown"
	}
	return _TYPE_NAMES[this]
}

var _TYPE_NAMES = []string{
	MISSING: "missing",
	NULL:    "null",
	BOOLEAN: "boolean",
	NUMBER:  "number",
	STRING:  "string",
	ARRAY:   "array",
	OBJECT:  "object",
	BINARY:  "binary",
}

/*
Storage tells where the payload of a value lives, and therefore who
may release it.
*/
type Storage int

const (
	INLINE   = Storage(iota) // scalar held by value, never released
	HEAP                     // composite allocated in process memory
	EXTERNAL                 // raw bytes owned by a document in the datastore
)

func (this Storage) String() string {
	switch this {
	case INLINE:
		return "inline"
	case HEAP:
		return "heap"
	case EXTERNAL:
		return "external"
	default:
		return "unknown"
	}
}

const (
	_INTERFACE_SIZE = 16
	_POINTER_SIZE   = 8
	_MAP_SIZE       = 24
)

/*
Value is the interface for representing values of any type. Values
are immutable once they are visible to more than one row: only the
holder of an owned Handle may release them, and nobody mutates them.
*/
type Value interface {
	fmt.Stringer
	json.Marshaler

	// Type of this value
	Type() Type

	// Where the payload is held
	Storage() Storage

	// Native Go representation
	Actual() interface{}

	// Number of elements (arrays) or fields (objects); 0 otherwise
	Len() int

	// Element at the given position; false if out of range or not an array
	Index(index int) (Value, bool)

	// Field of an object; false if absent or not an object
	Field(field string) (Value, bool)

	// Deep equality
	Equals(other Value) bool

	// Truth value, as used by filters
	Truth() bool

	// Deep copy; composites get freshly allocated memory
	Copy() Value

	// Approximate memory footprint in bytes
	Size() uint64

	// Reference counting, a no-op for values that are not owned
	Track()
	Recycle()
}

var (
	MISSING_VALUE Value = missingValue{}
	NULL_VALUE    Value = nullValue{}
	TRUE_VALUE    Value = boolValue(true)
	FALSE_VALUE   Value = boolValue(false)
	EMPTY_ARRAY   Value = sliceValue([]interface{}{})
)

/*
NewValue creates a Value from a Go native. Composite natives are
wrapped, not copied: the resulting value shares memory with its
argument.
*/
func NewValue(val interface{}) Value {
	switch val := val.(type) {
	case nil:
		return NULL_VALUE
	case Value:
		return val
	case bool:
		return boolValue(val)
	case int:
		return intValue(int64(val))
	case int32:
		return intValue(int64(val))
	case int64:
		return intValue(val)
	case uint32:
		return intValue(int64(val))
	case float32:
		return NewValue(float64(val))
	case float64:
		if IsInt(val) {
			return intValue(int64(val))
		}
		return floatValue(val)
	case string:
		return stringValue(val)
	case []byte:
		return NewParsedValue(val)
	case []interface{}:
		return sliceValue(val)
	case []Value:
		rv := make([]interface{}, len(val))
		for i, v := range val {
			rv[i] = v
		}
		return sliceValue(rv)
	case map[string]interface{}:
		return objectValue(val)
	case map[string]Value:
		rv := make(map[string]interface{}, len(val))
		for k, v := range val {
			rv[k] = v
		}
		return objectValue(rv)
	default:
		rv := reflect.ValueOf(val)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return intValue(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return intValue(int64(rv.Uint()))
		case reflect.Float32, reflect.Float64:
			return NewValue(rv.Float())
		case reflect.String:
			return stringValue(rv.String())
		case reflect.Bool:
			return boolValue(rv.Bool())
		}
		panic(fmt.Sprintf("Cannot create value for type %T.", val))
	}
}

/*
IsInt reports whether the float has no fractional part and fits in
an int64.
*/
func IsInt(x float64) bool {
	return x == math.Trunc(x) && x >= math.MinInt64 && x <= math.MaxInt64 &&
		!math.IsInf(x, 0)
}

/*
Creates an array value from the given elements.
*/
func NewArrayValue(elems ...interface{}) Value {
	if elems == nil {
		elems = []interface{}{}
	}
	return sliceValue(elems)
}

// nested natives may hold Values or plain Go values
func actualOf(v interface{}) interface{} {
	if val, ok := v.(Value); ok {
		return val.Actual()
	}
	return v
}

func anySize(v interface{}) uint64 {
	switch v := v.(type) {
	case nil:
		return 0
	case Value:
		return v.Size()
	case string:
		return uint64(len(v)) + _INTERFACE_SIZE
	case []interface{}:
		s := uint64(_INTERFACE_SIZE * cap(v))
		for _, e := range v {
			s += anySize(e)
		}
		return s
	case map[string]interface{}:
		s := uint64(_MAP_SIZE)
		for k, e := range v {
			s += uint64(len(k)) + _INTERFACE_SIZE + anySize(e)
		}
		return s
	default:
		return _INTERFACE_SIZE
	}
}

// deep copy of a native, Values are flattened to their natives so
// the copy shares nothing with the source
func copyAny(v interface{}) interface{} {
	switch v := v.(type) {
	case []interface{}:
		rv := make([]interface{}, len(v))
		for i, e := range v {
			rv[i] = copyAny(e)
		}
		return rv
	case map[string]interface{}:
		rv := make(map[string]interface{}, len(v))
		for k, e := range v {
			rv[k] = copyAny(e)
		}
		return rv
	case Value:
		switch v.Type() {
		case ARRAY, OBJECT:
			return copyAny(v.Actual())
		}
		return v.Actual()
	default:
		return v
	}
}
