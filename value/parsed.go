//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

import (
	"sync"

	json "github.com/couchbase/go_json"

	"github.com/couchbaselabs/rowpipe/errors"
)

/*
parsedValue holds the raw bytes of a document owned by the datastore.
The bytes are parsed on first inspection and the result is shared by
every row that borrows the document, so the parse is guarded by a
sync.Once.
*/
type parsedValue struct {
	raw        []byte
	once       sync.Once
	parsedType Type
	parsed     interface{}
}

/*
NewParsedValue wraps raw JSON bytes without parsing them. The bytes
must not be modified afterwards. Invalid JSON yields a BINARY value.
*/
func NewParsedValue(raw []byte) Value {
	return &parsedValue{raw: raw}
}

func (this *parsedValue) parse() {
	this.once.Do(func() {
		var p interface{}
		if err := json.Unmarshal(this.raw, &p); err != nil {
			this.parsedType = BINARY
			return
		}
		this.parsed = p
		this.parsedType = NewValue(p).Type()
	})
}

func (this *parsedValue) String() string {
	b, err := this.MarshalJSON()
	if err != nil {
		return "<binary>"
	}
	return string(b)
}

func (this *parsedValue) MarshalJSON() ([]byte, error) {
	this.parse()
	if this.parsedType == BINARY {
		return nil, errors.NewInvalidValueError("binary value cannot be marshaled as JSON")
	}
	return this.raw, nil
}

func (this *parsedValue) Type() Type {
	this.parse()
	return this.parsedType
}

func (this *parsedValue) Storage() Storage {
	return EXTERNAL
}

func (this *parsedValue) Actual() interface{} {
	this.parse()
	if this.parsedType == BINARY {
		return this.raw
	}
	return this.parsed
}

func (this *parsedValue) value() Value {
	this.parse()
	if this.parsedType == BINARY {
		return MISSING_VALUE
	}
	return NewValue(this.parsed)
}

func (this *parsedValue) Len() int {
	return this.value().Len()
}

func (this *parsedValue) Index(index int) (Value, bool) {
	return this.value().Index(index)
}

func (this *parsedValue) Field(field string) (Value, bool) {
	return this.value().Field(field)
}

func (this *parsedValue) Equals(other Value) bool {
	if this.Type() == BINARY {
		o, ok := other.(*parsedValue)
		return ok && o.Type() == BINARY && string(o.raw) == string(this.raw)
	}
	return equalsAny(this.parsed, other.Actual())
}

func (this *parsedValue) Truth() bool {
	if this.Type() == BINARY {
		return len(this.raw) > 0
	}
	return this.value().Truth()
}

// The copy no longer refers to the document.
func (this *parsedValue) Copy() Value {
	if this.Type() == BINARY {
		return NewParsedValue(append([]byte(nil), this.raw...))
	}
	return NewValue(copyAny(this.parsed))
}

func (this *parsedValue) Size() uint64 {
	return uint64(len(this.raw)) + _POINTER_SIZE
}

// The datastore owns the bytes.
func (this *parsedValue) Track() {
}

func (this *parsedValue) Recycle() {
}
