//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

import (
	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/memory"
)

/*
Handle is a value together with its ownership. An owned handle holds
a fresh allocation that its holder must release exactly once; a
borrowed handle refers to memory owned by somebody else and releasing
it does nothing. The usual pattern is

	h, err := value.ExtractElement(container, i)
	if err != nil {
		return err
	}
	defer h.Release()
*/
type Handle struct {
	value Value
	owned bool
}

/*
Owned returns a handle that owns val. val must not be reachable from
anywhere else.
*/
func Owned(val Value) Handle {
	return Handle{value: NewOwnedValue(val), owned: true}
}

/*
Borrowed returns a handle that refers to val without owning it.
*/
func Borrowed(val Value) Handle {
	return Handle{value: val}
}

func (this Handle) Value() Value {
	if this.value == nil {
		return MISSING_VALUE
	}
	return this.value
}

// MustDestroy reports whether the holder of the handle is responsible
// for releasing it.
func (this Handle) MustDestroy() bool {
	return this.owned
}

func (this Handle) IsEmpty() bool {
	return this.value == nil
}

/*
Release gives an owned value back. Releasing the same owned value
twice panics; releasing a borrowed handle is a no-op.
*/
func (this Handle) Release() {
	if this.owned && this.value != nil {
		this.value.Recycle()
	}
}

/*
ExtractElement returns the element of container at position pos.
Scalars and elements that live in a borrowed document are returned
borrowed. Composite elements held in process memory are deep copied
and the copy is returned owned. A position out of range yields
MISSING.
*/
func ExtractElement(container Value, pos int) (Handle, errors.Error) {
	return ExtractElementTracked(container, pos, nil)
}

/*
ExtractElementTracked is ExtractElement charging any copy to session.
When the copy would exceed the session's quota no handle is returned.
*/
func ExtractElementTracked(container Value, pos int, session memory.MemorySession) (Handle, errors.Error) {
	if container == nil || container.Type() != ARRAY {
		actual := MISSING
		if container != nil {
			actual = container.Type()
		}
		return Handle{}, errors.NewTypeMismatchError("extract element", ARRAY.String(), actual.String())
	}

	elem, ok := container.Index(pos)
	if !ok {
		return Borrowed(MISSING_VALUE), nil
	}

	if elem.Storage() != HEAP {
		return Borrowed(elem), nil
	}
	switch elem.Type() {
	case ARRAY, OBJECT:
	default:
		return Borrowed(elem), nil
	}

	var size uint64
	if session != nil {
		size = elem.Size()
		if _, err := session.Track(size); err != nil {
			return Handle{}, err
		}
	}
	return Handle{value: newOwnedValue(elem.Copy(), session, size), owned: true}, nil
}
