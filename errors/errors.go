//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package errors provides the errors reported by the row pipeline. Every
error carries a numeric code, a translation key, an optional internal
cause and the location that raised it, so that a request can report a
failure exactly once to its output.

Codes are grouped by area:

	2000-2999  administration and settings
	5000-5999  execution and values
	6000-6999  scheduler
	9999       not implemented
	12000-     datastore
*/
package errors

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"path"
	"runtime"
	"strings"
)

const (
	EXCEPTION = iota
	WARNING
)

type ErrorCode int32

type Error interface {
	error
	json.Marshaler
	Code() ErrorCode
	TranslationKey() string
	GetICause() error
	Level() int
	IsFatal() bool
	Object() map[string]interface{}

	// Retry reports whether resubmitting the request might succeed.
	Retry() bool

	HasICause(ErrorCode) bool
	ContainsText(text string) bool
}

/*
NewError wraps e. An Error is returned as is, anything else becomes an
internal error with e as its cause.
*/
func NewError(e error, internalMsg string) Error {
	var rv Error
	if goerrors.As(e, &rv) && internalMsg == "" {
		return rv
	}
	return &err{level: EXCEPTION, ICode: E_INTERNAL, IKey: "internal.error", ICause: e,
		InternalMsg: internalMsg, InternalCaller: CallerN(1)}
}

// only put errors in the reserved range here (7000-9999)
func NewNotImplemented(feature string) Error {
	return &err{level: EXCEPTION, ICode: E_NOT_IMPLEMENTED, IKey: "not_implemented",
		InternalMsg: fmt.Sprintf("Not available: %v", feature), InternalCaller: CallerN(1)}
}

// CodeOf returns the code of the first Error in the chain of e, 0 if none.
func CodeOf(e error) ErrorCode {
	var rv Error
	if goerrors.As(e, &rv) {
		return rv.Code()
	}
	return 0
}

type err struct {
	ICode          ErrorCode
	IKey           string
	ICause         error
	InternalMsg    string
	InternalCaller string
	level          int
	retry          bool
}

func (e *err) Error() string {
	switch {
	default:
		return "Unspecified error."
	case e.InternalMsg != "" && e.ICause != nil:
		return e.InternalMsg + " - cause: " + e.ICause.Error()
	case e.InternalMsg != "":
		return e.InternalMsg
	case e.ICause != nil:
		return e.ICause.Error()
	}
}

func (e *err) Object() map[string]interface{} {
	m := map[string]interface{}{
		"code":    int32(e.ICode),
		"key":     e.IKey,
		"message": e.InternalMsg,
	}
	if e.ICause != nil {
		if o, ok := e.ICause.(interface{ Object() map[string]interface{} }); ok {
			m["icause"] = o.Object()
		} else {
			m["icause"] = e.ICause.Error()
		}
	}
	if e.retry {
		m["retry"] = true
	}
	return m
}

func (e *err) MarshalJSON() ([]byte, error) {
	m := e.Object()
	if e.InternalCaller != "" && !strings.HasPrefix(e.InternalCaller, "unknown:") {
		m["caller"] = e.InternalCaller
	}
	return json.Marshal(m)
}

func (e *err) Level() int {
	return e.level
}

func (e *err) IsFatal() bool {
	return e.level == EXCEPTION
}

func (e *err) Code() ErrorCode {
	return e.ICode
}

func (e *err) TranslationKey() string {
	return e.IKey
}

func (e *err) GetICause() error {
	return e.ICause
}

func (e *err) Retry() bool {
	return e.retry
}

// Unwrap lets errors.Is and errors.As see the internal cause.
func (e *err) Unwrap() error {
	return e.ICause
}

func (e *err) HasICause(code ErrorCode) bool {
	for c := e.ICause; c != nil; c = goerrors.Unwrap(c) {
		if ce, ok := c.(Error); ok && ce.Code() == code {
			return true
		}
	}
	return false
}

// search the message and every nested cause for text
func (e *err) ContainsText(text string) bool {
	for c := error(e); c != nil; c = goerrors.Unwrap(c) {
		if strings.Contains(c.Error(), text) {
			return true
		}
	}
	return false
}

// Returns "FileName:LineNum" of the Nth caller on the call stack,
// where level of 0 is the caller of CallerN.
func CallerN(level int) string {
	_, fname, lineno, ok := runtime.Caller(1 + level)
	if !ok {
		return "unknown:0"
	}
	return fmt.Sprintf("%s:%d",
		strings.Split(path.Base(fname), ".")[0], lineno)
}
