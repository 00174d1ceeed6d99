//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package logger_clog routes pipeline logging through
github.com/couchbase/clog, the logger shared by the other Couchbase
services, so that an embedding process gets a single log stream.
*/
package logger_clog

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/couchbase/clog"

	"github.com/couchbaselabs/rowpipe/logging"
)

const _DEBUG_KEY = "DEBUG"

type clogLogger struct {
	sync.RWMutex
	level logging.Level
}

func NewLogger(out io.Writer, lvl logging.Level) *clogLogger {
	if out != nil {
		clog.SetOutput(out)
	}
	rv := &clogLogger{}
	rv.SetLevel(lvl)
	return rv
}

func (this *clogLogger) Logp(level logging.Level, msg string, kv ...logging.Pair) {
	if len(kv) == 0 {
		this.Logf(level, "%s", msg)
		return
	}
	b := bytes.NewBufferString(msg)
	for _, p := range kv {
		fmt.Fprintf(b, " %s=%v", p.Name, p.Value)
	}
	this.Logf(level, "%s", b.String())
}

func (this *clogLogger) Logf(level logging.Level, format string, args ...interface{}) {
	if level > this.Level() {
		return
	}
	switch level {
	case logging.FATAL, logging.SEVERE, logging.ERROR:
		clog.Errorf(format, args...)
	case logging.WARN:
		clog.Warnf(format, args...)
	case logging.DEBUG, logging.TRACE:
		clog.To(_DEBUG_KEY, format, args...)
	default:
		clog.Printf(format, args...)
	}
}

func (this *clogLogger) Level() logging.Level {
	this.RLock()
	defer this.RUnlock()
	return this.level
}

func (this *clogLogger) SetLevel(level logging.Level) {
	this.Lock()
	this.level = level
	this.Unlock()
	if level >= logging.DEBUG {
		clog.EnableKey(_DEBUG_KEY)
	} else {
		clog.DisableKey(_DEBUG_KEY)
	}
}
