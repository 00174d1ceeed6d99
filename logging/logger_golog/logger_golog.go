//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package logger_golog

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	json "github.com/couchbase/go_json"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/couchbaselabs/rowpipe/logging"
)

type goLogger struct {
	sync.RWMutex
	logger         *log.Logger
	level          logging.Level
	entryFormatter formatter
}

const (
	_LEVEL = "_level"
	_MSG   = "_msg"
	_TIME  = "_time"
)

func NewLogger(out io.Writer, lvl logging.Level, jsonLogging bool) *goLogger {
	logger := &goLogger{
		logger: log.New(out, "", 0),
		level:  lvl,
	}
	if jsonLogging {
		logger.entryFormatter = &jsonFormatter{}
	} else {
		logger.entryFormatter = &textFormatter{}
	}
	return logger
}

func (gl *goLogger) Logp(level logging.Level, msg string, kv ...logging.Pair) {
	if gl.logger == nil || level > gl.Level() {
		return
	}
	e := newLogEntry(msg, level)
	copyPairs(e, kv)
	gl.log(e)
}

func (gl *goLogger) Logf(level logging.Level, format string, args ...interface{}) {
	if gl.logger == nil || level > gl.Level() {
		return
	}
	e := newLogEntry(fmt.Sprintf(format, args...), level)
	gl.log(e)
}

func (gl *goLogger) Level() logging.Level {
	gl.RLock()
	defer gl.RUnlock()
	return gl.level
}

func (gl *goLogger) SetLevel(level logging.Level) {
	gl.Lock()
	gl.level = level
	gl.Unlock()
}

func (gl *goLogger) log(newEntry *logEntry) {
	s := gl.entryFormatter.format(newEntry)
	gl.logger.Print(s)
}

type logEntry struct {
	Time    string
	Level   logging.Level
	Message string
	Data    logging.Map
}

func newLogEntry(msg string, level logging.Level) *logEntry {
	return &logEntry{
		Time:    time.Now().Format("2006-01-02T15:04:05.000-07:00"), // time.RFC3339 with milliseconds
		Level:   level,
		Message: msg,
	}
}

func copyPairs(newEntry *logEntry, pairs []logging.Pair) {
	newEntry.Data = make(logging.Map, len(pairs))
	for _, p := range pairs {
		newEntry.Data[p.Name] = p.Value
	}
}

type formatter interface {
	format(*logEntry) string
}

type textFormatter struct {
}

func (*textFormatter) format(newEntry *logEntry) string {
	b := &bytes.Buffer{}
	appendKeyValue(b, _TIME, newEntry.Time)
	appendKeyValue(b, _LEVEL, newEntry.Level.String())
	appendKeyValue(b, _MSG, newEntry.Message)

	// stable output, so that entries can be compared
	keys := maps.Keys(newEntry.Data)
	slices.Sort(keys)
	for _, key := range keys {
		appendKeyValue(b, key, newEntry.Data[key])
	}
	b.WriteByte('\n')
	return b.String()
}

func appendKeyValue(b *bytes.Buffer, key, value interface{}) {
	if _, ok := value.(string); ok {
		fmt.Fprintf(b, "%v=%s ", key, value)
	} else {
		fmt.Fprintf(b, "%v=%v ", key, value)
	}
}

type jsonFormatter struct {
}

func (*jsonFormatter) format(newEntry *logEntry) string {
	if newEntry.Data == nil {
		newEntry.Data = make(logging.Map, 3)
	}
	newEntry.Data[_TIME] = newEntry.Time
	newEntry.Data[_LEVEL] = newEntry.Level.String()
	newEntry.Data[_MSG] = newEntry.Message
	serialized, _ := json.Marshal(newEntry.Data)
	return string(append(serialized, '\n'))
}
