//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package logging

import (
	fmtpkg "fmt"
	"path"
	"runtime"
	"strings"
	"sync"
)

type Level int

const (
	NONE    = Level(iota) // Disable all logging
	FATAL                 // System is in severe error state and has to terminate
	SEVERE                // System is in severe error state and cannot recover reliably
	ERROR                 // System is in error state but can recover and continue reliably
	WARN                  // System approaching error state, or is in a correct but undesirable state
	INFO                  // System-level events and status, in correct states
	REQUEST               // Request-level events, with request-specific rlevel
	DEBUG                 // Debug
	TRACE                 // Trace detailed system execution, e.g. function entry / exit
)

func (level Level) String() string {
	if level < NONE || level > TRACE {
		return "UNKNOWN"
	}
	return _LEVEL_NAMES[level]
}

var _LEVEL_NAMES = []string{
	DEBUG:   "DEBUG",
	TRACE:   "TRACE",
	REQUEST: "REQUEST",
	INFO:    "INFO",
	WARN:    "WARN",
	ERROR:   "ERROR",
	SEVERE:  "SEVERE",
	FATAL:   "FATAL",
	NONE:    "NONE",
}

var _LEVEL_MAP = map[string]Level{
	"debug":   DEBUG,
	"trace":   TRACE,
	"request": REQUEST,
	"info":    INFO,
	"warn":    WARN,
	"error":   ERROR,
	"severe":  SEVERE,
	"fatal":   FATAL,
	"none":    NONE,
}

func ParseLevel(name string) (level Level, ok bool) {
	level, ok = _LEVEL_MAP[strings.ToLower(strings.TrimSpace(name))]
	return
}

// Pair supports logging of key-value pairs.  Keys are strings, and
// values are interface{}.
type Pair struct {
	Name  string
	Value interface{}
}

// Map allows key-value pairs to be specified using map literals or data
// structures.
type Map map[string]interface{}

// Logger provides a common interface for logging libraries
type Logger interface {
	// Key-value pairs
	Logp(level Level, msg string, kv ...Pair)

	// Printf style
	Logf(level Level, fmt string, args ...interface{})

	/*
		These APIs control the logging level
	*/
	SetLevel(Level) // Set the logging level
	Level() Level   // Get the current logging level
}

var logger Logger = nil
var curLevel Level = DEBUG // initially set to never skip

var loggerMutex sync.RWMutex

func skipLogging(level Level) bool {
	loggerMutex.RLock()
	defer loggerMutex.RUnlock()
	if logger == nil {
		return true
	}
	return level > curLevel
}

func SetLogger(newLogger Logger) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger = newLogger
	if logger == nil {
		curLevel = NONE
	} else {
		curLevel = newLogger.Level()
	}
}

func SetLevel(level Level) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	curLevel = level
	if logger != nil {
		logger.SetLevel(level)
	}
}

func LogLevel() Level {
	loggerMutex.RLock()
	defer loggerMutex.RUnlock()
	return curLevel
}

// we are using deferred unlocking here throughout as we have to do this
// for the anonymous function variants even though it would be more efficient
// to not do this for the printf style variants

func Loga(level Level, f func() string) {
	if skipLogging(level) {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logp(level, f())
}

func Logp(level Level, msg string, kv ...Pair) {
	if skipLogging(level) {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logp(level, msg, kv...)
}

func Debugp(msg string, kv ...Pair) {
	if skipLogging(DEBUG) {
		return
	}
	Logp(DEBUG, msg+callerSuffix(2), kv...)
}

func Tracep(msg string, kv ...Pair) {
	if skipLogging(TRACE) {
		return
	}
	Logp(TRACE, msg+callerSuffix(2), kv...)
}

func Infop(msg string, kv ...Pair) {
	Logp(INFO, msg, kv...)
}

func Warnp(msg string, kv ...Pair) {
	Logp(WARN, msg, kv...)
}

func Errorp(msg string, kv ...Pair) {
	Logp(ERROR, msg, kv...)
}

func Severep(msg string, kv ...Pair) {
	Logp(SEVERE, msg, kv...)
}

func Fatalp(msg string, kv ...Pair) {
	Logp(FATAL, msg, kv...)
}

// printf-style variants

func Logf(level Level, fmt string, args ...interface{}) {
	if skipLogging(level) {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logf(level, fmt, args...)
}

func Debugf(fmt string, args ...interface{}) {
	if skipLogging(DEBUG) {
		return
	}
	Logf(DEBUG, fmt+callerSuffix(2), args...)
}

func Tracef(fmt string, args ...interface{}) {
	if skipLogging(TRACE) {
		return
	}
	Logf(TRACE, fmt+callerSuffix(2), args...)
}

func Infof(fmt string, args ...interface{}) {
	Logf(INFO, fmt, args...)
}

func Warnf(fmt string, args ...interface{}) {
	Logf(WARN, fmt, args...)
}

func Errorf(fmt string, args ...interface{}) {
	Logf(ERROR, fmt, args...)
}

func Severef(fmt string, args ...interface{}) {
	Logf(SEVERE, fmt, args...)
}

func Fatalf(fmt string, args ...interface{}) {
	Logf(FATAL, fmt, args...)
}

// Stackf logs the message followed by the stack of the calling goroutine.
func Stackf(level Level, fmt string, args ...interface{}) {
	if skipLogging(level) {
		return
	}
	buf := make([]byte, 1<<16)
	n := runtime.Stack(buf, false)
	s := fmtpkg.Sprintf(fmt, args...)
	Logp(level, s, Pair{"stack", string(buf[:n])})
}

// " (function|file:line)" of the caller at the given depth
func callerSuffix(depth int) string {
	pc, fname, lineno, ok := runtime.Caller(depth)
	if !ok {
		return ""
	}
	fnc := runtime.FuncForPC(pc)
	if fnc == nil {
		return fmtpkg.Sprintf(" (%s:%d)", path.Base(fname), lineno)
	}
	n := fnc.Name()
	i := strings.LastIndexByte(n, '(')
	if i == -1 {
		i = strings.LastIndexByte(n, '.')
		if i != -1 {
			i++
		}
	}
	if i < 0 {
		i = 0
	}
	return fmtpkg.Sprintf(" (%s|%s:%d)", n[i:], path.Base(fname), lineno)
}

type nullLogger struct {
}

func (this *nullLogger) Logp(level Level, msg string, kv ...Pair) {
}

func (this *nullLogger) Logf(level Level, fmt string, args ...interface{}) {
}

func (this *nullLogger) SetLevel(Level) {
}

func (this *nullLogger) Level() Level {
	return NONE
}

var NULL_LOG Logger = &nullLogger{}
