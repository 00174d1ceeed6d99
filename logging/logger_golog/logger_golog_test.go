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
	"strings"
	"testing"

	json "github.com/couchbase/go_json"

	"github.com/couchbaselabs/rowpipe/logging"
)

func TestTextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, logging.INFO, false)

	logger.Logp(logging.INFO, "pipeline started", logging.Pair{Name: "threads", Value: 4}, logging.Pair{Name: "backend", Value: "epoll"})
	logger.Logf(logging.DEBUG, "this is skipped %d", 1)

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one entry, got %q", out)
	}
	for _, want := range []string{"_level=INFO", "_msg=pipeline started", "backend=epoll threads=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestJsonFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, logging.DEBUG, true)

	logger.Logf(logging.WARN, "task %s requeued", "abc")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unexpected error %v decoding %q", err, buf.String())
	}
	if entry[_MSG] != "task abc requeued" || entry[_LEVEL] != "WARN" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, logging.INFO, false)
	logging.SetLogger(logger)
	defer logging.SetLogger(nil)

	logging.Debugf("not logged")
	if buf.Len() != 0 {
		t.Errorf("debug entry logged at INFO: %q", buf.String())
	}

	logging.SetLevel(logging.DEBUG)
	logging.Debugf("logged")
	if !strings.Contains(buf.String(), "_msg=logged (TestSetLevel|logger_golog_test.go:") {
		t.Errorf("expected caller information in %q", buf.String())
	}
}
