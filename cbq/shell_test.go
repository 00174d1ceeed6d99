//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kylelemons/godebug/diff"

	"github.com/couchbaselabs/rowpipe/datastore/memstore"
	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/scheduler"
	"github.com/couchbaselabs/rowpipe/settings"
)

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()
	config := settings.DefaultConfig()
	config.Threads = 2
	config.Backend = scheduler.GOROUTINE_BACKEND
	sched, err := scheduler.New(config)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	sched.Start()
	ks, err := memstore.NewKeyspace("test", 4, "s2")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sched.Shutdown(ctx)
		ks.Close()
	})

	out := &bytes.Buffer{}
	return newShell(sched, ks, 3, out), out
}

func run(t *testing.T, sh *shell, out *bytes.Buffer, line, expected string) {
	t.Helper()
	out.Reset()
	if err := sh.execute(line); err != nil {
		t.Fatalf("%s: unexpected error %v", line, err)
	}
	if out.String() != expected {
		t.Errorf("%s: unexpected output:\n%s", line, diff.Diff(expected, out.String()))
	}
}

func TestEnumerateLine(t *testing.T) {
	sh, out := newTestShell(t)
	run(t, sh, out, `[[1,2],[],["x",{"a":[3]}]]`, `row | element
----+----------
0   | 1
0   | 2
2   | "x"
2   | {"a":[3]}
(4 rows)
`)
}

func TestFilterCommand(t *testing.T) {
	sh, out := newTestShell(t)
	run(t, sh, out, `\filter [[0,1,false,"",true],[null,"y"]]`, `row | element
----+--------
0   | 1
0   | true
1   | "y"
(3 rows)
`)
}

func TestDocuments(t *testing.T) {
	sh, out := newTestShell(t)

	out.Reset()
	if err := sh.execute(`\load k1 {"tags":["red","green"]}`); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !strings.HasPrefix(out.String(), "loaded k1 (") {
		t.Errorf("Unexpected output %q", out.String())
	}
	sh.execute(`\load k2 ["blue"]`)

	run(t, sh, out, `\count`, "2 documents\n")
	run(t, sh, out, `\get k2 nope k1`, `document
------------------------
["blue"]
{"tags":["red","green"]}
(2 rows)
`)
	run(t, sh, out, `\unnest k2`, `element
-------
"blue"
(1 rows)
`)

	// a document that is not an array stops the pipeline
	out.Reset()
	err := sh.execute(`\unnest k1`)
	if err == nil || err.Code() != errors.E_ARRAY_EXPECTED {
		t.Errorf("Expected an array error, got %v", err)
	}

	sh.execute(`\delete k1 k2`)
	run(t, sh, out, `\count`, "0 documents\n")
}

func TestErrors(t *testing.T) {
	sh, _ := newTestShell(t)

	cases := []struct {
		line string
		code errors.ErrorCode
	}{
		{`\bogus`, errors.E_EXECUTION_PARAMETER},
		{`{"not":"an array"}`, errors.E_EXECUTION_PARAMETER},
		{`[1,[2]]`, errors.E_ARRAY_EXPECTED},
		{`\load k1 {broken`, errors.E_INVALID_VALUE},
		{`\get`, errors.E_EXECUTION_PARAMETER},
	}
	for _, c := range cases {
		err := sh.execute(c.line)
		if err == nil || err.Code() != c.code {
			t.Errorf("%s: expected code %d, got %v", c.line, c.code, err)
		}
	}
	if err := sh.execute(`\quit`); err != errQuit {
		t.Errorf("Expected quit, got %v", err)
	}
}

func TestRenderTable(t *testing.T) {
	out := &bytes.Buffer{}
	renderTable(out, []string{"名前", "v"}, [][]string{{"ab", "0123456789abcdef"}}, 20)
	expected := `名前 | v
-----+--------------
ab   | 0123456789...
(1 rows)
`
	if out.String() != expected {
		t.Errorf("Unexpected table:\n%s", diff.Diff(expected, out.String()))
	}
}
