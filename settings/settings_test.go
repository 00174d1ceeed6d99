//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"

	"github.com/couchbaselabs/rowpipe/errors"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	err := os.WriteFile(path, []byte(`
threads: 3
backend: goroutine
time-slice: 5ms
drain-timeout: 2s
memory-quota: 64
log-level: debug
`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	c, e := Load(path)
	if e != nil {
		t.Fatalf("unexpected error %v", e)
	}

	expected := DefaultConfig()
	expected.Threads = 3
	expected.Backend = "goroutine"
	expected.TimeSlice = Duration(5 * time.Millisecond)
	expected.DrainTimeout = Duration(2 * time.Second)
	expected.MemoryQuota = 64
	expected.LogLevel = "debug"
	if diff := pretty.Compare(c, expected); diff != "" {
		t.Errorf("Unexpected configuration:\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Errorf("Expected an error for a missing file")
	}

	path := filepath.Join(dir, "bad.yaml")
	os.WriteFile(path, []byte("log-level: chatty\n"), 0600)
	_, err := Load(path)
	if err == nil || err.Code() != errors.E_ADMIN_INVALID_SETTING {
		t.Errorf("Expected an invalid setting, got %v", err)
	}
}

func TestValidateDefaults(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if c.Threads <= 0 || c.Backend != DEF_BACKEND || c.MaxSteps != DEF_MAX_STEPS ||
		time.Duration(c.TimeSlice) != DEF_TIME_SLICE {
		t.Errorf("Defaults not applied: %v", c)
	}

	c = Config{Threads: -1}
	if err := c.Validate(); err == nil {
		t.Errorf("Expected negative threads to be refused")
	}
}
