//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package resolver

import (
	"testing"

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/logging"
)

func TestNewLogger(t *testing.T) {
	for _, uri := range []string{"golog", "golog:json", "clog", "null"} {
		l, err := NewLogger(uri, logging.WARN)
		if err != nil || l == nil {
			t.Errorf("%s: unexpected error %v", uri, err)
		}
	}

	_, err := NewLogger("syslog", logging.INFO)
	if err == nil || err.Code() != errors.E_ADMIN_UNKNOWN_LOGGER {
		t.Errorf("expected unknown logger error, got %v", err)
	}
}
