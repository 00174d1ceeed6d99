//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package resolver

import (
	"os"
	"strings"

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/logging"
	"github.com/couchbaselabs/rowpipe/logging/logger_clog"
	"github.com/couchbaselabs/rowpipe/logging/logger_golog"
)

// NewLogger returns the logger named by uri: "golog", "golog:json",
// "clog" or "null". The logger is not installed.
func NewLogger(uri string, level logging.Level) (logging.Logger, errors.Error) {
	switch {
	case uri == "golog:json":
		return logger_golog.NewLogger(os.Stderr, level, true), nil
	case strings.HasPrefix(uri, "golog"):
		return logger_golog.NewLogger(os.Stderr, level, false), nil
	case uri == "clog":
		return logger_clog.NewLogger(os.Stderr, level), nil
	case uri == "null":
		return logging.NULL_LOG, nil
	}
	return nil, errors.NewAdminUnknownLoggerError(uri)
}

func init() {
	logger := logger_golog.NewLogger(os.Stderr, logging.INFO, false)
	logging.SetLogger(logger)
}
