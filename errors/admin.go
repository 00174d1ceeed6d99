//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package errors

import (
	"fmt"
)

func NewAdminSettingError(setting string, v interface{}, e error) Error {
	return &err{level: EXCEPTION, ICode: E_ADMIN_INVALID_SETTING, IKey: "admin.setting_type_error", ICause: e,
		InternalMsg:    fmt.Sprintf("Invalid value %v for setting %s", v, setting),
		InternalCaller: CallerN(1)}
}

func NewAdminUnknownLoggerError(uri string) Error {
	return &err{level: EXCEPTION, ICode: E_ADMIN_UNKNOWN_LOGGER, IKey: "admin.logger.unknown",
		InternalMsg:    fmt.Sprintf("Invalid logger: %s", uri),
		InternalCaller: CallerN(1)}
}
