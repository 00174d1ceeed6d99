//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	_COLUMN_SEP   = " | "
	_HEADER_SEP   = "-+-"
	_MIN_COLUMN   = 8
	_ELLIPSIS     = "..."
	_ROWS_SUMMARY = "(%d rows)\n"
)

/*
renderTable writes rows under headers, aligned on display width so
that wide characters line up. With width > 0 the widest columns are
truncated until a line fits.
*/
func renderTable(w io.Writer, headers []string, rows [][]string, width int) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if cw := runewidth.StringWidth(c); i < len(widths) && cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	if width > 0 {
		fit(widths, width-len(_COLUMN_SEP)*(len(widths)-1))
	}

	line(w, headers, widths)
	seps := make([]string, len(widths))
	for i, cw := range widths {
		seps[i] = strings.Repeat("-", cw)
	}
	fmt.Fprintln(w, strings.Join(seps, _HEADER_SEP))
	for _, r := range rows {
		line(w, r, widths)
	}
	fmt.Fprintf(w, _ROWS_SUMMARY, len(rows))
}

// shrink the widest column until the total fits or nothing can shrink
func fit(widths []int, total int) {
	for {
		sum, widest := 0, 0
		for i, cw := range widths {
			sum += cw
			if cw > widths[widest] {
				widest = i
			}
		}
		if sum <= total || widths[widest] <= _MIN_COLUMN {
			return
		}
		widths[widest]--
	}
}

func line(w io.Writer, cells []string, widths []int) {
	out := make([]string, len(widths))
	for i, cw := range widths {
		c := ""
		if i < len(cells) {
			c = cells[i]
		}
		if runewidth.StringWidth(c) > cw {
			c = runewidth.Truncate(c, cw, _ELLIPSIS)
		}
		out[i] = runewidth.FillRight(c, cw)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(out, _COLUMN_SEP), " "))
}
