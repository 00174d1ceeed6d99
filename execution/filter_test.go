//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/couchbaselabs/rowpipe/value"
)

func TestFilter(t *testing.T) {
	ctx := NewContext(nil, nil, nil, nil)
	infos, err := NewFilterExecutorInfos(0, 1, NewRegisterSet())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	src := &suspendingFetcher{upstream: NewSingleRegisterValues(value.TRUE_VALUE, value.FALSE_VALUE,
		value.NewValue(3), value.NULL_VALUE, value.NewValue("y"))}
	block, err := NewFilterBlock(ctx, infos, src, 2)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	var got []string
	for i := 0; i < 50; i++ {
		state, b, err := block.FetchBlock(ctx, 2)
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if state == WAITING && b != nil {
			t.Fatalf("WAITING with a block")
		}
		for r := 0; r < blockSize(b); r++ {
			got = append(got, b.GetValue(r, 0).String())
		}
		b.Destroy()
		if state == DONE {
			break
		}
	}
	if diff := pretty.Compare(got, []string{"true", "3", `"y"`}); diff != "" {
		t.Errorf("Unexpected rows:\n%s", diff)
	}
}
