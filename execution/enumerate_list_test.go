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

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/value"
)

// produce drives an executor directly, advancing every produced row.
func produce(t *testing.T, exec Executor, out *OutputRow, maxCalls int) ([]ExecutionState, errors.Error) {
	t.Helper()
	var states []ExecutionState
	for i := 0; i < maxCalls; i++ {
		state, err := exec.ProduceRow(out)
		states = append(states, state)
		if err != nil {
			return states, err
		}
		if out.Produced() {
			if err := out.AdvanceRow(); err != nil {
				t.Fatalf("unexpected error %v", err)
			}
		}
		if state == DONE {
			return states, nil
		}
	}
	t.Fatalf("executor did not finish in %d calls", maxCalls)
	return states, nil
}

func TestEnumerationCompleteness(t *testing.T) {
	infos := enumerateInfos(t)
	ctx := NewContext(nil, nil, nil, nil)
	upstream := listRows(array(1, 2, 3), array(), array("a", "b"))
	fetcher := NewSingleRowFetcher(ctx, upstream, 2, infos.RegistersToClear())
	exec := NewEnumerateListExecutor(ctx, infos, fetcher)

	out := NewItemBlock(10, infos.NumberOfOutputRegisters())
	defer out.Destroy()
	row := NewOutputRow(out, infos.ExecutorInfos)

	if _, err := produce(t, exec, row, 20); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if row.NumRowsWritten() != 5 {
		t.Fatalf("Expected 5 rows, got %d", row.NumRowsWritten())
	}

	var elems, tags []string
	for i := 0; i < row.NumRowsWritten(); i++ {
		elems = append(elems, out.GetValue(i, 2).String())
		tags = append(tags, out.GetValue(i, 1).String())
		if out.GetValue(i, 0).Type() != value.MISSING {
			t.Errorf("row %d: list register not cleared", i)
		}
	}
	if diff := pretty.Compare(elems, []string{"1", "2", "3", `"a"`, `"b"`}); diff != "" {
		t.Errorf("Unexpected elements:\n%s", diff)
	}
	if diff := pretty.Compare(tags, []string{"0", "0", "0", "2", "2"}); diff != "" {
		t.Errorf("Unexpected kept registers:\n%s", diff)
	}
}

func TestEnumerateIdempotentExhaustion(t *testing.T) {
	infos := enumerateInfos(t)
	ctx := NewContext(nil, nil, nil, nil)
	fetcher := NewSingleRowFetcher(ctx, listRows(array(1)), 10, infos.RegistersToClear())
	exec := NewEnumerateListExecutor(ctx, infos, fetcher)

	out := NewItemBlock(10, infos.NumberOfOutputRegisters())
	defer out.Destroy()
	row := NewOutputRow(out, infos.ExecutorInfos)

	states, _ := produce(t, exec, row, 10)
	if diff := pretty.Compare(states, []ExecutionState{DONE}); diff != "" {
		t.Errorf("Expected the only row with DONE:\n%s", diff)
	}
	for i := 0; i < 3; i++ {
		state, err := exec.ProduceRow(row)
		if state != DONE || err != nil || row.NumWrittenInRow() != 0 {
			t.Errorf("call after DONE: %s %v", state, err)
		}
	}
	if row.NumRowsWritten() != 1 {
		t.Errorf("Expected 1 row, got %d", row.NumRowsWritten())
	}
}

func TestEnumerateArrayExpected(t *testing.T) {
	infos := enumerateInfos(t)
	ctx := NewContext(nil, nil, nil, nil)
	fetcher := NewSingleRowFetcher(ctx, listRows(value.NewValue(42)), 10, infos.RegistersToClear())
	exec := NewEnumerateListExecutor(ctx, infos, fetcher)

	out := NewItemBlock(10, infos.NumberOfOutputRegisters())
	defer out.Destroy()
	row := NewOutputRow(out, infos.ExecutorInfos)

	state, err := exec.ProduceRow(row)
	if err == nil || err.Code() != errors.E_ARRAY_EXPECTED {
		t.Fatalf("Expected array expected error, got %v", err)
	}
	if !err.ContainsText("number") {
		t.Errorf("Error does not name the actual type: %v", err)
	}
	if state != DONE || row.NumWrittenInRow() != 0 || row.NumRowsWritten() != 0 {
		t.Errorf("Rows written for a failed input row")
	}
	if state, err = exec.ProduceRow(row); state != DONE || err != nil {
		t.Errorf("Expected DONE after failure, got %s %v", state, err)
	}
}

func TestEnumerateNoLostRowsUnderSuspension(t *testing.T) {
	lists := []value.Value{array(1, 2), array(3), array(), array(4, 5, 6)}

	run := func(suspend bool) ([]string, int) {
		infos := enumerateInfos(t)
		ctx := NewContext(nil, nil, nil, nil)
		var upstream BlockFetcher = listRows(lists...)
		sf := &suspendingFetcher{upstream: upstream}
		if suspend {
			upstream = sf
		}
		fetcher := NewSingleRowFetcher(ctx, upstream, 1, infos.RegistersToClear())
		exec := NewEnumerateListExecutor(ctx, infos, fetcher)

		out := NewItemBlock(10, infos.NumberOfOutputRegisters())
		defer out.Destroy()
		row := NewOutputRow(out, infos.ExecutorInfos)
		states, err := produce(t, exec, row, 50)
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		waits := 0
		for _, s := range states {
			if s == WAITING {
				waits++
			}
		}
		var rv []string
		for i := 0; i < row.NumRowsWritten(); i++ {
			rv = append(rv, out.GetValue(i, 2).String())
		}
		return rv, waits
	}

	plain, _ := run(false)
	suspended, waits := run(true)
	if waits == 0 {
		t.Fatalf("Expected the executor to wait")
	}
	if diff := pretty.Compare(suspended, plain); diff != "" {
		t.Errorf("Rows differ under suspension:\n%s", diff)
	}
	if len(plain) != 6 {
		t.Errorf("Expected 6 rows, got %v", plain)
	}
}

func TestEnumerateOwnership(t *testing.T) {
	base := value.LiveAllocations()
	infos := enumerateInfos(t)
	ctx := NewContext(nil, nil, nil, nil)

	doc := value.NewParsedValue([]byte(`{"d":1}`))
	upstream := listRows(array(array(1), map[string]interface{}{"a": 1}, doc, 7))
	block, err := NewEnumerateListBlock(ctx, infos, upstream, 10)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	state, out, err := block.FetchBlock(ctx, 10)
	if err != nil || state != DONE || out.Size() != 4 {
		t.Fatalf("Unexpected result %s %v", state, err)
	}

	owned := []bool{true, true, false, false}
	for i, o := range owned {
		if out.cell(i, 2).owned != o {
			t.Errorf("row %d: expected owned %v", i, o)
		}
	}
	if value.LiveAllocations() != base+2 {
		t.Errorf("Expected 2 owned copies, have %d", value.LiveAllocations()-base)
	}
	out.Destroy()
	if value.LiveAllocations() != base {
		t.Errorf("Owned copies leaked")
	}
	if doc.String() != `{"d":1}` {
		t.Errorf("Borrowed document modified: %v", doc)
	}
}
