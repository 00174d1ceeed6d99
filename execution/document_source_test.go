//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"context"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/couchbaselabs/rowpipe/datastore"
	"github.com/couchbaselabs/rowpipe/datastore/memstore"
	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/value"
)

func newTransaction(t *testing.T) (datastore.Keyspace, datastore.Transaction) {
	t.Helper()
	ks, err := memstore.NewKeyspace("docs", 4, "snappy")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	_, err = ks.Upsert(datastore.Pairs{
		{Key: "k1", Value: value.NewValue(map[string]interface{}{"tags": []interface{}{"a", "b"}})},
		{Key: "k2", Value: value.NewValue(map[string]interface{}{"tags": []interface{}{}})},
		{Key: "k3", Value: value.NewValue([]interface{}{1, []interface{}{2}})},
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	return ks, datastore.NewTransaction(ks, 2)
}

func TestDocumentSource(t *testing.T) {
	ks, trx := newTransaction(t)
	defer ks.Close()
	defer trx.Release()

	ctx := NewContext(context.Background(), trx, nil, nil)
	src, err := NewDocumentSource([]string{"k1", "missing", "k2", "k3"}, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	out := &collector{}
	p := NewPipeline(ctx, src, out, 2)
	drive(t, p)

	expected := []string{`{"tags":["a","b"]}`, `{"tags":[]}`, `[1,[2]]`}
	if diff := pretty.Compare(out.column(0), expected); diff != "" {
		t.Errorf("Unexpected documents:\n%s", diff)
	}
	if out.done != 1 || len(out.fatal) != 0 {
		t.Errorf("Unexpected outcome: done %d, fatal %v", out.done, out.fatal)
	}
}

func TestEnumerateDocuments(t *testing.T) {
	ks, trx := newTransaction(t)
	defer ks.Close()
	defer trx.Release()

	base := value.LiveAllocations()
	ctx := NewContext(context.Background(), trx, nil, nil)
	src, _ := NewDocumentSource([]string{"k3"}, 0, 2)
	enum, err := NewEnumerateListBlock(ctx, enumerateInfos(t), src, 10)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	out := &collector{}
	drive(t, NewPipeline(ctx, enum, out, 10))

	if diff := pretty.Compare(out.column(2), []string{"1", "[2]"}); diff != "" {
		t.Errorf("Unexpected elements:\n%s", diff)
	}
	if value.LiveAllocations() != base {
		t.Errorf("Leaked %d owned values", value.LiveAllocations()-base)
	}
}

func TestDocumentSourceWithoutTransaction(t *testing.T) {
	ctx := NewContext(context.Background(), nil, nil, nil)
	src, _ := NewDocumentSource([]string{"k1"}, 0, 1)
	out := &collector{}
	drive(t, NewPipeline(ctx, src, out, 10))
	if len(out.fatal) != 1 || out.fatal[0].Code() != errors.E_EXECUTION_PARAMETER {
		t.Errorf("Expected a parameter error, got %v", out.fatal)
	}
}

func TestDocumentSourceLayout(t *testing.T) {
	if _, err := NewDocumentSource([]string{"k1"}, 1, 1); err == nil {
		t.Errorf("Expected a layout error")
	}
}
