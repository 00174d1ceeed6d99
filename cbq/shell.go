//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/couchbaselabs/rowpipe/datastore"
	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/execution"
	"github.com/couchbaselabs/rowpipe/memory"
	"github.com/couchbaselabs/rowpipe/scheduler"
	"github.com/couchbaselabs/rowpipe/value"
)

const _MAX_LOOKUPS = 16

var errQuit = errors.NewError(nil, "quit")

type shell struct {
	sched    *scheduler.Scheduler
	keyspace datastore.Keyspace
	batch    int
	width    int
	out      io.Writer
}

func newShell(sched *scheduler.Scheduler, keyspace datastore.Keyspace, batch int, out io.Writer) *shell {
	return &shell{
		sched:    sched,
		keyspace: keyspace,
		batch:    batch,
		out:      out,
	}
}

type command struct {
	args string
	help string
	run  func(this *shell, args string) errors.Error
}

var _COMMANDS map[string]*command

func init() {
	_COMMANDS = map[string]*command{
		"\\help":     {"", "show this text", (*shell).help},
		"\\quit":     {"", "leave the shell", (*shell).quit},
		"\\backends": {"", "list the available I/O backends", (*shell).backends},
		"\\load":     {"key json", "store a document", (*shell).load},
		"\\delete":   {"key...", "remove documents", (*shell).remove},
		"\\count":    {"", "count the documents", (*shell).count},
		"\\get":      {"key...", "fetch documents", (*shell).get},
		"\\unnest":   {"key...", "enumerate the arrays held by documents", (*shell).unnest},
		"\\filter":   {"[list...]", "enumerate lists, keeping truthy elements", (*shell).filter},
		"\\stats":    {"", "show scheduler and memory statistics", (*shell).stats},
	}
}

/*
execute runs one command line. A line that is not a command is a JSON
array of lists; each list is an input row and is enumerated.
*/
func (this *shell) execute(line string) errors.Error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "\\") {
		return this.enumerate(line)
	}

	name, args, _ := strings.Cut(line, " ")
	cmd, ok := _COMMANDS[strings.ToLower(name)]
	if !ok {
		return errors.NewExecutionParameterError(fmt.Sprintf("unknown command %s, try \\help", name))
	}
	return cmd.run(this, strings.TrimSpace(args))
}

func (this *shell) help(args string) errors.Error {
	names := maps.Keys(_COMMANDS)
	slices.Sort(names)
	rows := [][]string{{"[list...]", "enumerate lists"}}
	for _, n := range names {
		c := _COMMANDS[n]
		rows = append(rows, []string{strings.TrimSpace(n + " " + c.args), c.help})
	}
	renderTable(this.out, []string{"command", "description"}, rows, this.width)
	return nil
}

func (this *shell) quit(args string) errors.Error {
	return errQuit
}

func (this *shell) backends(args string) errors.Error {
	rows := [][]string{}
	for _, b := range scheduler.Backends() {
		active := ""
		if b == this.sched.Backend() {
			active = "*"
		}
		rows = append(rows, []string{b, active})
	}
	renderTable(this.out, []string{"backend", "active"}, rows, this.width)
	return nil
}

func (this *shell) load(args string) errors.Error {
	key, doc, _ := strings.Cut(args, " ")
	doc = strings.TrimSpace(doc)
	if key == "" || doc == "" {
		return errors.NewExecutionParameterError("usage: \\load key json")
	}
	val := value.NewParsedValue([]byte(doc))
	if val.Type() == value.BINARY {
		return errors.NewInvalidValueError(fmt.Sprintf("invalid JSON document %s", doc))
	}
	if _, err := this.keyspace.Upsert(datastore.Pairs{{Key: key, Value: val}}); err != nil {
		return err
	}
	etag, err := this.keyspace.Etag(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(this.out, "loaded %s (%s)\n", key, etag)
	return nil
}

func (this *shell) remove(args string) errors.Error {
	keys := strings.Fields(args)
	if len(keys) == 0 {
		return errors.NewExecutionParameterError("usage: \\delete key...")
	}
	return this.keyspace.Delete(keys)
}

func (this *shell) count(args string) errors.Error {
	n, err := this.keyspace.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(this.out, "%d documents\n", n)
	return nil
}

func (this *shell) stats(args string) errors.Error {
	s := this.sched.Stats()
	rows := [][]string{
		{"scheduled", fmt.Sprint(s.Scheduled)},
		{"completed", fmt.Sprint(s.Completed)},
		{"failed", fmt.Sprint(s.Failed)},
		{"cancelled", fmt.Sprint(s.Cancelled)},
		{"requeued", fmt.Sprint(s.Requeued)},
		{"waits", fmt.Sprint(s.Waits)},
		{"pending", fmt.Sprint(this.sched.Pending())},
		{"owned values", fmt.Sprint(value.LiveAllocations())},
		{"memory allocated", fmt.Sprint(memory.AllocatedMemory())},
	}
	renderTable(this.out, []string{"statistic", "value"}, rows, this.width)
	return nil
}

func (this *shell) get(args string) errors.Error {
	keys := strings.Fields(args)
	if len(keys) == 0 {
		return errors.NewExecutionParameterError("usage: \\get key...")
	}
	return this.run([]column{{"document", 0}}, func(ctx *execution.Context) (execution.BlockFetcher, errors.Error) {
		return execution.NewDocumentSource(keys, 0, 1)
	})
}

func (this *shell) unnest(args string) errors.Error {
	keys := strings.Fields(args)
	if len(keys) == 0 {
		return errors.NewExecutionParameterError("usage: \\unnest key...")
	}
	return this.run([]column{{"element", 2}}, func(ctx *execution.Context) (execution.BlockFetcher, errors.Error) {
		src, err := execution.NewDocumentSource(keys, 0, 2)
		if err != nil {
			return nil, err
		}
		return this.enumerateBlock(ctx, src)
	})
}

func (this *shell) enumerate(line string) errors.Error {
	src, err := listRows(line)
	if err != nil {
		return err
	}
	return this.run([]column{{"row", 1}, {"element", 2}}, func(ctx *execution.Context) (execution.BlockFetcher, errors.Error) {
		return this.enumerateBlock(ctx, src)
	})
}

func (this *shell) filter(args string) errors.Error {
	src, err := listRows(args)
	if err != nil {
		return err
	}
	return this.run([]column{{"row", 1}, {"element", 2}}, func(ctx *execution.Context) (execution.BlockFetcher, errors.Error) {
		enum, err := this.enumerateBlock(ctx, src)
		if err != nil {
			return nil, err
		}
		infos, err := execution.NewFilterExecutorInfos(2, 3, execution.NewRegisterSet())
		if err != nil {
			return nil, err
		}
		return execution.NewFilterBlock(ctx, infos, enum, this.batch)
	})
}

// register 0 holds the list, 1 the row number and 2 the element
func (this *shell) enumerateBlock(ctx *execution.Context, src execution.BlockFetcher) (execution.BlockFetcher, errors.Error) {
	infos, err := execution.NewEnumerateListExecutorInfos(0, 2, 2, 3,
		execution.NewRegisterSet(0), ctx.Transaction())
	if err != nil {
		return nil, err
	}
	return execution.NewEnumerateListBlock(ctx, infos, src, this.batch)
}

func listRows(line string) (execution.BlockFetcher, errors.Error) {
	val := value.NewParsedValue([]byte(line))
	if val.Type() != value.ARRAY {
		return nil, errors.NewExecutionParameterError(
			"expected a JSON array of lists, or a command; try \\help")
	}
	rows := make([][]value.Value, val.Len())
	for i := range rows {
		elem, _ := val.Index(i)
		rows[i] = []value.Value{elem, value.NewValue(i)}
	}
	return execution.NewValuesBlock(2, rows...)
}

type column struct {
	name string
	reg  execution.RegisterId
}

func (this *shell) run(columns []column,
	build func(ctx *execution.Context) (execution.BlockFetcher, errors.Error)) errors.Error {

	trx := datastore.NewTransaction(this.keyspace, _MAX_LOOKUPS)
	defer trx.Release()

	ctx := execution.NewContext(context.Background(), trx, this.sched.Events(), memory.Register())
	root, err := build(ctx)
	if err != nil {
		ctx.Release()
		return err
	}

	res := newResults(columns)
	pipeline := execution.NewPipeline(ctx, root, res, this.batch)
	if err := this.sched.Schedule(pipeline); err != nil {
		pipeline.Fail(err)
		return err
	}

	<-res.done
	if res.err != nil {
		return res.err
	}
	if res.cancelled {
		fmt.Fprintf(this.out, "cancelled after %d rows\n", len(res.rows))
		return nil
	}

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.name
	}
	renderTable(this.out, headers, res.rows, this.width)
	return nil
}

// results collects the rows of one pipeline
type results struct {
	columns   []column
	rows      [][]string
	err       errors.Error
	cancelled bool
	done      chan bool
}

func newResults(columns []column) *results {
	return &results{
		columns: columns,
		done:    make(chan bool, 1),
	}
}

func (this *results) Result(row execution.InputRow) bool {
	cells := make([]string, len(this.columns))
	for i, c := range this.columns {
		b, err := row.GetValue(c.reg).MarshalJSON()
		if err != nil {
			cells[i] = row.GetValue(c.reg).String()
		} else {
			cells[i] = string(b)
		}
	}
	this.rows = append(this.rows, cells)
	return true
}

func (this *results) Done() {
	this.done <- true
}

func (this *results) Fatal(err errors.Error) {
	this.err = err
	this.done <- false
}

func (this *results) Cancelled() {
	this.cancelled = true
	this.done <- false
}
