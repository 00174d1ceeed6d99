//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/couchbaselabs/rowpipe/datastore/memstore"
	"github.com/couchbaselabs/rowpipe/logging"
	log_resolver "github.com/couchbaselabs/rowpipe/logging/resolver"
	"github.com/couchbaselabs/rowpipe/memory"
	"github.com/couchbaselabs/rowpipe/scheduler"
	"github.com/couchbaselabs/rowpipe/settings"
)

var VERSION = "0.1.0" // Build-time overriddable.

var CONFIG = flag.String("config", "", "YAML configuration file")
var THREADS = flag.Int("threads", 0, "Worker thread count; zero for one per CPU")
var BACKEND = flag.String("backend", "", "I/O backend (auto, goroutine or epoll)")
var SHOW_BACKENDS = flag.Bool("show-backends", false, "List the available I/O backends and exit")
var LOGGER = flag.String("logger", "", "Logger implementation (golog, golog:json, clog or null)")
var DEBUG = flag.Bool("debug", false, "Debug mode")
var MEMORY_QUOTA = flag.Uint64("memory-quota", 0, "Memory quota in MB; zero for none")
var COMPRESSION = flag.String("compression", "", "Document compression (none, snappy, s2 or zstd)")
var SHARDS = flag.Int("shards", 16, "Number of keyspace shards")
var BATCH_SIZE = flag.Int("batch-size", 0, "Rows per block")

func main() {
	flag.Parse()

	config, err := configure()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if config.ShowBackends {
		for _, b := range scheduler.Backends() {
			fmt.Println(b)
		}
		return
	}

	logger, err := log_resolver.NewLogger(config.Logger, config.Level())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logging.SetLogger(logger)
	memory.Config(config.MemoryQuota)

	keyspace, err := memstore.NewKeyspace("default", *SHARDS, config.Compression)
	if err != nil {
		logging.Errorp("cbq exiting with error", logging.Pair{Name: "error", Value: err})
		os.Exit(1)
	}
	defer keyspace.Close()

	sched, err := scheduler.New(config)
	if err != nil {
		logging.Errorp("cbq exiting with error", logging.Pair{Name: "error", Value: err})
		os.Exit(1)
	}
	sched.Start()
	sched.HandleSignals(os.Interrupt, syscall.SIGTERM)
	logging.Infop("cbq started", logging.Pair{Name: "version", Value: VERSION},
		logging.Pair{Name: "config", Value: config})

	sh := newShell(sched, keyspace, config.BatchSize, os.Stdout)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			sh.width = w
		}
		HandleInteractiveMode(sh)
	} else {
		HandleBatchMode(sh, os.Stdin)
	}

	ctx, cancel := shutdownContext(config)
	defer cancel()
	sched.Shutdown(ctx)
}

// defaults, then the configuration file, then the flags given
func configure() (settings.Config, error) {
	config := settings.DefaultConfig()
	if *CONFIG != "" {
		c, err := settings.Load(*CONFIG)
		if err != nil {
			return config, err
		}
		config = c
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threads":
			config.Threads = *THREADS
		case "backend":
			config.Backend = *BACKEND
		case "show-backends":
			config.ShowBackends = *SHOW_BACKENDS
		case "logger":
			config.Logger = *LOGGER
		case "memory-quota":
			config.MemoryQuota = *MEMORY_QUOTA
		case "compression":
			config.Compression = *COMPRESSION
		case "batch-size":
			config.BatchSize = *BATCH_SIZE
		}
	})
	if *DEBUG {
		config.LogLevel = logging.DEBUG.String()
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}
