//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package settings holds the configuration consumed when the scheduler
is constructed. Values come from defaults, an optional YAML file and
command line flags, in that order.
*/
package settings

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/logging"
)

const (
	DEF_BACKEND       = "auto"
	DEF_TIME_SLICE    = 10 * time.Millisecond
	DEF_MAX_STEPS     = 64
	DEF_DRAIN_TIMEOUT = 5 * time.Second
	DEF_QUEUE_SIZE    = 1024
	DEF_BATCH_SIZE    = 100
	DEF_LOGGER        = "golog"
	DEF_LOG_LEVEL     = "info"
	DEF_COMPRESSION   = "snappy"
)

// Duration reads "10ms" style strings as well as nanoseconds.
type Duration time.Duration

func (this Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(this).String() + `"`), nil
}

func (this *Duration) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if d, err := time.ParseDuration(s); err == nil {
		*this = Duration(d)
		return nil
	}
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return fmt.Errorf("invalid duration %s", b)
	}
	*this = Duration(n)
	return nil
}

type Config struct {
	Threads      int      `json:"threads"`
	Backend      string   `json:"backend"`
	ShowBackends bool     `json:"show-backends"`
	TimeSlice    Duration `json:"time-slice"`
	MaxSteps     int      `json:"max-steps"`
	DrainTimeout Duration `json:"drain-timeout"`
	QueueSize    int      `json:"queue-size"`
	BatchSize    int      `json:"batch-size"`
	MemoryQuota  uint64   `json:"memory-quota"`
	Logger       string   `json:"logger"`
	LogLevel     string   `json:"log-level"`
	Compression  string   `json:"compression"`
}

func DefaultConfig() Config {
	return Config{
		Threads:      runtime.NumCPU(),
		Backend:      DEF_BACKEND,
		TimeSlice:    Duration(DEF_TIME_SLICE),
		MaxSteps:     DEF_MAX_STEPS,
		DrainTimeout: Duration(DEF_DRAIN_TIMEOUT),
		QueueSize:    DEF_QUEUE_SIZE,
		BatchSize:    DEF_BATCH_SIZE,
		Logger:       DEF_LOGGER,
		LogLevel:     DEF_LOG_LEVEL,
		Compression:  DEF_COMPRESSION,
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, errors.Error) {
	c := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, errors.NewAdminSettingError("config", path, err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, errors.NewAdminSettingError("config", path, err)
	}
	if e := c.Validate(); e != nil {
		return c, e
	}
	logging.Infop("configuration loaded", logging.Pair{Name: "file", Value: path})
	return c, nil
}

// Validate fills unset values with defaults and rejects invalid ones.
func (this *Config) Validate() errors.Error {
	if this.Threads < 0 {
		return errors.NewAdminSettingError("threads", this.Threads, nil)
	}
	if this.Threads == 0 {
		this.Threads = runtime.NumCPU()
	}
	if this.Backend == "" {
		this.Backend = DEF_BACKEND
	}
	if this.TimeSlice <= 0 {
		this.TimeSlice = Duration(DEF_TIME_SLICE)
	}
	if this.MaxSteps < 0 {
		return errors.NewAdminSettingError("max-steps", this.MaxSteps, nil)
	}
	if this.MaxSteps == 0 {
		this.MaxSteps = DEF_MAX_STEPS
	}
	if this.DrainTimeout < 0 {
		return errors.NewAdminSettingError("drain-timeout", time.Duration(this.DrainTimeout), nil)
	}
	if this.DrainTimeout == 0 {
		this.DrainTimeout = Duration(DEF_DRAIN_TIMEOUT)
	}
	if this.QueueSize <= 0 {
		this.QueueSize = DEF_QUEUE_SIZE
	}
	if this.BatchSize <= 0 {
		this.BatchSize = DEF_BATCH_SIZE
	}
	if this.Logger == "" {
		this.Logger = DEF_LOGGER
	}
	if this.LogLevel == "" {
		this.LogLevel = DEF_LOG_LEVEL
	}
	if _, ok := logging.ParseLevel(this.LogLevel); !ok {
		return errors.NewAdminSettingError("log-level", this.LogLevel, nil)
	}
	if this.Compression == "" {
		this.Compression = DEF_COMPRESSION
	}
	return nil
}

func (this *Config) Level() logging.Level {
	l, ok := logging.ParseLevel(this.LogLevel)
	if !ok {
		return logging.INFO
	}
	return l
}

func (this Config) String() string {
	b, err := yaml.Marshal(this)
	if err != nil {
		return fmt.Sprintf("%#v", this)
	}
	return string(b)
}
