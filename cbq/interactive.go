//  Copyright (c) 2013 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/couchbaselabs/rowpipe/logging"
	"github.com/couchbaselabs/rowpipe/settings"
)

const (
	QRY_PROMPT1 = "cbq> "
	QRY_PROMPT2 = "   > "
)

func HandleInteractiveMode(sh *shell) {

	// try to find a HOME environment variable
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		// then try USERPROFILE for Windows
		homeDir = os.Getenv("USERPROFILE")
		if homeDir == "" {
			fmt.Printf("Unable to determine home directory, history file disabled\n")
		}
	}

	var liner = liner.NewLiner()
	defer liner.Close()
	liner.SetCtrlCAborts(true)

	LoadHistory(liner, homeDir)

	// a shutdown triggered by a signal ends the session
	go func() {
		<-sh.sched.Done()
		liner.Close()
	}()

	// state for reading a line continued with a trailing backslash
	lines := []string{}
	prompt := QRY_PROMPT1
	for {
		line, err := liner.Prompt(prompt)
		if err != nil {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, "\\") && !strings.HasPrefix(line, "\\") {
			prompt = QRY_PROMPT2
			lines = append(lines, strings.TrimSuffix(line, "\\"))
			continue
		}
		lines = append(lines, line)
		command := strings.Join(lines, " ")
		lines = []string{}
		prompt = QRY_PROMPT1

		UpdateHistory(liner, homeDir, command)
		if !execute(sh, command) {
			break
		}
	}
}

// HandleBatchMode runs the commands read from r, one per line.
func HandleBatchMode(sh *shell, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !execute(sh, line) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logging.Errorp("reading commands", logging.Pair{Name: "error", Value: err})
	}
}

// false once the session should end
func execute(sh *shell, command string) bool {
	err := sh.execute(command)
	if err == errQuit {
		return false
	}
	if err != nil {
		fmt.Fprintf(sh.out, "ERROR %d: %v\n", err.Code(), err)
	}
	select {
	case <-sh.sched.Done():
		return false
	default:
		return true
	}
}

func shutdownContext(config settings.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(config.DrainTimeout))
}
