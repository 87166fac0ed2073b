// Copyright 2022 GearnsC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// convertmdinfo prints HDR mastering display metadata in the form taken by
// x265's --master-display option. The metadata is given on the command line
// or read from an HEVC video with ffprobe.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/gitgerby/convertmdinfo/internal/pkg/cmdline"
	"github.com/gitgerby/convertmdinfo/internal/pkg/config"
	"github.com/gitgerby/convertmdinfo/internal/pkg/eval"
	"github.com/gitgerby/convertmdinfo/internal/pkg/mderr"
	"github.com/gitgerby/convertmdinfo/internal/pkg/mdinfo"
	"github.com/google/logger"
)

const usage = `Usage:
convertmdinfo -r %d %d -g %d %d -b %d %d -wp %d %d -lmin %d -lmax %d
`

func printUsage(w io.Writer) {
	io.WriteString(w, usage)
}

// initLogging sets up google/logger. Log lines go to the configured log
// file and, when verbose, to stderr; stdout is reserved for the result.
func initLogging(cfg *config.MDConfig, stderr io.Writer) (*logger.Logger, func(), error) {
	var sinks []io.Writer
	cleanup := func() {}
	if *cfg.LogFile != "" {
		f, err := os.OpenFile(*cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, mderr.Wrap(mderr.Output, err, fmt.Sprintf("failed to open log file: %v", err))
		}
		sinks = append(sinks, f)
		cleanup = func() { f.Close() }
	}
	if *cfg.Verbose {
		sinks = append(sinks, stderr)
	}
	if len(sinks) == 0 {
		sinks = append(sinks, io.Discard)
	}
	return logger.Init("convertmdinfo", false, false, io.MultiWriter(sinks...)), cleanup, nil
}

// reportError prints the one line a failing run leaves on stderr. Internal
// errors also log their stack trace.
func reportError(stderr io.Writer, err error) {
	var e *mderr.Error
	if errors.As(err, &e) && e.Kind == mderr.Internal {
		logger.Infof("internal error detail: %+v", e.Err)
	}
	fmt.Fprintln(stderr, err)
}

// run executes one invocation and returns the process exit code. The
// configuration is only read once the command line asks for metadata, so
// usage is always available.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	switches, err := cmdline.Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(switches) == 0 {
		printUsage(stderr)
		return 0
	}
	res, err := eval.Evaluate(switches)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if !res.Actionable() {
		printUsage(stderr)
		return 0
	}

	cfg, err := config.ParseConfig(config.Path())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	l, cleanup, err := initLogging(cfg, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer cleanup()
	defer l.Close()
	logger.Infof("parsed %d command line switches, mode %v", len(switches), res.Mode)

	var q mdinfo.QuantizedDisplay
	switch res.Mode {
	case eval.Manual:
		q, err = manualMetadata(res)
	case eval.Automatic:
		q, err = automaticMetadata(ctx, cfg, res)
	default:
		err = mderr.Bug("unexpected input mode %v", res.Mode)
	}
	if err != nil {
		reportError(stderr, err)
		return 1
	}

	if err := writeResult(res.OutputPath, q.String(), stdout); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
