// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package diagnostics wraps command line actions with optional performance
// diagnostics: a pprof server, CPU profiling and execution tracing.
package diagnostics

import (
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// Flags selects the command line flags controlling the diagnostics. Nil flags
// disable the respective diagnostic.
type Flags struct {
	Port       *cli.IntFlag    // port of the pprof server
	CpuProfile *cli.StringFlag // target file of the CPU profile
	Trace      *cli.StringFlag // target file of the execution trace
}

// AddPerformanceDiagnosticsAction wraps an action such that the diagnostics
// requested through the given flags are active while it runs. Messages are
// reported to the global zap logger. Profiles and traces are completed when
// the action returns.
func AddPerformanceDiagnosticsAction(action cli.ActionFunc, flags Flags) cli.ActionFunc {
	return func(context *cli.Context) (err error) {
		logger := zap.L()

		if flags.Port != nil {
			startDiagnosticServer(logger, context.Int(flags.Port.Name))
		}

		if name := flagValue(context, flags.CpuProfile); name != "" {
			stop, err := startCpuProfiler(name)
			if err != nil {
				return err
			}
			logger.Info("recording CPU profile", zap.String("file", name))
			defer func() { err = errors.Join(err, stop()) }()
		}

		if name := flagValue(context, flags.Trace); name != "" {
			stop, err := startTracer(name)
			if err != nil {
				return err
			}
			logger.Info("recording trace", zap.String("file", name))
			defer func() { err = errors.Join(err, stop()) }()
		}

		return action(context)
	}
}

func flagValue(context *cli.Context, flag *cli.StringFlag) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(context.String(flag.Name))
}

func startDiagnosticServer(logger *zap.Logger, port int) {
	if port <= 0 || port >= (1<<16) {
		return
	}
	addr := fmt.Sprintf("localhost:%d", port)
	logger.Info("starting diagnostic server, see https://pkg.go.dev/net/http/pprof for usage",
		zap.String("address", "http://"+addr+"/debug/pprof/"),
	)
	logger.Warn("block and mutex sampling rate is set to 100%, which may impact performance")
	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error("diagnostic server stopped", zap.Error(err))
		}
	}()
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)
}

func startCpuProfiler(filename string) (func() error, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return nil, errors.Join(fmt.Errorf("could not start CPU profile: %w", err), f.Close())
	}
	return func() error {
		pprof.StopCPUProfile()
		return f.Close()
	}, nil
}

func startTracer(filename string) (func() error, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	if err := trace.Start(f); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to start trace: %w", err), f.Close())
	}
	return func() error {
		trace.Stop()
		return f.Close()
	}, nil
}
