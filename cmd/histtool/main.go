// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"os"

	"github.com/0xsoniclabs/bincount/common/diagnostics"
	"github.com/0xsoniclabs/bincount/common/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// Run using
//  go run ./cmd/histtool <command> <flags>

var (
	dbFlag = cli.StringFlag{
		Name:  "db",
		Usage: "directory of the histogram depot",
		Value: "histograms",
	}
	backendFlag = cli.StringFlag{
		Name:  "backend",
		Usage: "depot backend, one of ldb, sqlite, file",
		Value: backendLevelDb,
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable debug logging",
	}
	diagnosticsFlag = cli.IntFlag{
		Name:  "diagnostic-port",
		Usage: "enable hosting of a realtime diagnostic server by providing a port",
		Value: 0,
	}
	cpuProfileFlag = cli.StringFlag{
		Name:  "cpuprofile",
		Usage: "sets the target file for storing CPU profiles to, disabled if empty",
		Value: "",
	}
	traceFlag = cli.StringFlag{
		Name:  "tracefile",
		Usage: "sets the target file for traces to, disabled if empty",
		Value: "",
	}
)

var commands = []*cli.Command{
	&CreateCmd,
	&FillCmd,
	&ListCmd,
	&ShowCmd,
	&StatsCmd,
	&MergeCmd,
	&DeleteCmd,
	&VerifyCmd,
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "histtool",
		Usage:     "toolbox for histograms with arbitrary-precision bin counts",
		Copyright: "(c) 2025 Sonic Operations Ltd",
		Flags: []cli.Flag{
			&dbFlag,
			&backendFlag,
			&verboseFlag,
			&diagnosticsFlag,
			&cpuProfileFlag,
			&traceFlag,
		},
		Before: func(context *cli.Context) error {
			logger, err := logging.New(context.Bool(verboseFlag.Name))
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
		After: func(*cli.Context) error {
			_ = zap.L().Sync()
			return nil
		},
		Commands: withDiagnostics(commands),
	}
}

// withDiagnostics equips the actions of the given commands with the
// diagnostics selected by the global flags.
func withDiagnostics(commands []*cli.Command) []*cli.Command {
	res := make([]*cli.Command, 0, len(commands))
	for _, cmd := range commands {
		wrapped := *cmd
		wrapped.Action = diagnostics.AddPerformanceDiagnosticsAction(cmd.Action, diagnostics.Flags{
			Port:       &diagnosticsFlag,
			CpuProfile: &cpuProfileFlag,
			Trace:      &traceFlag,
		})
		res = append(res, &wrapped)
	}
	return res
}
