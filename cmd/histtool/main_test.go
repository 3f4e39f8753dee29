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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/0xsoniclabs/bincount/axis"
	"github.com/stretchr/testify/require"
)

func TestAllCommands_Run(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.Name, func(t *testing.T) {
			os.Args = []string{"histtool", cmd.Name, "--help"}
			main() // ensure commands can be invoked without error
		})
	}
}

const testConfig = `
histograms:
  - name: a
    axes:
      - kind: integer
        label: x
        start: 0
        stop: 4
  - name: b
    storage:
      kind: sharded
      shards: 2
    axes:
      - kind: integer
        label: x
        start: 0
        stop: 4
`

// run executes the tool with the given arguments and returns its output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"histtool"}, args...))
	return out.String(), err
}

func TestTool_EndToEnd(t *testing.T) {
	for _, backend := range []string{backendLevelDb, backendSqlite, backendFile} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(cfg, []byte(testConfig), 0o600))
			samples := filepath.Join(dir, "samples.txt")
			require.NoError(t, os.WriteFile(samples, []byte("# values\n1\n1\n3\n7\n\n"), 0o600))

			global := []string{"--db", filepath.Join(dir, "db"), "--backend", backend}
			tool := func(stdin string, args ...string) string {
				out, err := run(t, stdin, append(global, args...)...)
				require.NoError(t, err, "%v", args)
				return out
			}

			tool("", "create", "--config", cfg)
			require.Equal(t, "a\nb\n", tool("", "list"))

			tool("", "fill", "a", samples)
			tool("2\n2\n", "fill", "--config", cfg, "--workers", "4", "b")
			tool("", "fill", "--weight", "18446744073709551615", "--workers", "3", "b", samples)

			require.Equal(t, "histogram a\naxis 0: integer \"x\", 4 bins over [0,4)\n[1]\t2\n[3]\t1\n", tool("", "show", "a"))

			tool("", "merge", "a", "b")
			out := tool("", "show", "a")
			require.Contains(t, out, "[1]\t36893488147419103232\n")
			require.Contains(t, out, "[2]\t2\n")
			require.Contains(t, out, "[3]\t18446744073709551616\n")

			out = tool("", "stats", "b")
			require.Contains(t, out, "total: 55340232221128654847\n")

			require.Contains(t, tool("", "verify"), "state hash: ")

			tool("", "delete", "b")
			require.Equal(t, "a\n", tool("", "list"))
		})
	}
}

func TestTool_ReportsErrors(t *testing.T) {
	dir := t.TempDir()
	global := []string{"--db", filepath.Join(dir, "db")}

	_, err := run(t, "", append(global, "show", "missing")...)
	require.ErrorContains(t, err, "not found")

	_, err = run(t, "", append(global, "create")...)
	require.ErrorContains(t, err, "missing --config")

	_, err = run(t, "", "--db", dir, "--backend", "tape", "list")
	require.ErrorContains(t, err, "unknown backend")

	_, err = run(t, "1,x\n", append(global, "fill", "a")...)
	require.ErrorContains(t, err, "invalid value in line 1")
}

func TestAxisRange_DescribesCoveredValues(t *testing.T) {
	integer, err := axis.NewInteger(-3, 5, "")
	require.NoError(t, err)
	regular, err := axis.NewRegular(10, 0.5, 2.5, "")
	require.NoError(t, err)

	require.Equal(t, " over [-3,5)", axisRange(integer))
	require.Equal(t, " over [0.5,2.5)", axisRange(regular))
	require.Empty(t, axisRange(axis.NewBinary("")))
}

func TestReadSamples_ParsesSeparators(t *testing.T) {
	samples, err := readSamples(strings.NewReader("1, 2\n# comment\n3\t4 5\n\n"))
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 2}, {3, 4, 5}}, samples)
}
