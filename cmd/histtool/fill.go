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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/0xsoniclabs/bincount/common/logging"
	"github.com/0xsoniclabs/bincount/depot"
	"github.com/0xsoniclabs/bincount/histogram"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var weightFlag = cli.Uint64Flag{
	Name:  "weight",
	Usage: "weight of every sample",
	Value: 1,
}

var FillCmd = cli.Command{
	Action:    doFill,
	Name:      "fill",
	Usage:     "count samples read from a file or stdin, one sample per line",
	ArgsUsage: "<name> [<sample file>]",
	Flags: []cli.Flag{
		&configFlag,
		&weightFlag,
		&workersFlag,
	},
}

func doFill(context *cli.Context) error {
	if context.Args().Len() < 1 || context.Args().Len() > 2 {
		return fmt.Errorf("expected histogram name and optional sample file")
	}
	name := context.Args().Get(0)

	var in io.Reader = context.App.Reader
	if in == nil {
		in = os.Stdin
	}
	if context.Args().Len() == 2 {
		f, err := os.Open(context.Args().Get(1))
		if err != nil {
			return fmt.Errorf("failed to open sample file: %w", err)
		}
		defer f.Close()
		in = f
	}
	samples, err := readSamples(in)
	if err != nil {
		return err
	}

	return withDepot(context, func(d *depot.Depot) error {
		h, err := loadHistogram(context, d, name)
		if err != nil {
			return err
		}
		if err := fill(context, h, samples); err != nil {
			return err
		}
		if err := d.Put(name, h); err != nil {
			return err
		}
		return d.Flush()
	})
}

// fillBatchSize is the number of samples filled between progress reports.
const fillBatchSize = 100_000

func fill(context *cli.Context, h *histogram.Histogram, samples [][]float64) error {
	progress := logging.NewProgressLogger(zap.L(), "samples", fillBatchSize)
	weight := context.Uint64(weightFlag.Name)
	workers := context.Int(workersFlag.Name)
	for start := 0; start < len(samples); start += fillBatchSize {
		batch := samples[start:min(start+fillBatchSize, len(samples))]
		var err error
		if weight == 1 {
			err = h.FillParallel(context.Context, batch, workers)
		} else {
			err = h.FillParallelN(context.Context, weight, batch, workers)
		}
		if err != nil {
			return err
		}
		progress.Step(uint64(len(batch)))
	}
	progress.Done()
	return nil
}

// readSamples parses one sample per line, with values separated by commas or
// white space. Empty lines and lines starting with # are ignored.
func readSamples(in io.Reader) ([][]float64, error) {
	var res [][]float64
	scanner := bufio.NewScanner(in)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		values := make([]float64, 0, len(fields))
		for _, field := range fields {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value in line %d: %w", line, err)
			}
			values = append(values, value)
		}
		res = append(res, values)
	}
	return res, scanner.Err()
}
