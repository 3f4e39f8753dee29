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
	"errors"
	"fmt"
	"strings"

	"github.com/0xsoniclabs/bincount/axis"
	"github.com/0xsoniclabs/bincount/depot"
	"github.com/0xsoniclabs/bincount/histogram"
	"github.com/urfave/cli/v2"
)

var ListCmd = cli.Command{
	Action: doList,
	Name:   "list",
	Usage:  "list the names of all stored histograms",
}

var ShowCmd = cli.Command{
	Action:    doShow,
	Name:      "show",
	Usage:     "print the axes and all non-empty bins of a histogram",
	ArgsUsage: "<name>",
	Flags: []cli.Flag{
		&configFlag,
	},
}

var StatsCmd = cli.Command{
	Action:    doStats,
	Name:      "stats",
	Usage:     "print total count, mean and variance along every axis",
	ArgsUsage: "<name>",
	Flags: []cli.Flag{
		&configFlag,
	},
}

func doList(context *cli.Context) error {
	return withDepot(context, func(d *depot.Depot) error {
		names, err := d.Names()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(context.App.Writer, name)
		}
		return nil
	})
}

func doShow(context *cli.Context) error {
	return withHistogram(context, func(name string, h *histogram.Histogram) error {
		out := context.App.Writer
		fmt.Fprintf(out, "histogram %s\n", name)
		for i, a := range h.Axes() {
			fmt.Fprintf(out, "axis %d: %v %q, %d bins%s\n", i, a.Kind(), a.Metadata(), a.Size(), axisRange(a))
		}
		indices := make([]int, len(h.Axes()))
		for {
			count, err := h.At(indices...)
			if err != nil {
				return err
			}
			if count.NotEqualUint64(0) {
				fmt.Fprintf(out, "%s\t%v\n", binLabel(h.Axes(), indices), &count)
			}
			if !next(h.Axes(), indices) {
				return nil
			}
		}
	})
}

// axisRange describes the values covered by an axis.
func axisRange(a axis.Axis) string {
	switch a := a.(type) {
	case *axis.Integer:
		start, stop := a.Range()
		return fmt.Sprintf(" over [%d,%d)", start, stop)
	case *axis.Regular:
		lo, hi := a.Range()
		return fmt.Sprintf(" over [%g,%g)", lo, hi)
	}
	return ""
}

// next advances the given per-axis indices to the next bin in row-major
// order. It reports false after the last bin.
func next(axes []axis.Axis, indices []int) bool {
	for i := len(indices) - 1; i >= 0; i-- {
		indices[i]++
		if indices[i] < axes[i].Size() {
			return true
		}
		indices[i] = 0
	}
	return false
}

func binLabel(axes []axis.Axis, indices []int) string {
	parts := make([]string, len(indices))
	for i, index := range indices {
		parts[i] = fmt.Sprintf("%g", axes[i].Value(index))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func doStats(context *cli.Context) error {
	return withHistogram(context, func(name string, h *histogram.Histogram) error {
		out := context.App.Writer
		total, err := h.Total()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "histogram %s\n", name)
		fmt.Fprintf(out, "total: %v\n", &total)
		for i, a := range h.Axes() {
			mean, err := h.Mean(i)
			if errors.Is(err, histogram.ErrNoEntries) {
				fmt.Fprintf(out, "axis %d (%s): no entries\n", i, a.Metadata())
				continue
			}
			if err != nil {
				return err
			}
			variance, err := h.Variance(i)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "axis %d (%s): mean %g, variance %g\n", i, a.Metadata(), mean, variance)
		}
		return nil
	})
}

// withHistogram runs the given function on the histogram named by the single
// argument of the command.
func withHistogram(context *cli.Context, run func(string, *histogram.Histogram) error) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one histogram name")
	}
	name := context.Args().First()
	return withDepot(context, func(d *depot.Depot) error {
		h, err := loadHistogram(context, d, name)
		if err != nil {
			return err
		}
		return run(name, h)
	})
}
