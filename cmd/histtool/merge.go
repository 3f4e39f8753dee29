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

	"github.com/0xsoniclabs/bincount/depot"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var MergeCmd = cli.Command{
	Action:    doMerge,
	Name:      "merge",
	Usage:     "add the counts of a histogram to another one with equal axes",
	ArgsUsage: "<target> <source>",
	Flags: []cli.Flag{
		&configFlag,
	},
}

var DeleteCmd = cli.Command{
	Action:    doDelete,
	Name:      "delete",
	Usage:     "remove histograms from the depot",
	ArgsUsage: "<name>...",
}

func doMerge(context *cli.Context) error {
	if context.Args().Len() != 2 {
		return fmt.Errorf("expected target and source histogram names")
	}
	target, source := context.Args().Get(0), context.Args().Get(1)
	return withDepot(context, func(d *depot.Depot) error {
		dst, err := loadHistogram(context, d, target)
		if err != nil {
			return err
		}
		src, err := loadHistogram(context, d, source)
		if err != nil {
			return err
		}
		if err := dst.Merge(src); err != nil {
			return fmt.Errorf("failed to merge %q into %q: %w", source, target, err)
		}
		if err := d.Put(target, dst); err != nil {
			return err
		}
		zap.L().Info("merged histograms", zap.String("target", target), zap.String("source", source))
		return d.Flush()
	})
}

func doDelete(context *cli.Context) error {
	if !context.Args().Present() {
		return fmt.Errorf("expected at least one histogram name")
	}
	return withDepot(context, func(d *depot.Depot) error {
		for _, name := range context.Args().Slice() {
			if err := d.Delete(name); err != nil {
				return err
			}
		}
		return d.Flush()
	})
}
