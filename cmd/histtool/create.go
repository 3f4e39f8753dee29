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

	"github.com/0xsoniclabs/bincount/config"
	"github.com/0xsoniclabs/bincount/depot"
	"github.com/0xsoniclabs/bincount/histogram"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var forceFlag = cli.BoolFlag{
	Name:  "force",
	Usage: "replace existing histograms",
}

var CreateCmd = cli.Command{
	Action:    doCreate,
	Name:      "create",
	Usage:     "create the empty histograms defined in a configuration file",
	ArgsUsage: "[<name>...]",
	Flags: []cli.Flag{
		&configFlag,
		&forceFlag,
	},
}

func doCreate(context *cli.Context) error {
	path := context.String(configFlag.Name)
	if path == "" {
		return fmt.Errorf("missing --%s parameter", configFlag.Name)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	alloc, err := cfg.Allocator()
	if err != nil {
		return err
	}

	selected := cfg.Histograms
	if context.Args().Present() {
		selected = nil
		for _, name := range context.Args().Slice() {
			def, found := cfg.Lookup(name)
			if !found {
				return fmt.Errorf("histogram %q is not defined in %s", name, path)
			}
			selected = append(selected, *def)
		}
	}

	logger := zap.L()
	force := context.Bool(forceFlag.Name)
	return withDepot(context, func(d *depot.Depot) error {
		for _, def := range selected {
			if !force {
				_, err := d.Get(def.Name, def.StorageFactory(alloc, logger))
				if err == nil {
					logger.Info("histogram exists, skipping", zap.String("name", def.Name))
					continue
				}
				if !errors.Is(err, depot.ErrNotFound) {
					return err
				}
			}
			axes, err := def.BuildAxes()
			if err != nil {
				return err
			}
			h, err := histogram.New(axes, def.StorageFactory(alloc, logger))
			if err != nil {
				return fmt.Errorf("failed to create histogram %q: %w", def.Name, err)
			}
			if err := d.Put(def.Name, h); err != nil {
				return err
			}
			logger.Info("created histogram", zap.String("name", def.Name), zap.Int("bins", h.Size()))
		}
		return d.Flush()
	})
}
