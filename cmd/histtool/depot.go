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
	"github.com/0xsoniclabs/bincount/depot/file"
	"github.com/0xsoniclabs/bincount/depot/ldb"
	"github.com/0xsoniclabs/bincount/depot/sqlite"
	"github.com/0xsoniclabs/bincount/histogram"
	"github.com/0xsoniclabs/bincount/storage"
	"github.com/0xsoniclabs/bincount/storage/memory"
	"github.com/0xsoniclabs/bincount/storage/sharded"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	backendLevelDb = "ldb"
	backendSqlite  = "sqlite"
	backendFile    = "file"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "YAML file with histogram definitions",
	}
	workersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "number of goroutines filling histograms",
		Value: 1,
	}
)

// openDepot opens the depot selected by the global flags.
func openDepot(context *cli.Context) (*depot.Depot, error) {
	dir := context.String(dbFlag.Name)
	if dir == "" {
		return nil, fmt.Errorf("missing --%s parameter", dbFlag.Name)
	}
	logger := zap.L()
	var (
		store depot.Store
		err   error
	)
	switch backend := context.String(backendFlag.Name); backend {
	case backendLevelDb:
		store, err = ldb.OpenStore(dir, logger)
	case backendSqlite:
		store, err = sqlite.OpenStore(dir, logger)
	case backendFile:
		store, err = file.OpenStore(dir)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return depot.New(store, logger), nil
}

// withDepot runs the given function on the depot selected by the global
// flags and closes it afterwards.
func withDepot(context *cli.Context, run func(*depot.Depot) error) error {
	d, err := openDepot(context)
	if err != nil {
		return err
	}
	return errors.Join(run(d), d.Close())
}

// storageFactory selects the storage for loaded histograms: the one defined
// in the configuration if available, a sharded one for parallel filling, and
// an in-memory one otherwise.
func storageFactory(context *cli.Context, name string) (storage.Factory, error) {
	if path := context.String(configFlag.Name); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		alloc, err := cfg.Allocator()
		if err != nil {
			return nil, err
		}
		if def, found := cfg.Lookup(name); found {
			return def.StorageFactory(alloc, zap.L()), nil
		}
		return memory.Factory(alloc), nil
	}
	if context.Int(workersFlag.Name) > 1 {
		return sharded.Factory(sharded.DefaultShards, nil, zap.L()), nil
	}
	return memory.Factory(nil), nil
}

// loadHistogram loads the histogram named by the given argument.
func loadHistogram(context *cli.Context, d *depot.Depot, name string) (*histogram.Histogram, error) {
	factory, err := storageFactory(context, name)
	if err != nil {
		return nil, err
	}
	return d.Get(name, factory)
}
