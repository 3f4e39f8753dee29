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
	"github.com/0xsoniclabs/bincount/storage/memory"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var VerifyCmd = cli.Command{
	Action: doVerify,
	Name:   "verify",
	Usage:  "check the integrity of all stored histograms and print the state hash",
}

func doVerify(context *cli.Context) error {
	return withDepot(context, func(d *depot.Depot) error {
		if err := d.Verify(memory.Factory(nil)); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		hash, err := d.GetStateHash()
		if err != nil {
			return err
		}
		zap.L().Info("verification successful")
		fmt.Fprintf(context.App.Writer, "state hash: %v\n", hash)
		return nil
	})
}
