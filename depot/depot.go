// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package depot persists named histograms in a key/value Store. Every
// histogram is kept as a single record, framed with a checksum and compressed.
// Store implementations are provided by the sub-packages.
package depot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"github.com/0xsoniclabs/bincount/common"
	"github.com/0xsoniclabs/bincount/histogram"
	"github.com/0xsoniclabs/bincount/storage"
	"go.uber.org/zap"
)

// Depot provides access to the histograms of a store. It is not safe for
// concurrent use.
type Depot struct {
	store  Store
	logger *zap.Logger
}

// New creates a depot on top of the given store. The depot takes ownership of
// the store and closes it when being closed.
func New(store Store, logger *zap.Logger) *Depot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Depot{store: store, logger: logger}
}

// Put stores the given histogram under the given name, replacing any
// histogram stored under that name before.
func (d *Depot) Put(name string, h *histogram.Histogram) error {
	if name == "" {
		return errors.New("histogram name must not be empty")
	}
	payload, err := h.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode histogram %q: %w", name, err)
	}
	record := encodeRecord(payload)
	if err := d.store.Set(name, record); err != nil {
		return fmt.Errorf("failed to store histogram %q: %w", name, err)
	}
	d.logger.Debug("stored histogram",
		zap.String("name", name),
		zap.Int("payload", len(payload)),
		zap.Int("record", len(record)),
	)
	return nil
}

// Get loads the histogram stored under the given name, placing its counts in
// a storage obtained from the given factory. If there is no such histogram,
// an error wrapping ErrNotFound is returned.
func (d *Depot) Get(name string, factory storage.Factory) (*histogram.Histogram, error) {
	payload, err := d.load(name)
	if err != nil {
		return nil, err
	}
	res, err := histogram.Unmarshal(payload, factory)
	if err != nil {
		return nil, fmt.Errorf("failed to decode histogram %q: %w", name, err)
	}
	return res, nil
}

func (d *Depot) load(name string) ([]byte, error) {
	record, err := d.store.Get(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load histogram %q: %w", name, err)
	}
	payload, err := decodeRecord(record)
	if err != nil {
		return nil, fmt.Errorf("failed to load histogram %q: %w", name, err)
	}
	return payload, nil
}

// Names returns the names of all stored histograms in ascending order.
func (d *Depot) Names() ([]string, error) {
	return d.store.Keys()
}

// Delete removes the histogram with the given name, if present.
func (d *Depot) Delete(name string) error {
	if err := d.store.Delete(name); err != nil {
		return fmt.Errorf("failed to delete histogram %q: %w", name, err)
	}
	return nil
}

// GetStateHash computes a Keccak-256 hash over the names and encodings of all
// stored histograms. Depots holding equal histograms under equal names have
// equal hashes, independent of the store used.
func (d *Depot) GetStateHash() (common.Hash, error) {
	names, err := d.store.Keys()
	if err != nil {
		return common.Hash{}, err
	}
	parts := make([][]byte, 0, 3*len(names))
	for _, name := range names {
		payload, err := d.load(name)
		if err != nil {
			return common.Hash{}, err
		}
		hash := common.Keccak256(payload)
		parts = append(parts,
			binary.BigEndian.AppendUint32(nil, uint32(len(name))),
			[]byte(name),
			hash[:],
		)
	}
	return common.Keccak256(parts...), nil
}

// Verify checks that every stored record is intact and decodes into a valid
// histogram. All detected issues are reported.
func (d *Depot) Verify(factory storage.Factory) error {
	names, err := d.store.Keys()
	if err != nil {
		return err
	}
	issues := issueCollector{}
	for _, name := range names {
		h, err := d.Get(name, factory)
		if err != nil {
			issues.HandleIssue(err)
			continue
		}
		h.Reset()
	}
	d.logger.Info("verified depot", zap.Int("histograms", len(names)))
	return issues.Collect()
}

func (d *Depot) Flush() error {
	return d.store.Flush()
}

func (d *Depot) Close() error {
	return d.store.Close()
}

// GetMemoryFootprint provides the size of the depot in memory in bytes.
func (d *Depot) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*d))
	mf.AddChild("store", d.store.GetMemoryFootprint())
	return mf
}

// issueCollector gathers errors, keeping the first few of them.
type issueCollector struct {
	issues      []error
	extraIssues int
}

func (c *issueCollector) HandleIssue(err error) {
	if err == nil {
		return
	}
	if len(c.issues) < 10 {
		c.issues = append(c.issues, err)
	} else {
		c.extraIssues++
	}
}

func (c *issueCollector) Collect() error {
	if c.extraIssues > 0 {
		c.issues = append(c.issues, fmt.Errorf("%d additional errors truncated", c.extraIssues))
	}
	res := errors.Join(c.issues...)
	c.issues = c.issues[:0]
	c.extraIssues = 0
	return res
}
