// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package config loads histogram definitions from YAML files.
//
// Example:
//
//	memory_budget: 25%
//	histograms:
//	  - name: latency
//	    storage:
//	      kind: sharded
//	      shards: 8
//	    axes:
//	      - kind: regular
//	        label: ms
//	        bins: 100
//	        lo: 0
//	        hi: 500
//	      - kind: binary
//	        label: error
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/0xsoniclabs/bincount/axis"
	"github.com/0xsoniclabs/bincount/common/largeint"
	"github.com/0xsoniclabs/bincount/storage"
	"github.com/0xsoniclabs/bincount/storage/memory"
	"github.com/0xsoniclabs/bincount/storage/sharded"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Storage kinds.
const (
	StorageMemory  = "memory"
	StorageSharded = "sharded"
)

type File struct {
	// MemoryBudget limits the memory counts may grow by, either in bytes
	// (e.g. "512MiB") or as a share of the physical memory (e.g. "25%").
	// Counts are not limited if it is empty.
	MemoryBudget string      `yaml:"memory_budget"`
	Histograms   []Histogram `yaml:"histograms"`
}

type Histogram struct {
	Name    string        `yaml:"name"`
	Storage StorageConfig `yaml:"storage"`
	Axes    []AxisConfig  `yaml:"axes"`
}

type StorageConfig struct {
	Kind   string `yaml:"kind"`
	Shards int    `yaml:"shards"`
}

type AxisConfig struct {
	Kind  string  `yaml:"kind"`
	Label string  `yaml:"label"`
	Start int64   `yaml:"start"`
	Stop  int64   `yaml:"stop"`
	Bins  int     `yaml:"bins"`
	Lo    float64 `yaml:"lo"`
	Hi    float64 `yaml:"hi"`
}

// Load reads and validates the configuration file at the given path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a configuration. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	res := &File{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(res); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return res, nil
}

// Validate checks the configuration and fills in defaults. All problems are
// reported at once.
func (f *File) Validate() error {
	var errs error
	if _, err := parseBudget(f.MemoryBudget); err != nil {
		errs = multierr.Append(errs, err)
	}
	names := map[string]bool{}
	for i := range f.Histograms {
		h := &f.Histograms[i]
		if names[h.Name] {
			errs = multierr.Append(errs, fmt.Errorf("duplicate histogram name %q", h.Name))
		}
		names[h.Name] = true
		errs = multierr.Append(errs, h.Validate())
	}
	return errs
}

func (h *Histogram) Validate() error {
	var errs error
	if h.Name == "" {
		errs = multierr.Append(errs, errors.New("histogram name must not be empty"))
	}
	if h.Storage.Kind == "" {
		h.Storage.Kind = StorageMemory
	}
	switch h.Storage.Kind {
	case StorageMemory:
	case StorageSharded:
		if h.Storage.Shards == 0 {
			h.Storage.Shards = sharded.DefaultShards
		}
		if h.Storage.Shards < 0 {
			errs = multierr.Append(errs, fmt.Errorf("histogram %q: shards must be positive", h.Name))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("histogram %q: unknown storage kind %q", h.Name, h.Storage.Kind))
	}
	if len(h.Axes) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("histogram %q: at least one axis is required", h.Name))
	}
	for i, a := range h.Axes {
		if _, err := a.Build(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("histogram %q: axis %d: %w", h.Name, i, err))
		}
	}
	return errs
}

// Build creates the configured axis.
func (a AxisConfig) Build() (axis.Axis, error) {
	switch a.Kind {
	case axis.KindBinary.String():
		return axis.NewBinary(a.Label), nil
	case axis.KindInteger.String():
		return axis.NewInteger(a.Start, a.Stop, a.Label)
	case axis.KindRegular.String():
		return axis.NewRegular(a.Bins, a.Lo, a.Hi, a.Label)
	}
	return nil, fmt.Errorf("unknown axis kind %q", a.Kind)
}

// BuildAxes creates the configured axes of the histogram.
func (h *Histogram) BuildAxes() ([]axis.Axis, error) {
	res := make([]axis.Axis, 0, len(h.Axes))
	for _, a := range h.Axes {
		built, err := a.Build()
		if err != nil {
			return nil, err
		}
		res = append(res, built)
	}
	return res, nil
}

// StorageFactory returns a factory for the configured storage, growing counts
// through the given allocator.
func (h *Histogram) StorageFactory(alloc largeint.Allocator, logger *zap.Logger) storage.Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if h.Storage.Kind == StorageSharded {
		return sharded.Factory(h.Storage.Shards, alloc, logger.With(zap.String("histogram", h.Name)))
	}
	return memory.Factory(alloc)
}

// Lookup returns the definition of the histogram with the given name.
func (f *File) Lookup(name string) (*Histogram, bool) {
	for i := range f.Histograms {
		if f.Histograms[i].Name == name {
			return &f.Histograms[i], true
		}
	}
	return nil, false
}

// Allocator returns the allocator implementing the configured memory budget,
// or nil if counts may grow without limit.
func (f *File) Allocator() (largeint.Allocator, error) {
	budget, err := parseBudget(f.MemoryBudget)
	if err != nil || budget == nil {
		return nil, err
	}
	return budget, nil
}

var units = []struct {
	suffix string
	factor uint64
}{
	// longer suffixes first
	{"KiB", 1 << 10},
	{"MiB", 1 << 20},
	{"GiB", 1 << 30},
	{"TiB", 1 << 40},
	{"KB", 1e3},
	{"MB", 1e6},
	{"GB", 1e9},
	{"TB", 1e12},
	{"B", 1},
}

func parseBudget(value string) (*largeint.Budget, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return nil, nil
	}
	if percentage, found := strings.CutSuffix(raw, "%"); found {
		share, err := strconv.ParseFloat(strings.TrimSpace(percentage), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid memory_budget %q: %w", raw, err)
		}
		return largeint.NewBudgetFromSystem(share / 100)
	}
	number, factor := raw, uint64(1)
	for _, unit := range units {
		if prefix, found := strings.CutSuffix(raw, unit.suffix); found {
			number, factor = strings.TrimSpace(prefix), unit.factor
			break
		}
	}
	amount, err := strconv.ParseUint(number, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid memory_budget %q: %w", raw, err)
	}
	if amount > math.MaxUint64/factor {
		return nil, fmt.Errorf("invalid memory_budget %q: out of range", raw)
	}
	return largeint.NewBudget(amount * factor), nil
}
