// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package histogram

import (
	"errors"
	"fmt"

	"github.com/0xsoniclabs/bincount/axis"
	"github.com/0xsoniclabs/bincount/common"
	"github.com/0xsoniclabs/bincount/common/largeint"
	"github.com/0xsoniclabs/bincount/storage"
	"google.golang.org/protobuf/encoding/protowire"
)

// A histogram is encoded as a protobuf wire-format message
//
//	message Histogram {
//	  uint64 version = 1;       // currently 1
//	  repeated bytes axes = 2;  // axis encodings, in order
//	  repeated bytes bins = 3;  // largeint encodings, one per bin, row-major
//	}

const encodingVersion = 1

const (
	versionField protowire.Number = 1
	axesField    protowire.Number = 2
	binsField    protowire.Number = 3
)

var (
	// ErrUnsupportedVersion is returned when decoding a histogram encoded in
	// an unknown format version.
	ErrUnsupportedVersion = errors.New("histogram: unsupported encoding version")
	// ErrMalformed is returned when decoding data that is not a valid encoding.
	ErrMalformed = errors.New("histogram: malformed encoding")
)

var countSerializer common.Serializer[largeint.Int] = largeint.Serializer{}

// Marshal encodes the axes and counts of h.
func (h *Histogram) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, versionField, protowire.VarintType)
	b = protowire.AppendVarint(b, encodingVersion)
	for _, a := range h.axes {
		data, err := axis.Marshal(a)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, axesField, protowire.BytesType)
		b = protowire.AppendBytes(b, data)
	}
	for bin := range h.storage.Size() {
		count, err := h.storage.Get(bin)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, binsField, protowire.BytesType)
		b = protowire.AppendBytes(b, countSerializer.ToBytes(count))
	}
	return b, nil
}

// Unmarshal decodes a histogram, placing its counts in a storage obtained from
// the given factory.
func Unmarshal(data []byte, factory storage.Factory) (*Histogram, error) {
	var (
		version    uint64
		hasVersion bool
		axes       []axis.Axis
		counts     [][]byte
	)
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case num == versionField && typ == protowire.VarintType:
			version, n = protowire.ConsumeVarint(data)
			hasVersion = true
		case num == axesField && typ == protowire.BytesType:
			var raw []byte
			raw, n = protowire.ConsumeBytes(data)
			if n >= 0 {
				a, err := axis.Unmarshal(raw)
				if err != nil {
					return nil, fmt.Errorf("%w: axis %d: %w", ErrMalformed, len(axes), err)
				}
				axes = append(axes, a)
			}
		case num == binsField && typ == protowire.BytesType:
			var raw []byte
			raw, n = protowire.ConsumeBytes(data)
			counts = append(counts, raw)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]
	}
	if !hasVersion {
		return nil, fmt.Errorf("%w: missing version", ErrMalformed)
	}
	if version != encodingVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	size, err := binCount(axes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(counts) != size {
		return nil, fmt.Errorf("%w: %d counts for %d bins", ErrMalformed, len(counts), size)
	}
	res, err := New(axes, factory)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	for bin, raw := range counts {
		count, err := countSerializer.FromBytes(raw)
		if err != nil {
			res.Reset()
			return nil, fmt.Errorf("%w: bin %d: %w", ErrMalformed, bin, err)
		}
		if count.EqualUint64(0) {
			continue
		}
		if err := res.storage.Add(bin, &count); err != nil {
			res.Reset()
			return nil, err
		}
	}
	return res, nil
}
