// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package axis

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"
)

// Axes are encoded as protobuf wire-format messages
//
//	message Axis {
//	  uint32 kind = 1;
//	  uint32 version = 2;   // version of the kind's parameter layout
//	  string metadata = 3;
//	  sint64 start = 4;     // integer
//	  sint64 stop = 5;      // integer
//	  uint64 bins = 6;      // regular
//	  double lo = 7;        // regular
//	  double hi = 8;        // regular
//	}

var (
	// ErrUnknownKind is returned when decoding an axis of an unknown kind.
	ErrUnknownKind = errors.New("axis: unknown kind")
	// ErrIncompatibleKind is returned when decoding an axis of a kind the
	// caller does not accept.
	ErrIncompatibleKind = errors.New("axis: incompatible kind")
	// ErrUnsupportedVersion is returned when decoding an axis encoded with an
	// unknown parameter layout.
	ErrUnsupportedVersion = errors.New("axis: unsupported version")
	// ErrMalformed is returned when decoding invalid data.
	ErrMalformed = errors.New("axis: malformed encoding")
)

const (
	kindField protowire.Number = iota + 1
	versionField
	metadataField
	startField
	stopField
	binsField
	loField
	hiField
)

// versions lists the current parameter layout version of each kind.
var versions = map[Kind]uint64{
	KindBinary:  1,
	KindInteger: 1,
	KindRegular: 1,
}

// Marshal encodes the given axis.
func Marshal(a Axis) ([]byte, error) {
	version, found := versions[a.Kind()]
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, a.Kind())
	}
	var b []byte
	b = protowire.AppendTag(b, kindField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(a.Kind()))
	b = protowire.AppendTag(b, versionField, protowire.VarintType)
	b = protowire.AppendVarint(b, version)
	b = protowire.AppendTag(b, metadataField, protowire.BytesType)
	b = protowire.AppendString(b, a.Metadata())

	switch a := a.(type) {
	case *Integer:
		b = protowire.AppendTag(b, startField, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(a.start))
		b = protowire.AppendTag(b, stopField, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(a.stop))
	case *Regular:
		b = protowire.AppendTag(b, binsField, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.bins))
		b = protowire.AppendTag(b, loField, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(a.lo))
		b = protowire.AppendTag(b, hiField, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(a.hi))
	case *Binary:
	default:
		return nil, fmt.Errorf("%w: unsupported implementation %T", ErrUnknownKind, a)
	}
	return b, nil
}

// Unmarshal decodes an axis. If accepted kinds are given, axes of any other
// kind are rejected with ErrIncompatibleKind.
func Unmarshal(data []byte, accepted ...Kind) (Axis, error) {
	var (
		kind        Kind
		version     uint64
		meta        string
		start, stop int64
		bins        uint64
		lo, hi      float64
	)
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]
		var v uint64
		switch {
		case typ == protowire.VarintType && num <= binsField && num != metadataField:
			v, n = protowire.ConsumeVarint(data)
			switch num {
			case kindField:
				kind = Kind(v)
			case versionField:
				version = v
			case startField:
				start = protowire.DecodeZigZag(v)
			case stopField:
				stop = protowire.DecodeZigZag(v)
			case binsField:
				bins = v
			}
		case typ == protowire.Fixed64Type && (num == loField || num == hiField):
			v, n = protowire.ConsumeFixed64(data)
			if num == loField {
				lo = math.Float64frombits(v)
			} else {
				hi = math.Float64frombits(v)
			}
		case typ == protowire.BytesType && num == metadataField:
			meta, n = protowire.ConsumeString(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]
	}

	want, found := versions[kind]
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	if len(accepted) > 0 && !slices.Contains(accepted, kind) {
		return nil, fmt.Errorf("%w: got %v, accepting %v", ErrIncompatibleKind, kind, accepted)
	}
	if version != want {
		return nil, fmt.Errorf("%w: %v axis version %d", ErrUnsupportedVersion, kind, version)
	}

	var (
		res Axis
		err error
	)
	switch kind {
	case KindBinary:
		res = NewBinary(meta)
	case KindInteger:
		res, err = NewInteger(start, stop, meta)
	case KindRegular:
		if bins > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d bins", ErrMalformed, bins)
		}
		res, err = NewRegular(int(bins), lo, hi, meta)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return res, nil
}
