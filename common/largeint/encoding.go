// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package largeint

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// An Int is encoded as a protobuf wire-format message
//
//	message Int {
//	  uint64 version = 1;          // currently 1
//	  repeated fixed64 words = 2;  // packed, least significant word first
//	}
//
// Unknown fields are skipped. Decoding enforces the canonical form.

const encodingVersion = 1

const (
	versionField protowire.Number = 1
	wordsField   protowire.Number = 2
)

var (
	// ErrUnsupportedVersion is returned when decoding an Int encoded in an
	// unknown format version.
	ErrUnsupportedVersion = errors.New("largeint: unsupported encoding version")
	// ErrMalformed is returned when decoding data that is not a valid encoding.
	ErrMalformed = errors.New("largeint: malformed encoding")
)

// AppendBinary appends the encoding of x to b.
func (x *Int) AppendBinary(b []byte) ([]byte, error) {
	words := x.digits()
	b = protowire.AppendTag(b, versionField, protowire.VarintType)
	b = protowire.AppendVarint(b, encodingVersion)
	b = protowire.AppendTag(b, wordsField, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(len(words)*wordSize))
	for _, w := range words {
		b = protowire.AppendFixed64(b, w)
	}
	return b, nil
}

// MarshalBinary encodes x.
func (x *Int) MarshalBinary() ([]byte, error) {
	return x.AppendBinary(make([]byte, 0, 4+len(x.digits())*wordSize))
}

// UnmarshalBinary restores x from the given encoding. Encodings violating the
// canonical form are rejected with ErrEmpty or ErrNonCanonical. If memory for
// the words can not be obtained from the allocator of x, an error wrapping
// ErrAllocation is returned. On any failure x is left unchanged.
func (x *Int) UnmarshalBinary(data []byte) error {
	words, err := decodeWords(data)
	if err != nil {
		return err
	}
	if err := x.extend(len(words)); err != nil {
		return err
	}
	x.words = x.words[:len(words)]
	copy(x.words, words)
	return nil
}

func decodeWords(data []byte) ([]uint64, error) {
	var (
		version    uint64
		hasVersion bool
		words      []uint64
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
		case num == wordsField && typ == protowire.BytesType:
			var packed []byte
			packed, n = protowire.ConsumeBytes(data)
			if n >= 0 {
				if len(packed)%wordSize != 0 {
					return nil, fmt.Errorf("%w: word data of %d bytes", ErrMalformed, len(packed))
				}
				for len(packed) > 0 {
					w, m := protowire.ConsumeFixed64(packed)
					words = append(words, w)
					packed = packed[m:]
				}
			}
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
	if err := checkCanonical(words); err != nil {
		return nil, err
	}
	return words, nil
}

// Serializer encodes and decodes Ints for use in generic containers.
type Serializer struct{}

func (Serializer) ToBytes(value Int) []byte {
	res, _ := value.MarshalBinary()
	return res
}

func (Serializer) FromBytes(data []byte) (Int, error) {
	var res Int
	if err := res.UnmarshalBinary(data); err != nil {
		return Int{}, err
	}
	return res, nil
}
