// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

// Serializer converts values of type V to and from a byte representation.
// Unlike fixed-size encodings, the length of the representation may depend on
// the value.
type Serializer[V any] interface {
	// ToBytes encodes the given value.
	ToBytes(V) []byte
	// FromBytes decodes a value, failing if the data is not a valid encoding.
	FromBytes([]byte) (V, error)
}
