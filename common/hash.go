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

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// HashSize is the size of a Hash in bytes.
const HashSize = 32

// Hash is a Keccak-256 digest.
type Hash [HashSize]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Keccak256 computes the Keccak-256 hash of the concatenation of the given data.
func Keccak256(data ...[]byte) Hash {
	hasher := sha3.NewLegacyKeccak256()
	for _, d := range data {
		hasher.Write(d)
	}
	var res Hash
	hasher.Sum(res[:0])
	return res
}
