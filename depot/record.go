// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package depot

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/snappy"
)

// ErrCorrupt is returned when a stored record fails its integrity check.
var ErrCorrupt = errors.New("depot: corrupt record")

// checksumSize is the number of bytes of the checksum preceding a record.
const checksumSize = 8

// encodeRecord frames a payload for storage: an xxhash64 checksum of the
// payload, big-endian, followed by the snappy-compressed payload.
func encodeRecord(payload []byte) []byte {
	res := make([]byte, checksumSize+snappy.MaxEncodedLen(len(payload)))
	binary.BigEndian.PutUint64(res, xxhash.Sum64(payload))
	compressed := snappy.Encode(res[checksumSize:], payload)
	return res[:checksumSize+len(compressed)]
}

// decodeRecord restores the payload of a record produced by encodeRecord.
func decodeRecord(record []byte) ([]byte, error) {
	if len(record) < checksumSize {
		return nil, fmt.Errorf("%w: record of %d bytes", ErrCorrupt, len(record))
	}
	payload, err := snappy.Decode(nil, record[checksumSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	want := binary.BigEndian.Uint64(record)
	if got := xxhash.Sum64(payload); got != want {
		return nil, fmt.Errorf("%w: checksum %016x, expected %016x", ErrCorrupt, got, want)
	}
	return payload, nil
}
