// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

// TableSpace divides the key space of the database. Every key starts with the
// byte of its table space.
type TableSpace byte

const (
	// HistogramTable holds the records of histograms, keyed by name.
	HistogramTable TableSpace = 'H'
)

// DbKey is a key of the database: the table space followed by the name.
type DbKey []byte

// ToDBKey creates the database key of a name within the given table space.
func (t TableSpace) ToDBKey(name string) DbKey {
	res := make(DbKey, 1+len(name))
	res[0] = byte(t)
	copy(res[1:], name)
	return res
}

// Name returns the name part of the key.
func (k DbKey) Name() string {
	return string(k[1:])
}
