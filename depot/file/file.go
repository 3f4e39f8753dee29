// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package file provides a depot.Store keeping all records in memory and
// persisting them as a single snapshot file. The file is read when the store
// is opened and rewritten on every flush.
package file

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"unsafe"

	"github.com/0xsoniclabs/bincount/common"
	"github.com/0xsoniclabs/bincount/depot"
)

// Magic number of the snapshot file format.
const storeMagic uint32 = 0xB1C0DE01

// maxFieldSize limits the size of keys and records read from a file.
const maxFieldSize = 1 << 30

// fileName is the name of the snapshot file within the store directory.
const fileName = "depot.dat"

// Store is a depot.Store backed by a snapshot file.
type Store struct {
	data  map[string][]byte
	file  string
	dirty bool
}

// OpenStore opens the store in the given directory, creating it if needed.
func OpenStore(path string) (*Store, error) {
	file := filepath.Join(path, fileName)
	res := &Store{
		data: map[string][]byte{},
		file: file,
	}

	// Load existing records from disk if available.
	if _, err := os.Stat(file); err == nil {
		file, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open existing depot file: %w", err)
		}
		err = errors.Join(res.load(bufio.NewReader(file)), file.Close())
		if err != nil {
			return nil, fmt.Errorf("failed to load existing depot file: %w", err)
		}
		return res, nil
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create directory for depot file: %w", err)
	}
	res.dirty = true
	return res, res.Flush()
}

func (s *Store) Set(key string, value []byte) error {
	s.data[key] = slices.Clone(value)
	s.dirty = true
	return nil
}

func (s *Store) Get(key string) ([]byte, error) {
	value, found := s.data[key]
	if !found {
		return nil, depot.ErrNotFound
	}
	return slices.Clone(value), nil
}

func (s *Store) Delete(key string) error {
	if _, found := s.data[key]; found {
		delete(s.data, key)
		s.dirty = true
	}
	return nil
}

func (s *Store) Keys() ([]string, error) {
	return slices.Sorted(maps.Keys(s.data)), nil
}

func (s *Store) Flush() error {
	if !s.dirty {
		return nil
	}
	file, err := os.Create(s.file)
	if err != nil {
		return fmt.Errorf("failed to open depot file for writing: %w", err)
	}
	buffer := bufio.NewWriter(file)
	err = errors.Join(
		s.store(buffer),
		buffer.Flush(),
		file.Close(),
	)
	if err == nil {
		s.dirty = false
	}
	return err
}

func (s *Store) Close() error {
	return s.Flush()
}

func (s *Store) GetMemoryFootprint() *common.MemoryFootprint {
	size := unsafe.Sizeof(*s)
	for key, value := range s.data {
		size += unsafe.Sizeof(key) + uintptr(len(key)) + unsafe.Sizeof(value) + uintptr(len(value))
	}
	res := common.NewMemoryFootprint(size)
	res.SetNote(fmt.Sprintf("(records: %d)", len(s.data)))
	return res
}

// store exports all records to a binary writer, sorted by key such that the
// output is deterministic.
func (s *Store) store(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, storeMagic); err != nil {
		return err
	}
	keys := slices.Sorted(maps.Keys(s.data))
	if err := binary.Write(w, binary.BigEndian, uint32(len(keys))); err != nil {
		return err
	}
	for _, key := range keys {
		for _, field := range [][]byte{[]byte(key), s.data[key]} {
			if err := binary.Write(w, binary.BigEndian, uint32(len(field))); err != nil {
				return err
			}
			if _, err := w.Write(field); err != nil {
				return err
			}
		}
	}
	return nil
}

// load imports all records from a binary reader.
func (s *Store) load(r io.Reader) error {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return err
	}
	if magic != storeMagic {
		return fmt.Errorf("invalid depot file magic number: %x", magic)
	}
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return err
	}
	for range count {
		key, err := readField(r)
		if err != nil {
			return err
		}
		value, err := readField(r)
		if err != nil {
			return err
		}
		s.data[string(key)] = value
	}
	return nil
}

func readField(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	if length > maxFieldSize {
		return nil, fmt.Errorf("depot file field of %d bytes exceeds limit", length)
	}
	res := make([]byte, length)
	if _, err := io.ReadFull(r, res); err != nil {
		return nil, err
	}
	return res, nil
}
