// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package ldb provides a depot.Store backed by LevelDB.
package ldb

import (
	"errors"
	"fmt"
	"strconv"
	"unsafe"

	"github.com/0xsoniclabs/bincount/common"
	"github.com/0xsoniclabs/bincount/depot"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

// Store is a depot.Store keeping records in a LevelDB database.
type Store struct {
	db     *leveldb.DB
	table  TableSpace
	logger *zap.Logger
}

// OpenStore opens or creates the LevelDB database in the given directory.
func OpenStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := leveldb.OpenFile(path, &opt.Options{
		BlockCacheCapacity: 16 * opt.MiB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB at %s: %w", path, err)
	}
	logger.Debug("opened LevelDB depot", zap.String("path", path))
	return &Store{
		db:     db,
		table:  HistogramTable,
		logger: logger,
	}, nil
}

func (s *Store) Set(key string, value []byte) error {
	return s.db.Put(s.table.ToDBKey(key), value, nil)
}

func (s *Store) Get(key string) ([]byte, error) {
	value, err := s.db.Get(s.table.ToDBKey(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, depot.ErrNotFound
	}
	return value, err
}

func (s *Store) Delete(key string) error {
	return s.db.Delete(s.table.ToDBKey(key), nil)
}

func (s *Store) Keys() ([]string, error) {
	var res []string
	iter := s.db.NewIterator(util.BytesPrefix([]byte{byte(s.table)}), nil)
	defer iter.Release()
	for iter.Next() {
		res = append(res, DbKey(iter.Key()).Name())
	}
	return res, iter.Error()
}

// Flush is a no-op: writes reach the LevelDB journal immediately.
func (s *Store) Flush() error {
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetMemoryFootprint provides the size of the store in memory in bytes,
// including the block cache of the database.
func (s *Store) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*s))
	cached := uint64(0)
	if value, err := s.db.GetProperty("leveldb.cachedblock"); err == nil {
		cached, _ = strconv.ParseUint(value, 10, 64)
	}
	mf.AddChild("blockCache", common.NewMemoryFootprint(uintptr(cached)))
	return mf
}
