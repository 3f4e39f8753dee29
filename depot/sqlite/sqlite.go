// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package sqlite provides a depot.Store backed by an SQLite database file.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"unsafe"

	"github.com/0xsoniclabs/bincount/common"
	"github.com/0xsoniclabs/bincount/depot"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// fileName is the name of the database file within the store directory.
const fileName = "depot.sqlite"

const (
	createTable = `CREATE TABLE IF NOT EXISTS histograms (
		name   TEXT PRIMARY KEY,
		record BLOB NOT NULL
	)`
	upsertRecord = `INSERT INTO histograms(name, record) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET record = excluded.record`
	selectRecord = `SELECT record FROM histograms WHERE name = ?`
	deleteRecord = `DELETE FROM histograms WHERE name = ?`
	selectNames  = `SELECT name FROM histograms ORDER BY name`
)

// Store is a depot.Store keeping records in an SQLite table.
type Store struct {
	db     *sql.DB
	upsert *sql.Stmt
	get    *sql.Stmt
	delete *sql.Stmt
}

// OpenStore opens or creates the database in the given directory.
func OpenStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	file := filepath.Join(path, fileName)
	db, err := sql.Open("sqlite3", file+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", file, err)
	}
	res, err := prepare(db)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	logger.Debug("opened SQLite depot", zap.String("file", file))
	return res, nil
}

func prepare(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(createTable); err != nil {
		return nil, fmt.Errorf("failed to create histogram table: %w", err)
	}
	res := &Store{db: db}
	for _, stmt := range []struct {
		target **sql.Stmt
		query  string
	}{
		{&res.upsert, upsertRecord},
		{&res.get, selectRecord},
		{&res.delete, deleteRecord},
	} {
		prepared, err := db.Prepare(stmt.query)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to prepare statement: %w", err), res.closeStatements())
		}
		*stmt.target = prepared
	}
	return res, nil
}

func (s *Store) Set(key string, value []byte) error {
	_, err := s.upsert.Exec(key, value)
	return err
}

func (s *Store) Get(key string) ([]byte, error) {
	var res []byte
	err := s.get.QueryRow(key).Scan(&res)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, depot.ErrNotFound
	}
	return res, err
}

func (s *Store) Delete(key string) error {
	_, err := s.delete.Exec(key)
	return err
}

func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(selectNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		res = append(res, name)
	}
	return res, rows.Err()
}

// Flush is a no-op: every statement is committed when it completes.
func (s *Store) Flush() error {
	return nil
}

func (s *Store) Close() error {
	return errors.Join(s.closeStatements(), s.db.Close())
}

func (s *Store) closeStatements() error {
	var errs []error
	for _, stmt := range []*sql.Stmt{s.upsert, s.get, s.delete} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	return errors.Join(errs...)
}

func (s *Store) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*s))
	mf.SetNote(fmt.Sprintf("(open connections: %d)", s.db.Stats().OpenConnections))
	return mf
}
