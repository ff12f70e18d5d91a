// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package flash emulates the NOR-flash-backed block store spec §3/§4.3
// assumes as a collaborator (the `flash_it_*` iteration/write/delete
// primitives), using gorm + SQLite as the durable backing medium (the
// teacher's own persistence stack, github.com/fido-device-onboard/go-fdo-server).
// Above this file, internal/flash/record.go and internal/keystore reconstruct
// the record/key semantics exactly as spec.md describes them; only the
// physical medium differs.
package flash

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Category distinguishes the two block kinds the core stores: typed records
// (§4.3 record_find/record_set) and key entries (§4.3 key_find/key_read).
// Real flash has no such field — both live in the same linearly-scanned
// region — but separating them here avoids a record type and a key id
// colliding in the same backing table.
type Category uint8

const (
	CategoryRecord Category = iota
	CategoryKey
)

// block is the gorm row backing one flash block.
type block struct {
	ID       uint `gorm:"primaryKey"`
	Category Category
	Type     uint32 `gorm:"index"`
	Data     []byte
}

// Store is the durable block store. The zero value is not usable; construct
// with Open.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if absent) a SQLite-backed flash emulation at dsn.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&block{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Iterator positions on one block, mirroring the flash layer's `type`
// field (spec §6). It has no `next`: Store.Find does the scan and returns an
// Iterator already positioned at a match, or ErrNotFound.
type Iterator struct {
	store *Store
	row   block
}

// ErrNotFound is returned by Find when no live block of the requested
// type/category exists.
var ErrNotFound = errors.New("flash: no matching block")

// Find performs the flash iterator's linear scan (`record_find`/`key_find`):
// it returns the first live block of the given category and type.
func (s *Store) Find(cat Category, typ uint32) (*Iterator, error) {
	var row block
	err := s.db.Where("category = ? AND type = ?", cat, typ).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Iterator{store: s, row: row}, nil
}

// New allocates a fresh block of the given category/type and size, mirroring
// the iterator's `new(type, size)` primitive. The caller must Write the
// payload before any previous block of the same type is deleted — see
// RecordStore.Set for the full write-new-then-delete-old sequence.
func (s *Store) New(cat Category, typ uint32, size int) (*Iterator, error) {
	row := block{Category: cat, Type: typ, Data: make([]byte, size)}
	if err := s.db.Create(&row).Error; err != nil {
		return nil, err
	}
	return &Iterator{store: s, row: row}, nil
}

// Type returns the block's type field.
func (it *Iterator) Type() uint32 { return it.row.Type }

// Read copies the block's payload into out, failing if out is larger than
// the stored payload.
func (it *Iterator) Read(out []byte) error {
	if len(out) > len(it.row.Data) {
		return errors.New("flash: read past end of block")
	}
	copy(out, it.row.Data)
	return nil
}

// Write copies data into the block payload at offset and persists it,
// mirroring the iterator's `write(offset, bytes, len)` primitive.
func (it *Iterator) Write(offset int, data []byte) error {
	if offset+len(data) > len(it.row.Data) {
		return errors.New("flash: write past end of block")
	}
	copy(it.row.Data[offset:], data)
	return it.store.db.Save(&it.row).Error
}

// Delete invalidates the block, mirroring the iterator's `delete` primitive.
func (it *Iterator) Delete() error {
	return it.store.db.Delete(&it.row).Error
}
