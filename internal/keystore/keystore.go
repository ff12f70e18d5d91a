// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package keystore implements spec §4.3's key lookup: find/read a key entry
// by id. It does not check validity; the crypto_init handler compares the
// entry's Validity against the device time authority. Keys are
// created/updated by commands outside the crypto core (spec §1) — this
// package is a read-only consumer of whatever a provisioning actor (here,
// the cmd/keys CLI, internal/provision) wrote to the same flash-backed
// store.
package keystore

import (
	"encoding/binary"
	"errors"

	"github.com/secube/crypto-core/internal/flash"
)

// KeyInvalid is the sentinel key id meaning "no key" (spec §3).
const KeyInvalid uint32 = 0xFFFFFFFF

// KeyDataMax is the maximum raw key material length (spec §6 constants).
const KeyDataMax = 64

// NameMax is the maximum stored key name length.
const NameMax = 32

const blockSize = 4 /* validity */ + 2 /* material len */ + KeyDataMax + 2 /* name len */ + NameMax

// Entry is a key entry as read from flash (spec §3 "Key entry").
type Entry struct {
	ID       uint32
	Material []byte
	Validity uint32
	Name     string
}

// Store is a read-only view over the flash-backed key entries. Writes go
// through internal/provision, which is explicitly outside the crypto core.
type Store struct {
	blocks *flash.Store
}

// NewStore wraps a flash.Store for key-category blocks.
func NewStore(s *flash.Store) *Store {
	return &Store{blocks: s}
}

// ErrNotFound means no key with the given id exists.
var ErrNotFound = errors.New("keystore: key not found")

// Find locates the key entry with the given id.
func (s *Store) Find(id uint32) (*flash.Iterator, error) {
	it, err := s.blocks.Find(flash.CategoryKey, id)
	if errors.Is(err, flash.ErrNotFound) {
		return nil, ErrNotFound
	}
	return it, err
}

// Read decodes the key entry pointed to by it.
func Read(it *flash.Iterator) (Entry, error) {
	buf := make([]byte, blockSize)
	if err := it.Read(buf); err != nil {
		return Entry{}, err
	}
	return decode(it.Type(), buf), nil
}

func decode(id uint32, buf []byte) Entry {
	off := 0
	validity := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	matLen := binary.LittleEndian.Uint16(buf[off:])
	off += 2
	material := append([]byte(nil), buf[off:off+int(matLen)]...)
	off += KeyDataMax
	nameLen := binary.LittleEndian.Uint16(buf[off:])
	off += 2
	name := string(buf[off : off+int(nameLen)])

	return Entry{ID: id, Material: material, Validity: validity, Name: name}
}

// Encode packs an Entry into its fixed-size flash block payload. Exported
// for internal/provision, the one caller outside this package allowed to
// write key blocks.
func Encode(e Entry) ([blockSize]byte, error) {
	var out [blockSize]byte
	if len(e.Material) > KeyDataMax {
		return out, errors.New("keystore: key material exceeds KEY_DATA_MAX")
	}
	if len(e.Name) > NameMax {
		return out, errors.New("keystore: key name exceeds NameMax")
	}

	off := 0
	binary.LittleEndian.PutUint32(out[off:], e.Validity)
	off += 4
	binary.LittleEndian.PutUint16(out[off:], uint16(len(e.Material)))
	off += 2
	copy(out[off:off+len(e.Material)], e.Material)
	off += KeyDataMax
	binary.LittleEndian.PutUint16(out[off:], uint16(len(e.Name)))
	off += 2
	copy(out[off:off+len(e.Name)], e.Name)

	return out, nil
}

// BlockSize is the fixed flash payload size of one key entry.
const BlockSize = blockSize
