// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package provision implements the key-writing operations spec §1 places
// outside the crypto core proper ("keys are created/updated by commands
// outside this core and consumed read-only here"). It is the one writer of
// key-category flash blocks; internal/keystore only reads them back. It is
// driven by the cmd/keys CLI subcommands; records are written by cmd/records
// through flash.RecordStore directly.
package provision

import (
	"errors"
	"fmt"

	"github.com/secube/crypto-core/internal/flash"
	"github.com/secube/crypto-core/internal/keystore"
)

// Keys writes key entries into the flash-backed key store.
type Keys struct {
	blocks *flash.Store
}

// NewKeys wraps a flash.Store for provisioning key blocks.
func NewKeys(s *flash.Store) *Keys {
	return &Keys{blocks: s}
}

// Put writes (or replaces) the key entry with the given id, following the
// same write-new-then-delete-old sequence flash.RecordStore.Set uses so a
// concurrent reader never observes zero live keys for id.
func (k *Keys) Put(id uint32, material []byte, validity uint32, name string) error {
	if id == keystore.KeyInvalid {
		return fmt.Errorf("provision: key id %#x is reserved (KEY_INVALID)", id)
	}

	buf, err := keystore.Encode(keystore.Entry{ID: id, Material: material, Validity: validity, Name: name})
	if err != nil {
		return err
	}

	prev, err := k.blocks.Find(flash.CategoryKey, id)
	hadPrev := err == nil
	if err != nil && !errors.Is(err, flash.ErrNotFound) {
		return err
	}

	fresh, err := k.blocks.New(flash.CategoryKey, id, keystore.BlockSize)
	if err != nil {
		return err
	}
	if err := fresh.Write(0, buf[:]); err != nil {
		return err
	}

	if hadPrev {
		if err := prev.Delete(); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the key entry with the given id. It returns
// flash.ErrNotFound if no such entry exists.
func (k *Keys) Delete(id uint32) error {
	it, err := k.blocks.Find(flash.CategoryKey, id)
	if err != nil {
		return err
	}
	return it.Delete()
}

// Get reads back the key entry with the given id, for inspection by the
// provisioning CLI (the crypto core itself never exposes key material).
func (k *Keys) Get(id uint32) (keystore.Entry, error) {
	it, err := k.blocks.Find(flash.CategoryKey, id)
	if err != nil {
		if errors.Is(err, flash.ErrNotFound) {
			return keystore.Entry{}, keystore.ErrNotFound
		}
		return keystore.Entry{}, err
	}
	return keystore.Read(it)
}
