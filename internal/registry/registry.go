// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package registry holds the static algorithm descriptor table: a fixed set
// of slots, each naming an algorithm's context factory, declared context
// budget and wire metadata. spec §9 calls this out as a function-pointer
// table that "maps cleanly to a closed sum type with one variant per
// algorithm, each holding its own context shape" — this package is that sum
// type, registered at package load the way the go-fdo kex package populates
// its CipherSuite table from init() (github.com/fido-device-onboard/go-fdo/kex).
package registry

import "github.com/secube/crypto-core/internal/wire"

// AlgoMax is the fixed number of registry slots (spec §6 constants).
const AlgoMax = 8

// NameLen is the fixed width of an algorithm's wire-visible name.
const NameLen = 16

// Category classifies what an algorithm does, used only for crypto_list
// metadata and is otherwise opaque to the dispatcher.
type Category uint16

const (
	BlockCipher Category = iota
	Digest
	BlockCipherAuth
)

// Context is one open session's algorithm-specific state. The arena holds
// Contexts by handle; the dispatcher never inspects a Context's internals,
// only calls Init/Update through this interface — the Go rendering of
// spec's "opaque context bytes of descriptor.ctx_size".
type Context interface {
	// Init prepares the context from key material and a mode selector
	// (meaning is algorithm-specific, e.g. encrypt vs decrypt direction).
	// A non-OK status means the session must not be made visible to the
	// caller; the arena slot is freed by whoever called Init.
	Init(key []byte, mode uint16) wire.Status

	// Update advances the context with datain1/datain2 under flags,
	// writing output into out and returning how many bytes were written.
	Update(flags uint16, datain1, datain2 []byte, out []byte) (outLen int, status wire.Status)
}

// Descriptor is the immutable, static metadata and entry point for one
// algorithm (spec §3 "Algorithm descriptor").
type Descriptor struct {
	ID        uint16
	Name      string
	Category  Category
	BlockSize uint16
	KeySize   uint16
	// CtxSize is the declared byte budget charged against the session
	// arena's fixed pool for one instance of this algorithm's context.
	CtxSize int
	// New constructs a fresh, zeroed Context for a session. Nil on an
	// empty sentinel slot.
	New func() Context
}

// Registered reports whether a descriptor has a constructor; an empty
// sentinel slot (zero value) is never Registered.
func (d Descriptor) Registered() bool {
	return d.New != nil
}

// paddedName returns Name truncated/zero-padded to NameLen bytes, the
// wire-visible form used by crypto_list.
func (d Descriptor) paddedName() [NameLen]byte {
	var out [NameLen]byte
	copy(out[:], d.Name)
	return out
}

// table is the fixed ALGO_MAX-slot array; slots past the registered
// algorithms remain empty sentinels (zero Descriptor: nil New).
var table [AlgoMax]Descriptor

// register installs d at its own ID. Called only from this package's
// algorithm implementation files via init(), mirroring the kex package's
// "populate from init()" idiom.
func register(d Descriptor) {
	if d.ID >= AlgoMax {
		panic("registry: algorithm id out of range")
	}
	table[d.ID] = d
}

// Lookup returns the descriptor at id. The second return is false if id is
// out of range or the slot is an empty sentinel — both cases the dispatcher
// must treat as "unregistered".
func Lookup(id uint16) (Descriptor, bool) {
	if id >= AlgoMax {
		return Descriptor{}, false
	}
	d := table[id]
	return d, d.Registered()
}

// Entry is the wire-visible summary of a registered algorithm, as emitted by
// crypto_list.
type Entry struct {
	Name      [NameLen]byte
	Type      uint16
	BlockSize uint16
	KeySize   uint16
}

// List walks the registry in slot order and returns an Entry for every slot
// with a registered constructor.
func List() []Entry {
	entries := make([]Entry, 0, AlgoMax)
	for _, d := range table {
		if !d.Registered() {
			continue
		}
		entries = append(entries, Entry{
			Name:      d.paddedName(),
			Type:      uint16(d.Category),
			BlockSize: d.BlockSize,
			KeySize:   d.KeySize,
		})
	}
	return entries
}
