// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package crypto implements the four crypto command handlers (spec §4.4):
// crypto_init, crypto_update, crypto_set_time and crypto_list. Each handler
// follows the shared contract spec §4.4 describes — (req_bytes) ->
// (resp_bytes, status) — parsing fixed little-endian offsets and delegating
// the actual cryptographic work to the algorithm registry.
//
// Per spec §9's "Global mutable security_info" note, the handlers' state
// (arena, key lookup, device time) is gathered into one Dispatcher rather
// than package-level globals, and threaded through explicitly.
package crypto

import (
	"github.com/secube/crypto-core/internal/devtime"
	"github.com/secube/crypto-core/internal/keystore"
	"github.com/secube/crypto-core/internal/registry"
	"github.com/secube/crypto-core/internal/session"
	"github.com/secube/crypto-core/internal/wire"
)

// ReqMaxData is REQ1_MAX_DATA (spec §6): the transport's bound on the total
// size of a crypto_update request body.
const ReqMaxData = 4096

// Dispatcher owns the per-process mutable state the crypto commands act on:
// the session arena, the read-only key store, and the device time authority.
// A single command is processed to completion before the next is dequeued
// (spec §5); Dispatcher itself assumes that serialization and is not safe
// for concurrent use.
type Dispatcher struct {
	Arena *session.Arena
	Keys  *keystore.Store
	Time  *devtime.Authority

	// RequireLogin records whether an authenticated-login gate is wanted.
	// It defaults to false and is inert: no handler here and nothing in
	// internal/transport reads it, so setting it changes no behavior.
	RequireLogin bool
}

// New builds a Dispatcher over the given arena, key store and time
// authority.
func New(arena *session.Arena, keys *keystore.Store, t *devtime.Authority) *Dispatcher {
	return &Dispatcher{Arena: arena, Keys: keys, Time: t}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// --- crypto_init (spec §4.4.1) ---

const initReqSize = 2 + 2 + 4 // algo:u16, mode:u16, key_id:u32

// Init opens a new session for algo/mode, resolving key_id through the key
// store (or synthesizing an all-zero key for KEY_INVALID), and returns the
// 4-byte sid response on success.
func (d *Dispatcher) Init(req []byte) ([]byte, wire.Status) {
	if len(req) != initReqSize {
		return nil, wire.ErrParams
	}
	algo := wire.U16(req, 0)
	mode := wire.U16(req, 2)
	keyID := wire.U32(req, 4)

	desc, ok := registry.Lookup(algo)
	if !ok {
		return nil, wire.ErrParams
	}

	keyBuf := make([]byte, keystore.KeyDataMax)
	defer zero(keyBuf) // zeroized on every exit path, success or failure

	keyLen := keystore.KeyDataMax
	if keyID != keystore.KeyInvalid {
		it, err := d.Keys.Find(keyID)
		if err != nil {
			return nil, wire.ErrResource
		}
		entry, err := keystore.Read(it)
		if err != nil {
			return nil, wire.ErrHW
		}
		if d.Time.Expired(entry.Validity) {
			return nil, wire.ErrExpired
		}
		keyLen = copy(keyBuf, entry.Material)
	}

	ctx := desc.New()
	sid, ok := d.Arena.Allocate(algo, ctx, desc.CtxSize)
	if !ok {
		return nil, wire.ErrMemory
	}

	if status := ctx.Init(keyBuf[:keyLen], mode); status != wire.OK {
		d.Arena.Free(sid)
		return nil, status
	}

	resp := make([]byte, 4)
	wire.PutU32(resp, 0, sid)
	return resp, wire.OK
}

// --- crypto_update (spec §4.4.2) ---

// updateHeaderSize is the crypto_update header (sid, flags, d1_len, d2_len)
// padded to the 16-byte boundary spec §4.4.2 specifies.
const updateHeaderSize = 16

// Update advances session sid with datain1/datain2 under flags, writing the
// algorithm's output into the response. FINIT frees the session regardless
// of output size; any other handler failure leaves the session open for
// retry or explicit teardown.
func (d *Dispatcher) Update(req []byte) ([]byte, wire.Status) {
	if len(req) < updateHeaderSize {
		return nil, wire.ErrParams
	}
	sid := wire.U32(req, 0)
	flags := wire.U16(req, 4)
	d1Len := int(wire.U16(req, 6))
	d2Len := int(wire.U16(req, 8))

	d1LenPadded := wire.RoundUp16(d1Len)
	if updateHeaderSize+d1LenPadded+d2Len > ReqMaxData {
		return nil, wire.ErrParams
	}
	if len(req) < updateHeaderSize+d1LenPadded+d2Len {
		return nil, wire.ErrParams
	}

	if sid >= d.Arena.Cap() {
		return nil, wire.ErrResource
	}
	algo, ok := d.Arena.Algo(sid)
	if !ok {
		return nil, wire.ErrResource
	}
	if _, ok := registry.Lookup(algo); !ok {
		return nil, wire.ErrResource
	}
	ctx, ok := d.Arena.Context(sid)
	if !ok {
		return nil, wire.ErrResource
	}

	datain1 := req[updateHeaderSize : updateHeaderSize+d1Len]
	d2Start := updateHeaderSize + d1LenPadded
	datain2 := req[d2Start : d2Start+d2Len]

	// Scratch output buffer: input length plus slack for a trailing MAC
	// tag, the largest expansion any registered algorithm's Update adds.
	out := make([]byte, d1Len+2*registry.NameLen)
	outLen, status := ctx.Update(flags, datain1, datain2, out)
	if status != wire.OK {
		// crypto_update failures leave the session open (spec §7).
		return nil, status
	}

	if flags&wire.FlagFinit != 0 {
		d.Arena.Free(sid)
	}

	resp := make([]byte, updateHeaderSize+outLen)
	wire.PutU16(resp, 0, uint16(outLen))
	copy(resp[updateHeaderSize:], out[:outLen])
	return resp, wire.OK
}

// --- crypto_set_time (spec §4.4.3) ---

const setTimeReqSize = 4 // devtime:u32

// SetTime installs devtime as the device time authority and marks it
// initialized. It has no response body.
func (d *Dispatcher) SetTime(req []byte) wire.Status {
	if len(req) != setTimeReqSize {
		return wire.ErrParams
	}
	d.Time.Set(wire.U32(req, 0))
	return wire.OK
}

// --- crypto_list (spec §4.4.4) ---

// entrySize is one crypto_list algoinfo entry: name[16] ‖ type:u16 ‖
// block_size:u16 ‖ key_size:u16.
const entrySize = registry.NameLen + 2 + 2 + 2

// List walks the registry and emits (count, entries[]) for every slot with
// both init and update present.
func (d *Dispatcher) List(req []byte) ([]byte, wire.Status) {
	if len(req) != 0 {
		return nil, wire.ErrParams
	}
	entries := registry.List()

	resp := make([]byte, 2+entrySize*len(entries))
	wire.PutU16(resp, 0, uint16(len(entries)))

	off := 2
	for _, e := range entries {
		copy(resp[off:], e.Name[:])
		off += registry.NameLen
		wire.PutU16(resp, off, e.Type)
		off += 2
		wire.PutU16(resp, off, e.BlockSize)
		off += 2
		wire.PutU16(resp, off, e.KeySize)
		off += 2
	}
	return resp, wire.OK
}
