// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package session implements the fixed-capacity session arena: a textbook
// arena-with-handles allocator (spec §9 "Arena + index") giving each open
// crypto/MAC operation a stable small-integer handle bounds-checked on every
// use, with a fixed total byte budget standing in for the firmware's fixed
// context memory pool.
package session

import "github.com/secube/crypto-core/internal/registry"

// Max is the default session capacity (spec §6 constants, SESSIONS_MAX),
// used by New when no explicit capacity is configured.
const Max = 16

// BytePool is the default total context-byte budget shared by all live
// sessions, standing in for the firmware's fixed arena memory region, used
// by New when no explicit pool size is configured.
const BytePool = 4096

type slot struct {
	used bool
	algo uint16
	ctx  registry.Context
	size int
}

// Arena is the fixed-capacity session table. The zero value is not usable;
// construct with New or NewSized. Callers (the command dispatcher) serialize
// all access — the arena itself is not safe for concurrent use, matching
// spec §5's single-threaded cooperative dispatch model.
type Arena struct {
	slots    []slot
	bytePool int
	poolUsed int
}

// New returns an empty arena sized to the default Max/BytePool constants.
func New() *Arena {
	return NewSized(Max, BytePool)
}

// NewSized returns an empty arena with the given session capacity and byte
// pool budget, as dialed in by ArenaConfig. sessions/bytePool <= 0 fall back
// to the Max/BytePool defaults.
func NewSized(sessions, bytePool int) *Arena {
	if sessions <= 0 {
		sessions = Max
	}
	if bytePool <= 0 {
		bytePool = BytePool
	}
	return &Arena{slots: make([]slot, sessions), bytePool: bytePool}
}

// Cap returns the arena's session capacity, the upper bound a caller must
// check sid against before indexing.
func (a *Arena) Cap() uint32 {
	return uint32(len(a.slots))
}

// Allocate reserves the smallest free session id whose requested size (the
// descriptor's declared CtxSize) fits in the remaining byte pool, and binds
// it to algo/ctx. It returns false if the arena or the byte pool is
// exhausted (ERR_MEMORY at the caller).
func (a *Arena) Allocate(algo uint16, ctx registry.Context, size int) (sid uint32, ok bool) {
	if a.poolUsed+size > a.bytePool {
		return 0, false
	}
	for i := range a.slots {
		if !a.slots[i].used {
			a.slots[i] = slot{used: true, algo: algo, ctx: ctx, size: size}
			a.poolUsed += size
			return uint32(i), true
		}
	}
	return 0, false
}

// Context returns the backing Context for sid, or false if sid is out of
// range or not currently allocated.
func (a *Arena) Context(sid uint32) (registry.Context, bool) {
	if sid >= a.Cap() || !a.slots[sid].used {
		return nil, false
	}
	return a.slots[sid].ctx, true
}

// Algo returns the algorithm id a live session was opened with, or false if
// sid is not currently allocated.
func (a *Arena) Algo(sid uint32) (uint16, bool) {
	if sid >= a.Cap() || !a.slots[sid].used {
		return 0, false
	}
	return a.slots[sid].algo, true
}

// Free releases sid back to the pool. Freeing an sid that is not currently
// allocated is a caller bug (spec §4.2: "idempotent on an already-free slot
// is undefined and should be avoided by callers"); Free guards against it
// defensively rather than corrupting poolUsed.
func (a *Arena) Free(sid uint32) {
	if sid >= a.Cap() || !a.slots[sid].used {
		return
	}
	a.poolUsed -= a.slots[sid].size
	a.slots[sid] = slot{}
}
