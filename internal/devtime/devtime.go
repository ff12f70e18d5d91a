// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package devtime implements the device time authority: a process-wide
// monotonic counter with an initialized flag, used only by key-validity
// checks (spec §3 "Device time", §4.6 state machine). It is gathered into a
// single struct per spec §9's steer away from package-level globals.
package devtime

import "sync/atomic"

// Authority is the device time authority. The zero value starts
// Uninitialized.
type Authority struct {
	now  atomic.Uint32
	init atomic.Bool
}

// New returns an Uninitialized authority.
func New() *Authority {
	return &Authority{}
}

// Set installs devtime as the current device time and marks the authority
// initialized (crypto_set_time, spec §4.4.3).
func (a *Authority) Set(devtime uint32) {
	a.now.Store(devtime)
	a.init.Store(true)
}

// Now returns the current device time and whether the authority has ever
// been Set. Validity checks must fail closed when initialized is false.
func (a *Authority) Now() (now uint32, initialized bool) {
	return a.now.Load(), a.init.Load()
}

// Expired reports whether validity (a key's expiry timestamp) has passed,
// fail-closed: an uninitialized authority always reports expired, matching
// spec §4.4.1's "key.validity < now or device time is uninitialized ⇒
// ERR_EXPIRED".
func (a *Authority) Expired(validity uint32) bool {
	now, initialized := a.Now()
	if !initialized {
		return true
	}
	return validity < now
}
