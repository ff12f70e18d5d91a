// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package wire

// Flags bits shared by crypto_update and the payload channel (spec §6).
const (
	// FlagEncrypt requests the AES step of the payload channel. The
	// registered crypto_update algorithms do not read it: their cipher
	// direction is fixed by the crypto_init mode.
	FlagEncrypt uint16 = 1 << 0
	// FlagSign requests the payload channel attach/verify its MAC, or
	// selects "do the MAC half" for a combined cipher+MAC algorithm.
	FlagSign uint16 = 1 << 1
	// FlagFinit instructs crypto_update to finalize and free the session
	// after this call, regardless of output size.
	FlagFinit uint16 = 1 << 2
)

// Mode selectors for crypto_init (algorithm-specific meaning; block
// ciphers use these to pick a direction).
const (
	ModeCBCEncrypt uint16 = 0
	ModeCBCDecrypt uint16 = 1
)
