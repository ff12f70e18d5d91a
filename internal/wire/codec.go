// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package wire

import "encoding/binary"

// RoundUp16 rounds n up to the next multiple of 16, matching the 16-byte
// padding boundary used by crypto_update's request layout.
func RoundUp16(n int) int {
	return (n + 15) &^ 15
}

// PutU16 / PutU32 write little-endian integers into buf at off.
func PutU16(buf []byte, off int, v uint16) { binary.LittleEndian.PutUint16(buf[off:], v) }
func PutU32(buf []byte, off int, v uint32) { binary.LittleEndian.PutUint32(buf[off:], v) }

// U16 / U32 read little-endian integers from buf at off.
func U16(buf []byte, off int) uint16 { return binary.LittleEndian.Uint16(buf[off:]) }
func U32(buf []byte, off int) uint32 { return binary.LittleEndian.Uint32(buf[off:]) }
