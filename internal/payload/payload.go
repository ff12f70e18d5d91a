// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package payload implements the host↔device wire envelope: AES-256-CBC
// encrypt-then-MAC with HMAC-SHA-256, key-scheduled from a base key via
// PBKDF2-HMAC-SHA-256 (spec §4.5). Its one user is the AES256HMACSHA256
// algorithm in internal/registry; internal/transport does not apply it, so
// command and response frames travel without this envelope.
//
// The encrypt-then-MAC ordering and the "wipe derived key material after
// splitting it" discipline follow the AES+HMAC page codec pattern in
// other_examples (mxk-go-sqlite, go1/sqlite3/codec/aes-hmac.go): cipher and
// MAC are derived once from a master key, and the codec always MACs the
// ciphertext, never the plaintext.
package payload

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

// Algo selects which cryptographic primitive Encrypt/Decrypt should apply to
// the data buffer.
type Algo uint16

const (
	AlgoAES256 Algo = iota
	AlgoCRC16
	AlgoPBKDF2
	AlgoSHA256
)

// ErrNotImplemented is returned for payload algorithms spec §4.5 and §9
// declare "reserved" / "to be implemented": implementations must reject them
// explicitly rather than leave their behavior undefined.
var ErrNotImplemented = errors.New("payload: algorithm not implemented")

// ErrUnknownAlgo is returned for any algo code outside the four reserved
// slots above.
var ErrUnknownAlgo = errors.New("payload: unrecognized algorithm")

// TagSize is the truncated authentication tag length written to/verified
// against auth (128 bits, per spec §4.5 "ordering" note).
const TagSize = 16

// Flag bits, mirrored from internal/wire to keep this package import-free of
// the dispatcher (the payload channel is a layer below command dispatch, not
// a consumer of it).
const (
	FlagEncrypt uint16 = 1 << 0
	FlagSign    uint16 = 1 << 1
)

// Channel is the per-direction AES-256-CBC + HMAC-SHA-256 context derived
// once from a base key (spec §3 "Payload crypto context").
type Channel struct {
	block   cipher.Block
	hmacKey []byte
}

// NewChannel derives aes_key‖hmac_key = PBKDF2-HMAC-SHA-256(baseKey, salt="",
// iterations=1, dkLen=64) and builds the AES-256 block cipher from the first
// half. The derived 64-byte material is zeroized after the split.
func NewChannel(baseKey []byte) (*Channel, error) {
	derived := pbkdf2.Key(baseKey, nil, 1, 64, sha256.New)
	defer zero(derived)

	block, err := aes.NewCipher(derived[:32])
	if err != nil {
		return nil, err
	}

	hmacKey := make([]byte, 32)
	copy(hmacKey, derived[32:])

	return &Channel{block: block, hmacKey: hmacKey}, nil
}

// Close zeroizes the HMAC key. The AES key lives only inside the standard
// library's cipher.Block and is not separately reachable.
func (c *Channel) Close() {
	zero(c.hmacKey)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Encrypt runs the send-path: encrypt-then-MAC. data is modified in place
// when FlagEncrypt is set. auth receives the truncated tag when FlagSign is
// set, or is zeroed otherwise.
func (c *Channel) Encrypt(auth *[TagSize]byte, iv []byte, data []byte, flags uint16, algo Algo) error {
	switch algo {
	case AlgoAES256:
		if flags&FlagEncrypt != 0 {
			if err := cbcCrypt(c.block, iv, data, true); err != nil {
				return err
			}
		}
	case AlgoCRC16, AlgoPBKDF2, AlgoSHA256:
		return ErrNotImplemented
	default:
		return ErrUnknownAlgo
	}

	if flags&FlagSign != 0 {
		tag := c.tag(iv, data)
		copy(auth[:], tag)
	} else {
		*auth = [TagSize]byte{}
	}
	return nil
}

// Decrypt runs the receive path: MAC-verify-then-decrypt. It returns false
// (and leaves data untouched) if FlagSign is set and the tag does not match
// — the frame must be dropped before any plaintext is exposed.
func (c *Channel) Decrypt(auth [TagSize]byte, iv []byte, data []byte, flags uint16, algo Algo) (bool, error) {
	if flags&FlagSign != 0 {
		tag := c.tag(iv, data)
		if subtle.ConstantTimeCompare(tag, auth[:]) != 1 {
			return false, nil
		}
	}

	switch algo {
	case AlgoAES256:
		if flags&FlagEncrypt != 0 {
			if err := cbcCrypt(c.block, iv, data, false); err != nil {
				return false, err
			}
		}
	case AlgoCRC16, AlgoPBKDF2, AlgoSHA256:
		return false, ErrNotImplemented
	default:
		return false, ErrUnknownAlgo
	}
	return true, nil
}

// tag computes HMAC-SHA-256(hmacKey, iv‖data) truncated to TagSize bytes.
func (c *Channel) tag(iv, data []byte) []byte {
	mac := hmac.New(sha256.New, c.hmacKey)
	mac.Write(iv)
	mac.Write(data)
	return mac.Sum(nil)[:TagSize]
}

func cbcCrypt(block cipher.Block, iv, data []byte, encrypt bool) error {
	if len(iv) != aes.BlockSize {
		return errors.New("payload: iv must be one AES block")
	}
	if len(data)%aes.BlockSize != 0 {
		return errors.New("payload: data must be a whole number of AES blocks")
	}
	ivCopy := append([]byte(nil), iv...)
	if encrypt {
		cipher.NewCBCEncrypter(block, ivCopy).CryptBlocks(data, data)
	} else {
		cipher.NewCBCDecrypter(block, ivCopy).CryptBlocks(data, data)
	}
	return nil
}
