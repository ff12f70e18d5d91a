// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package registry

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"hash"

	"github.com/secube/crypto-core/internal/wire"
)

func init() {
	register(Descriptor{
		ID:        3,
		Name:      "AesHmacSha256s",
		Category:  BlockCipherAuth,
		BlockSize: uint16(aes.BlockSize),
		// KeySize is the crypto_list display field, which the reference
		// algorithm table fills with a single AES-256 key width even
		// though Init here takes a 32-byte AES key concatenated with a
		// 32-byte HMAC key.
		KeySize: 32,
		CtxSize: 320,
		New:       func() Context { return &aesHmacStreamContext{} },
	})
}

// aesHmacStreamContext is the streaming encrypt-then-MAC variant: every
// Update call encrypts its input and folds the ciphertext into a MAC that
// spans the whole session, emitting the accumulated tag only at FINIT. It is
// the session-oriented sibling of the payload channel's per-frame envelope
// (internal/payload), grounded on the same encrypt-then-MAC ordering as the
// AES+HMAC SQLite page codec (other_examples, mxk-go-sqlite aes-hmac.go).
type aesHmacStreamContext struct {
	cbc     cipher.BlockMode
	mac     hash.Hash
	sign    bool
	encrypt bool
}

func (c *aesHmacStreamContext) Init(key []byte, mode uint16) wire.Status {
	if len(key) != 64 {
		return wire.ErrParams
	}
	aesKey, hmacKey := key[:32], key[32:]

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return wire.ErrHW
	}
	var iv [aes.BlockSize]byte
	switch mode {
	case wire.ModeCBCEncrypt:
		c.cbc = cipher.NewCBCEncrypter(block, iv[:])
		c.encrypt = true
	case wire.ModeCBCDecrypt:
		c.cbc = cipher.NewCBCDecrypter(block, iv[:])
	default:
		return wire.ErrParams
	}
	c.mac = hmac.New(sha256.New, hmacKey)
	return wire.OK
}

func (c *aesHmacStreamContext) Update(flags uint16, datain1, datain2 []byte, out []byte) (int, wire.Status) {
	if len(datain1)%aes.BlockSize != 0 {
		return 0, wire.ErrParams
	}

	outLen := 0
	if len(datain1) > 0 {
		if len(datain1) > len(out) {
			return 0, wire.ErrParams
		}
		c.cbc.CryptBlocks(out[:len(datain1)], datain1)
		if c.encrypt {
			c.mac.Write(out[:len(datain1)])
		} else {
			c.mac.Write(datain1)
		}
		outLen = len(datain1)
	}

	if flags&wire.FlagFinit == 0 {
		return outLen, wire.OK
	}

	tag := c.mac.Sum(nil)
	if outLen+len(tag) > len(out) {
		return 0, wire.ErrParams
	}
	copy(out[outLen:], tag)
	return outLen + len(tag), wire.OK
}
