// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package registry

import (
	"crypto/aes"

	"github.com/secube/crypto-core/internal/payload"
	"github.com/secube/crypto-core/internal/wire"
)

func init() {
	register(Descriptor{
		ID:        4,
		Name:      "AES256HMACSHA256",
		Category:  BlockCipherAuth,
		BlockSize: uint16(aes.BlockSize),
		KeySize:   32,
		CtxSize:   192,
		New:       func() Context { return &aes256HmacSha256Context{} },
	})
}

// aes256HmacSha256Context is the session-oriented twin of the payload
// channel (internal/payload): it derives its AES/HMAC key schedule the same
// way (PBKDF2-HMAC-SHA-256 split of one base key) and applies the same
// encrypt-then-MAC envelope, but per crypto_update call rather than per wire
// frame, chaining the CBC IV from one call's final ciphertext block to the
// next.
type aes256HmacSha256Context struct {
	channel *payload.Channel
	iv      [aes.BlockSize]byte
	encrypt bool
}

func (c *aes256HmacSha256Context) Init(key []byte, mode uint16) wire.Status {
	if len(key) != 32 {
		return wire.ErrParams
	}
	ch, err := payload.NewChannel(key)
	if err != nil {
		return wire.ErrHW
	}
	switch mode {
	case wire.ModeCBCEncrypt:
		c.encrypt = true
	case wire.ModeCBCDecrypt:
		c.encrypt = false
	default:
		return wire.ErrParams
	}
	c.channel = ch
	return wire.OK
}

func (c *aes256HmacSha256Context) Update(flags uint16, datain1, datain2 []byte, out []byte) (int, wire.Status) {
	n := len(datain1)
	if n%aes.BlockSize != 0 {
		return 0, wire.ErrParams
	}

	sign := flags&wire.FlagSign != 0
	need := n
	if sign {
		need += payload.TagSize
	}
	if need > len(out) {
		return 0, wire.ErrParams
	}

	// pflags always carries FlagEncrypt: direction (encrypt vs decrypt) was
	// already fixed at Init time by which of channel.Encrypt/channel.Decrypt
	// this call reaches below, not by this flag.
	pflags := payload.FlagEncrypt
	if sign {
		pflags |= payload.FlagSign
	}

	copy(out[:n], datain1)

	var tag [payload.TagSize]byte
	if c.encrypt {
		if err := c.channel.Encrypt(&tag, c.iv[:], out[:n], pflags, payload.AlgoAES256); err != nil {
			return 0, wire.ErrHW
		}
		if n >= aes.BlockSize {
			copy(c.iv[:], out[n-aes.BlockSize:n])
		}
	} else {
		if sign {
			if len(datain2) < payload.TagSize {
				return 0, wire.ErrParams
			}
			copy(tag[:], datain2[:payload.TagSize])
		}
		var nextIV [aes.BlockSize]byte
		if n >= aes.BlockSize {
			copy(nextIV[:], datain1[n-aes.BlockSize:n])
		}
		ok, err := c.channel.Decrypt(tag, c.iv[:], out[:n], pflags, payload.AlgoAES256)
		if err != nil {
			return 0, wire.ErrHW
		}
		if !ok {
			return 0, wire.ErrAccess
		}
		c.iv = nextIV
	}

	if sign {
		copy(out[n:n+payload.TagSize], tag[:])
		return n + payload.TagSize, wire.OK
	}
	return n, wire.OK
}
