// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package registry

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/secube/crypto-core/internal/wire"
)

func init() {
	register(Descriptor{
		ID:        0,
		Name:      "Aes",
		Category:  BlockCipher,
		BlockSize: uint16(aes.BlockSize),
		KeySize:   32,
		CtxSize:   256,
		New:       func() Context { return &aesContext{} },
	})
}

// aesContext drives AES-256-CBC across successive crypto_update calls: the
// block.BlockMode returned by NewCBCEncrypter/Decrypter carries the chained
// IV between calls, so the session IV never needs to be re-threaded by hand.
type aesContext struct {
	mode cipher.BlockMode
}

func (c *aesContext) Init(key []byte, mode uint16) wire.Status {
	if len(key) != 32 {
		return wire.ErrParams
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return wire.ErrHW
	}
	var iv [aes.BlockSize]byte
	switch mode {
	case wire.ModeCBCEncrypt:
		c.mode = cipher.NewCBCEncrypter(block, iv[:])
	case wire.ModeCBCDecrypt:
		c.mode = cipher.NewCBCDecrypter(block, iv[:])
	default:
		return wire.ErrParams
	}
	return wire.OK
}

func (c *aesContext) Update(flags uint16, datain1, datain2 []byte, out []byte) (int, wire.Status) {
	if len(datain1)%aes.BlockSize != 0 {
		return 0, wire.ErrParams
	}
	if len(datain1) > len(out) {
		return 0, wire.ErrParams
	}
	if len(datain1) > 0 {
		c.mode.CryptBlocks(out[:len(datain1)], datain1)
	}
	return len(datain1), wire.OK
}
