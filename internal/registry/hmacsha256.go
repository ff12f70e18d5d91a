// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package registry

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"

	"github.com/secube/crypto-core/internal/wire"
)

func init() {
	register(Descriptor{
		ID:        2,
		Name:      "HmacSha256",
		Category:  Digest,
		// BlockSize here is the crypto_list display field, which the
		// reference algorithm table fills with the digest size, not the
		// hash's internal block size.
		BlockSize: uint16(sha256.Size),
		KeySize:   32,
		CtxSize:   232,
		New:       func() Context { return &hmacSha256Context{} },
	})
}

type hmacSha256Context struct {
	h hash.Hash
}

func (c *hmacSha256Context) Init(key []byte, mode uint16) wire.Status {
	if len(key) != 32 {
		return wire.ErrParams
	}
	c.h = hmac.New(sha256.New, key)
	return wire.OK
}

// Update feeds datain1 then datain2 into the running MAC. Output stays empty
// until FINIT, at which point the 32-byte tag is emitted.
func (c *hmacSha256Context) Update(flags uint16, datain1, datain2 []byte, out []byte) (int, wire.Status) {
	c.h.Write(datain1)
	c.h.Write(datain2)

	if flags&wire.FlagFinit == 0 {
		return 0, wire.OK
	}
	sum := c.h.Sum(nil)
	if len(sum) > len(out) {
		return 0, wire.ErrParams
	}
	copy(out, sum)
	return len(sum), wire.OK
}
