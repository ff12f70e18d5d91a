// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package registry

import (
	"crypto/sha256"
	"hash"

	"github.com/secube/crypto-core/internal/wire"
)

func init() {
	register(Descriptor{
		ID:        1,
		Name:      "Sha256",
		Category:  Digest,
		// BlockSize here is the crypto_list display field, which the
		// reference algorithm table fills with the digest size, not the
		// hash's internal block size.
		BlockSize: uint16(sha256.Size),
		KeySize:   0,
		CtxSize:   216,
		New:       func() Context { return &sha256Context{} },
	})
}

// sha256Context buffers no key material; Init accepts (and ignores) whatever
// key the dispatcher resolved, matching spec's "algorithms that require a
// key will fail in their init" — this one simply doesn't require one.
type sha256Context struct {
	h hash.Hash
}

func (c *sha256Context) Init(key []byte, mode uint16) wire.Status {
	c.h = sha256.New()
	return wire.OK
}

// Update feeds datain1 then datain2 into the running digest. Output stays
// empty until FINIT, at which point the 32-byte digest is emitted.
func (c *sha256Context) Update(flags uint16, datain1, datain2 []byte, out []byte) (int, wire.Status) {
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
