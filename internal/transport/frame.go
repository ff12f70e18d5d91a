// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package transport

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/secube/crypto-core/internal/wire"
)

// frameHeaderSize is the transport frame header: command:u16, length:u32,
// little-endian, matching the rest of the wire's fixed-offset framing.
const frameHeaderSize = 2 + 4

// maxFrameLen bounds a single frame's payload.
const maxFrameLen = 1 << 20

// readFrame reads one (command, payload) frame from r.
func readFrame(r io.Reader) (Command, []byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	cmd := Command(binary.LittleEndian.Uint16(hdr[0:2]))
	length := binary.LittleEndian.Uint32(hdr[2:6])
	if length > maxFrameLen {
		return 0, nil, fmt.Errorf("transport: frame length %d exceeds limit", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return cmd, payload, nil
}

// writeFrame writes one (status, payload) response frame to w.
func writeFrame(w io.Writer, status wire.Status, payload []byte) error {
	var hdr [frameHeaderSize]byte
	binary.LittleEndian.PutUint16(hdr[0:2], uint16(status))
	binary.LittleEndian.PutUint32(hdr[2:6], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// WriteRequest writes one (command, payload) request frame to w. It is the
// client-side counterpart of readFrame, exported for callers (the settime
// CLI subcommand, tests) that dial a running Server
// instead of embedding one.
func WriteRequest(w io.Writer, cmd Command, payload []byte) error {
	var hdr [frameHeaderSize]byte
	binary.LittleEndian.PutUint16(hdr[0:2], uint16(cmd))
	binary.LittleEndian.PutUint32(hdr[2:6], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// ReadResponse reads one (status, payload) response frame from r.
func ReadResponse(r io.Reader) (wire.Status, []byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	status := wire.Status(binary.LittleEndian.Uint16(hdr[0:2]))
	length := binary.LittleEndian.Uint32(hdr[2:6])
	if length > maxFrameLen {
		return 0, nil, fmt.Errorf("transport: frame length %d exceeds limit", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return status, payload, nil
}
