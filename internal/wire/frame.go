// Package wire implements the server's binary packet protocol: length-prefixed
// framing, little-endian primitive encoding, and opcode-based dispatch.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MinFrameSize and MaxFrameSize bound a valid frame's total length, including
// the 2-byte header itself.
const (
	MinFrameSize = 4     // header(2) + opcode(2), zero-length payload
	MaxFrameSize = 65535 // 64 KiB - 1
)

// ReadFrame reads one frame from r and returns the payload (opcode + body,
// i.e. everything after the 2-byte length header).
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	total := int(binary.LittleEndian.Uint16(header[:]))
	if total < MinFrameSize || total > MaxFrameSize {
		return nil, fmt.Errorf("malformed frame: invalid length %d", total)
	}

	payload := make([]byte, total-2)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", len(payload), err)
	}
	return payload, nil
}

// WriteFrame writes payload (opcode + body) to w, prefixed with its 2-byte
// little-endian total length.
func WriteFrame(w io.Writer, payload []byte) error {
	total := len(payload) + 2
	if total > MaxFrameSize {
		return fmt.Errorf("frame too large: %d bytes", total)
	}
	var header [2]byte
	binary.LittleEndian.PutUint16(header[:], uint16(total))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}
