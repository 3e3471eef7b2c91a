package wire

import (
	"encoding/binary"
	"math"
)

// Reader decodes primitives from a frame payload. Byte 0-1 is the opcode;
// NewReader positions the cursor just past it. On underflow every Read*
// method returns the zero value rather than panicking — a truncated frame
// is malformed, not fatal, so callers log and drop instead of crashing
// the session.
type Reader struct {
	data  []byte
	off   int
	Underflowed bool
}

func NewReader(data []byte) *Reader {
	r := &Reader{data: data, off: 2}
	return r
}

// Opcode returns the 16-bit little-endian opcode at the start of the frame.
func (r *Reader) Opcode() uint16 {
	if len(r.data) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(r.data[0:2])
}

func (r *Reader) need(n int) bool {
	if r.off+n > len(r.data) {
		r.Underflowed = true
		return false
	}
	return true
}

func (r *Reader) ReadUint8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *Reader) ReadInt8() int8 { return int8(r.ReadUint8()) }

func (r *Reader) ReadBool() bool { return r.ReadUint8() != 0 }

func (r *Reader) ReadUint16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *Reader) ReadInt16() int16 { return int16(r.ReadUint16()) }

func (r *Reader) ReadUint32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *Reader) ReadInt32() int32 { return int32(r.ReadUint32()) }

func (r *Reader) ReadUint64() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

func (r *Reader) ReadInt64() int64 { return int64(r.ReadUint64()) }

func (r *Reader) ReadFloat32() float32 {
	return math.Float32frombits(r.ReadUint32())
}

func (r *Reader) ReadFloat64() float64 {
	return math.Float64frombits(r.ReadUint64())
}

// ReadString reads a 16-bit length prefix followed by that many raw bytes,
// interpreted as UTF-8.
func (r *Reader) ReadString() string {
	n := int(r.ReadUint16())
	if n == 0 {
		return ""
	}
	if !r.need(n) {
		return ""
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b
}

// Remaining reports how many unread bytes are left in the payload.
func (r *Reader) Remaining() int {
	if r.off >= len(r.data) {
		return 0
	}
	return len(r.data) - r.off
}
