package wire

import (
	"encoding/binary"
	"math"
)

// Writer builds one outbound frame payload (opcode + body). Call Bytes to
// get the full frame body ready for WriteFrame.
type Writer struct {
	buf []byte
}

// NewWriter starts a new payload with the given opcode already written.
func NewWriter(opcode uint16) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.WriteUint16(opcode)
	return w
}

func (w *Writer) WriteUint8(v uint8) { w.buf = append(w.buf, v) }
func (w *Writer) WriteInt8(v int8)   { w.WriteUint8(uint8(v)) }
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteString writes a 16-bit length prefix followed by the UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteUint16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

// Bytes returns the built payload (opcode + body), ready for WriteFrame.
func (w *Writer) Bytes() []byte { return w.buf }

// Len reports the current payload length.
func (w *Writer) Len() int { return len(w.buf) }
