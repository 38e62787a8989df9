// Package wire implements the codec layer shared by every generated record
// and enum: a growable big-endian writer and a bounded-slice reader. It
// knows nothing about messages, methods, or services — only how to lay
// primitive values onto a byte sequence and how to read them back.
package wire

import (
	"encoding/binary"
	"math"
)

// Writer is an append-only, growable byte buffer. Every operation succeeds;
// there is no failure mode for writing, only for reading back an
// undersized buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer. size is a capacity hint, not a limit.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Bytes returns the contiguous bytes written so far. The slice is owned by
// the Writer; callers that need to retain it beyond the Writer's lifetime
// should copy it.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) WriteInt8(v int8) { w.buf = append(w.buf, byte(v)) }

func (w *Writer) WriteUint8(v uint8) { w.buf = append(w.buf, v) }

func (w *Writer) WriteChar(v byte) { w.buf = append(w.buf, v) }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 0x01)
	} else {
		w.buf = append(w.buf, 0x00)
	}
}

func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }

func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteBytes appends raw bytes with no length prefix.
func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

// WriteString writes a uint32 byte length followed by the string's bytes,
// the length-prefixed text encoding of spec §3.
func (w *Writer) WriteString(s string) {
	w.WriteUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}
