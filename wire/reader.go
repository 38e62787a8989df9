package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortBuffer is returned by any read that would run past the end of the
// underlying slice. It is the only error the Reader's own reads produce;
// ErrBadEnumOrdinal below is reported by generated enum decoders.
var ErrShortBuffer = errors.New("wire: short buffer")

// ErrBadEnumOrdinal is returned by a generated enum Decode when the wire
// ordinal falls outside the declared variant range.
var ErrBadEnumOrdinal = errors.New("wire: enum ordinal out of range")

// Reader wraps an immutable byte slice with a read cursor. Every read
// operation that would exceed the slice fails with ErrShortBuffer and
// leaves the cursor exactly where it was at the point of failure.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for reading. b is not copied; the caller must not
// mutate it while the Reader is in use.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining reports how many bytes are left to read.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// CanRead reports whether at least n more bytes are available.
func (r *Reader) CanRead(n int) bool { return r.Remaining() >= n }

func (r *Reader) need(n int) error {
	if !r.CanRead(n) {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, r.Remaining())
	}
	return nil
}

func (r *Reader) take(n int) []byte {
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	return r.take(1)[0], nil
}

func (r *Reader) ReadChar() (byte, error) { return r.ReadUint8() }

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.take(2)), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.take(4)), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(r.take(8)), nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBytes reads exactly n raw bytes with no length prefix of its own.
// The returned slice is a copy; the Reader's backing array is never
// aliased out.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.take(n))
	return b, nil
}

// Rest returns a copy of the bytes not yet consumed, without advancing the
// cursor. The client and server engines use it after message header
// parsing has consumed a prefix, to hand the typed payload bytes on.
func (r *Reader) Rest() []byte {
	out := make([]byte, r.Remaining())
	copy(out, r.buf[r.pos:])
	return out
}

// ReadString consumes a uint32 length, validates it against the remaining
// slice, then consumes that many bytes. UTF-8 validity is not enforced
// here — the caller decides whether to be strict.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
