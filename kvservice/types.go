// Package kvservice is a hand-authored stand-in for what an IDL generator
// would emit for one service: typed records and an enum in kvservice's IDL
// (types.go), message ids and a generated client/server pair wired to the
// shared wire/rpcmsg/framing/client/server runtime (messages.go, client.go,
// server.go). Nothing here is part of the generator; it only demonstrates
// the shape of the generator's output.
package kvservice

import (
	"fmt"

	"genrpc/wire"
)

// ChangeKind enumerates the kinds of key mutation the onKeyChanged push
// channel reports.
type ChangeKind int32

const (
	KeyAdded ChangeKind = iota
	KeyUpdated
	KeyRemoved
	KeyExpired
)

func (k ChangeKind) String() string {
	switch k {
	case KeyAdded:
		return "KEY_ADDED"
	case KeyUpdated:
		return "KEY_UPDATED"
	case KeyRemoved:
		return "KEY_REMOVED"
	case KeyExpired:
		return "KEY_EXPIRED"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int32(k))
	}
}

// Encode writes the enum's ordinal as a plain int32.
func (k ChangeKind) Encode(w *wire.Writer) {
	w.WriteInt32(int32(k))
}

// Decode reads an int32 ordinal and validates it against the declared
// variant range, per wire.ErrBadEnumOrdinal.
func (k *ChangeKind) Decode(r *wire.Reader) error {
	v, err := r.ReadInt32()
	if err != nil {
		return err
	}
	if v < int32(KeyAdded) || v > int32(KeyExpired) {
		return fmt.Errorf("%w: ChangeKind ordinal %d", wire.ErrBadEnumOrdinal, v)
	}
	*k = ChangeKind(v)
	return nil
}

// Point is a two-field record of two int32s.
type Point struct {
	X int32
	Y int32
}

func (p Point) Encode(w *wire.Writer) {
	w.WriteInt32(p.X)
	w.WriteInt32(p.Y)
}

func (p *Point) Decode(r *wire.Reader) error {
	x, err := r.ReadInt32()
	if err != nil {
		return err
	}
	y, err := r.ReadInt32()
	if err != nil {
		return err
	}
	p.X, p.Y = x, y
	return nil
}

// Shape nests a sequence of records and an enum inside a record, per
// spec.md §3's "records may nest records and sequences to arbitrary
// depth".
type Shape struct {
	Name     string
	Vertices []Point
	Kind     ChangeKind
}

func (s Shape) Encode(w *wire.Writer) {
	w.WriteString(s.Name)
	w.WriteUint32(uint32(len(s.Vertices)))
	for _, v := range s.Vertices {
		v.Encode(w)
	}
	s.Kind.Encode(w)
}

func (s *Shape) Decode(r *wire.Reader) error {
	name, err := r.ReadString()
	if err != nil {
		return err
	}
	n, err := r.ReadUint32()
	if err != nil {
		return err
	}
	vertices := make([]Point, n)
	for i := range vertices {
		if err := vertices[i].Decode(r); err != nil {
			return err
		}
	}
	var kind ChangeKind
	if err := kind.Decode(r); err != nil {
		return err
	}
	s.Name, s.Vertices, s.Kind = name, vertices, kind
	return nil
}

// KeyChangeEvent is the payload of the onKeyChanged push channel, the
// literal record of spec.md §8 scenario 5.
type KeyChangeEvent struct {
	Type ChangeKind
	Key  string
	Old  string
	New  string
	Ts   int64
}

func (e KeyChangeEvent) Encode(w *wire.Writer) {
	e.Type.Encode(w)
	w.WriteString(e.Key)
	w.WriteString(e.Old)
	w.WriteString(e.New)
	w.WriteInt64(e.Ts)
}

func (e *KeyChangeEvent) Decode(r *wire.Reader) error {
	var kind ChangeKind
	if err := kind.Decode(r); err != nil {
		return err
	}
	key, err := r.ReadString()
	if err != nil {
		return err
	}
	old, err := r.ReadString()
	if err != nil {
		return err
	}
	newVal, err := r.ReadString()
	if err != nil {
		return err
	}
	ts, err := r.ReadInt64()
	if err != nil {
		return err
	}
	e.Type, e.Key, e.Old, e.New, e.Ts = kind, key, old, newVal, ts
	return nil
}

// Blob is the struct-mutation record of spec.md §8 scenario 4.
type Blob struct {
	I32 int32
	I64 int64
}

func (b Blob) Encode(w *wire.Writer) {
	w.WriteInt32(b.I32)
	w.WriteInt64(b.I64)
}

func (b *Blob) Decode(r *wire.Reader) error {
	i32, err := r.ReadInt32()
	if err != nil {
		return err
	}
	i64, err := r.ReadInt64()
	if err != nil {
		return err
	}
	b.I32, b.I64 = i32, i64
	return nil
}
