package kvservice

import (
	"genrpc/rpcmsg"
	"genrpc/wire"
)

func newWriter() *wire.Writer { return wire.NewWriter(32) }

// Message ids, assigned from base 1000 in declaration order — the literal
// output of a generator running rpcmsg.Allocator over this service's IDL.
var (
	idAlloc = rpcmsg.NewAllocator(1000)

	testIntReqID, testIntRespID               = idAlloc.Method()
	testFloatsReqID, testFloatsRespID         = idAlloc.Method()
	testStringReqID, testStringRespID         = idAlloc.Method()
	testStructReqID, testStructRespID         = idAlloc.Method()
	testInOutParamsReqID, testInOutParamsRespID = idAlloc.Method()

	onKeyChangedPushID = idAlloc.Push()
)

func encodeTestIntArgs(i8 int8, u8 uint8, i16 int16, u16 uint16, i32 int32, u32 uint32, i64 int64, u64 uint64) []byte {
	w := newWriter()
	w.WriteInt8(i8)
	w.WriteUint8(u8)
	w.WriteInt16(i16)
	w.WriteUint16(u16)
	w.WriteInt32(i32)
	w.WriteUint32(u32)
	w.WriteInt64(i64)
	w.WriteUint64(u64)
	return w.Bytes()
}

func encodeTestFloatsArgs(f float32, d float64) []byte {
	w := newWriter()
	w.WriteFloat32(f)
	w.WriteFloat64(d)
	return w.Bytes()
}

func encodeTestStringArgs(s string) []byte {
	w := newWriter()
	w.WriteString(s)
	return w.Bytes()
}

func encodeTestStructArgs(b Blob) []byte {
	w := newWriter()
	b.Encode(w)
	return w.Bytes()
}

func encodeTestInOutParamsArgs(value int32, str string, data Blob, seq []int32) []byte {
	w := newWriter()
	w.WriteInt32(value)
	w.WriteString(str)
	data.Encode(w)
	w.WriteUint32(uint32(len(seq)))
	for _, v := range seq {
		w.WriteInt32(v)
	}
	return w.Bytes()
}

func encodeKeyChangeEvent(e KeyChangeEvent) []byte {
	w := newWriter()
	e.Encode(w)
	return w.Bytes()
}
