package kvservice

import (
	"context"

	"genrpc/middleware"
	"genrpc/rpcmsg"
	"genrpc/server"
	"genrpc/wire"
)

// KVService is the generated abstract handler contract. User code (see
// examples/kvstore) implements it; the runtime never interprets a return
// value beyond encoding it onto the wire.
type KVService interface {
	TestInt(i8 int8, u8 uint8, i16 int16, u16 uint16, i32 int32, u32 uint32, i64 int64, u64 uint64) int32
	TestFloats(f float32, d float64) float64
	TestString(s string) string
	TestStruct(b Blob) Blob
	TestInOutParams(value int32, str string, data Blob, seq []int32) (int32, string, Blob, []int32)
}

// NewDispatcher builds the message-id-to-handler table a server.StreamServer
// or server.DatagramServer dispatches against, binding each method id to
// the corresponding svc method via decode-call-encode glue.
func NewDispatcher(svc KVService) server.Dispatcher {
	return server.Dispatcher{
		testIntReqID: func(ctx context.Context, payload []byte) ([]byte, int32, error) {
			r := wire.NewReader(payload)
			i8, err := r.ReadInt8()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			u8, err := r.ReadUint8()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			i16, err := r.ReadInt16()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			u16, err := r.ReadUint16()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			i32, err := r.ReadInt32()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			u32, err := r.ReadUint32()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			i64, err := r.ReadInt64()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			u64, err := r.ReadUint64()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			result := svc.TestInt(i8, u8, i16, u16, i32, u32, i64, u64)
			w := wire.NewWriter(4)
			w.WriteInt32(result)
			return w.Bytes(), middleware.StatusOK, nil
		},

		testFloatsReqID: func(ctx context.Context, payload []byte) ([]byte, int32, error) {
			r := wire.NewReader(payload)
			f, err := r.ReadFloat32()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			d, err := r.ReadFloat64()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			result := svc.TestFloats(f, d)
			w := wire.NewWriter(8)
			w.WriteFloat64(result)
			return w.Bytes(), middleware.StatusOK, nil
		},

		testStringReqID: func(ctx context.Context, payload []byte) ([]byte, int32, error) {
			r := wire.NewReader(payload)
			s, err := r.ReadString()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			result := svc.TestString(s)
			w := wire.NewWriter(4 + len(result))
			w.WriteString(result)
			return w.Bytes(), middleware.StatusOK, nil
		},

		testStructReqID: func(ctx context.Context, payload []byte) ([]byte, int32, error) {
			var b Blob
			if err := b.Decode(wire.NewReader(payload)); err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			result := svc.TestStruct(b)
			w := wire.NewWriter(12)
			result.Encode(w)
			return w.Bytes(), middleware.StatusOK, nil
		},

		testInOutParamsReqID: func(ctx context.Context, payload []byte) ([]byte, int32, error) {
			r := wire.NewReader(payload)
			value, err := r.ReadInt32()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			str, err := r.ReadString()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			var data Blob
			if err := data.Decode(r); err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			n, err := r.ReadUint32()
			if err != nil {
				return nil, middleware.StatusDecodeFailure, err
			}
			seq := make([]int32, n)
			for i := range seq {
				v, err := r.ReadInt32()
				if err != nil {
					return nil, middleware.StatusDecodeFailure, err
				}
				seq[i] = v
			}

			outValue, outStr, outData, outSeq := svc.TestInOutParams(value, str, data, seq)

			w := wire.NewWriter(16 + len(outStr) + 4*len(outSeq))
			w.WriteInt32(outValue)
			w.WriteString(outStr)
			outData.Encode(w)
			w.WriteUint32(uint32(len(outSeq)))
			for _, v := range outSeq {
				w.WriteInt32(v)
			}
			return w.Bytes(), middleware.StatusOK, nil
		},
	}
}

// KVPushes exposes the service's push channel(s) over a
// *server.StreamServer's Broadcast (see NewPushes).
type KVPushes struct {
	broadcast func(frame []byte, exclude *server.ClientHandle) error
}

// NewPushes binds push delivery to srv's Broadcast.
func NewPushes(srv *server.StreamServer) *KVPushes {
	return &KVPushes{broadcast: srv.Broadcast}
}

// PushKeyChanged sends an onKeyChanged event to every tracked client except
// exclude (nil to include everyone).
func (p *KVPushes) PushKeyChanged(event KeyChangeEvent, exclude *server.ClientHandle) error {
	frame := append(rpcmsg.EncodeRequestHeader(onKeyChangedPushID), encodeKeyChangeEvent(event)...)
	return p.broadcast(frame, exclude)
}
