// Package rpcmsg implements the message layer of spec §4.3: the id +
// optional status header every frame's payload carries, and the
// declaration-order id allocator a generator uses to assign method and
// push-channel ids from a per-service base.
//
// The layer is intentionally thin. A generated method's request/response
// shapes are still encoded and decoded directly against a *wire.Writer /
// *wire.Reader by the generated code (see kvservice/messages.go) — this
// package only wraps and unwraps the header bytes that precede that typed
// payload, since decoding the payload itself requires knowing the type,
// which this package does not.
package rpcmsg

import (
	"fmt"

	"genrpc/rpcerr"
	"genrpc/wire"
)

// EncodeRequestHeader returns the header bytes for a request or push
// message: just the 32-bit message id.
func EncodeRequestHeader(id uint32) []byte {
	w := wire.NewWriter(4)
	w.WriteUint32(id)
	return w.Bytes()
}

// EncodeResponseHeader returns the header bytes for an RPC response
// message: the 32-bit message id followed by the 32-bit signed status.
// The core never interprets status beyond encoding it; generated handlers
// that succeed pass 0.
func EncodeResponseHeader(id uint32, status int32) []byte {
	w := wire.NewWriter(8)
	w.WriteUint32(id)
	w.WriteInt32(status)
	return w.Bytes()
}

// PeekID reads only the message id from the front of a decoded message,
// without consuming anything else. Callers use the id to decide, via their
// own generated dispatch tables, whether the remaining bytes are shaped as
// a request, a response (with a status field still to read), or a push
// payload.
func PeekID(r *wire.Reader) (uint32, error) {
	id, err := r.ReadUint32()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", rpcerr.ErrMalformedMessage, err)
	}
	return id, nil
}

// ReadStatus consumes the 32-bit status field of a response message. The
// caller must already have consumed the id via PeekID.
func ReadStatus(r *wire.Reader) (int32, error) {
	status, err := r.ReadInt32()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", rpcerr.ErrMalformedMessage, err)
	}
	return status, nil
}
