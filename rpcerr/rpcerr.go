// Package rpcerr names the error kinds of the wire runtime (spec §7) as
// sentinel values so callers can distinguish them with errors.Is instead of
// string-matching, without the protocol itself carrying a textual error
// channel (see the client/server packages for why the generated wrapper
// still collapses all of these to a zero value at the call site).
package rpcerr

import "errors"

var (
	// ErrMalformedMessage covers a length-prefix mismatch, a reader
	// underflow, an out-of-range enum ordinal, or an unknown message id
	// observed on the client's response path.
	ErrMalformedMessage = errors.New("rpc: malformed message")

	// ErrDispatchMiss names the case of a server receiving a request id
	// with no registered handler. The servers log and drop such a request
	// and continue without sending a reply; no code path in this module
	// returns this value.
	ErrDispatchMiss = errors.New("rpc: no handler for message id")

	// ErrCallTimeout is returned by the untyped call primitive when no
	// matching response arrives within the per-call timeout.
	ErrCallTimeout = errors.New("rpc: call timed out")

	// ErrDisconnected is returned by any call issued after the client's
	// transport has been closed or has observed end-of-stream.
	ErrDisconnected = errors.New("rpc: client is not connected")

	// ErrFrameTooLarge is returned when a frame's length prefix exceeds
	// the configured maximum frame size.
	ErrFrameTooLarge = errors.New("rpc: frame exceeds maximum size")
)
