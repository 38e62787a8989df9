// Package middleware implements the onion-model request chain around a
// server's dispatch step, unchanged in shape from the teacher: each layer
// can do pre-processing, call next, do post-processing, or short-circuit.
// It now wraps the byte-level request/response shape the server engine
// (package server) works with instead of the teacher's message.RPCMessage,
// since the wire runtime no longer carries a pluggable outer envelope.
//
// Onion model execution order:
//
//	Chain(A, B, C)(handler)  →  A(B(C(handler)))
//
//	Request:   A.before → B.before → C.before → handler
//	Response:  handler → C.after → B.after → A.after
package middleware

import "context"

// Request is the dispatch-time view of an inbound RPC request: its
// message id and the already-length-delimited argument bytes that follow
// the id in the frame.
type Request struct {
	ID      uint32
	Payload []byte
}

// Response is what a handler (or a short-circuiting middleware) produces:
// the encoded return value and the status the core will echo back
// uninterpreted (spec §4.3).
type Response struct {
	Payload []byte
	Status  int32
}

// HandlerFunc is the function signature shared by the business dispatch
// step and every middleware-wrapped handler.
type HandlerFunc func(ctx context.Context, req *Request) *Response

// Middleware takes a handler and returns a new handler that wraps it.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes multiple middlewares into a single middleware. It builds
// the chain from right to left so that the first middleware in the list is
// the outermost layer (executed first on request, last on response).
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
