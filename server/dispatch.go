// Package server implements the stream and datagram RPC server engines:
// accept/receive loop, per-connection or per-packet dispatch to a
// generated service's handler table, and broadcast to tracked clients
// for push notification channels.
package server

import (
	"context"

	"genrpc/middleware"
)

// HandlerFunc is the contract a generated service stub builds for one
// request message id: decode the payload, run the business method, encode
// the return value. The returned status is echoed back in the response
// header; err is a transport/dispatch-level failure (never the business
// method's own return value, which spec.md leaves to the generated
// encoding of the reply payload itself).
type HandlerFunc func(ctx context.Context, payload []byte) (resp []byte, status int32, err error)

// Dispatcher maps a request message id to the handler that serves it.
// Built once by the generated service stub (kvservice/server.go) and
// handed to NewStreamServer/NewDatagramServer.
type Dispatcher map[uint32]HandlerFunc

// withMiddleware wraps every handler in d with mws, in declaration order,
// using the same middleware.Chain onion model a standalone HandlerFunc
// uses. Called once at server construction, not per request.
func withMiddleware(d Dispatcher, mws []middleware.Middleware) Dispatcher {
	if len(mws) == 0 {
		return d
	}
	chain := middleware.Chain(mws...)
	wrapped := make(Dispatcher, len(d))
	for id, h := range d {
		h := h
		mwHandler := chain(func(ctx context.Context, req *middleware.Request) *middleware.Response {
			resp, status, err := h(ctx, req.Payload)
			if err != nil {
				return &middleware.Response{Status: middleware.StatusDecodeFailure}
			}
			return &middleware.Response{Payload: resp, Status: status}
		})
		wrapped[id] = func(ctx context.Context, payload []byte) ([]byte, int32, error) {
			resp := mwHandler(ctx, &middleware.Request{ID: id, Payload: payload})
			return resp.Payload, resp.Status, nil
		}
	}
	return wrapped
}
