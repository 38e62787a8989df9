package middleware

import (
	"context"
	"time"
)

// TimeoutMiddleware enforces a maximum duration for dispatching one
// request. If the handler doesn't complete in time, the caller's
// connection gets StatusTimeout immediately.
//
// The handler goroutine is not cancelled when the timeout fires — it
// keeps running in the background. True cancellation requires the
// handler to observe ctx.Done() itself.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *Response {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan *Response, 1)
			go func() {
				done <- next(ctx, req)
			}()

			select {
			case resp := <-done:
				return resp
			case <-ctx.Done():
				return &Response{Status: StatusTimeout}
			}
		}
	}
}
