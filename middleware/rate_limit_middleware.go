package middleware

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware admits requests through a token-bucket limiter
// shared across every dispatched request. Tokens refill at r per second
// up to burst; a request arriving with an empty bucket is rejected with
// StatusRateLimited without reaching the business handler.
//
// This governs application-level request admission at the dispatch step,
// not wire-level flow control — it does not contradict spec §1's "no flow
// control beyond socket back-pressure" non-goal, which scopes out
// transport-layer congestion handling, not a server's own QoS policy.
//
// The limiter must be built once, outside the returned HandlerFunc — a
// limiter built per-request would hand every request a fresh full bucket
// and never actually limit anything.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *Response {
			if !limiter.Allow() {
				return &Response{Status: StatusRateLimited}
			}
			return next(ctx, req)
		}
	}
}
