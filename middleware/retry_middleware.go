package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryMiddleware re-dispatches a request that came back with
// StatusTimeout (typically produced by an inner TimeoutMiddleware layer),
// with exponential backoff between attempts. Any other status is returned
// immediately — retrying a handler that already ran to completion and
// produced a real answer would duplicate its side effects.
func RetryMiddleware(logger *zap.Logger, maxRetries int, baseDelay time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *Response {
			resp := next(ctx, req)
			for i := 0; i < maxRetries && resp.Status == StatusTimeout; i++ {
				logger.Debug("retrying dispatch", zap.Uint32("message_id", req.ID), zap.Int("attempt", i+1))
				time.Sleep(baseDelay * time.Duration(1<<i))
				resp = next(ctx, req)
			}
			return resp
		}
	}
}
