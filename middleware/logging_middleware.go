package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"genrpc/telemetry"
)

// LoggingMiddleware records the message id, duration, and status for each
// dispatched request via the given structured logger — the only logging
// the protocol core performs internally (the trace hook of spec §1). The
// request payload itself is only dumped at debug level, since it's
// arbitrary wire bytes rather than something worth a typed field.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *Response {
			start := time.Now()
			resp := next(ctx, req)
			logger.Debug("dispatch",
				zap.Uint32("message_id", req.ID),
				zap.Duration("duration", time.Since(start)),
				zap.Int32("status", resp.Status),
				telemetry.DumpField("payload", req.Payload),
			)
			return resp
		}
	}
}
