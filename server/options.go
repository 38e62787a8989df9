package server

import (
	"genrpc/framing"
	"genrpc/middleware"
	"genrpc/registry"

	"go.uber.org/zap"
)

// Option configures a StreamServer or DatagramServer, mirroring the
// functional-options style used by client.Option.
type Option func(*config)

type config struct {
	logger       *zap.Logger
	middlewares  []middleware.Middleware
	registry     registry.Registry
	maxFrameSize uint32
}

func newConfig() *config {
	return &config{
		logger:       zap.NewNop(),
		maxFrameSize: framing.DefaultMaxFrameSize,
	}
}

// WithLogger sets the structured logger used for lifecycle and dispatch
// error events. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMiddleware appends to the chain every dispatched request passes
// through before reaching the generated handler, in the order given —
// the same onion model middleware.Chain builds for a standalone handler.
func WithMiddleware(mw ...middleware.Middleware) Option {
	return func(c *config) { c.middlewares = append(c.middlewares, mw...) }
}

// WithRateLimit is a convenience for WithMiddleware(middleware.RateLimitMiddleware(r, burst)):
// admits at most r requests per second, up to burst, across the whole
// dispatcher. A request arriving with an empty bucket gets
// middleware.StatusRateLimited instead of reaching the business handler.
func WithRateLimit(r float64, burst int) Option {
	return WithMiddleware(middleware.RateLimitMiddleware(r, burst))
}

// WithRegistry sets the registry Stop deregisters the advertised address
// from. Neither Start nor this option registers anything: Stop deregisters
// only after RegisterService has named the service, and RegisterService
// replaces this registry with the one it is given.
func WithRegistry(reg registry.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithMaxFrameSize overrides the maximum accepted frame body size.
func WithMaxFrameSize(n uint32) Option {
	return func(c *config) { c.maxFrameSize = n }
}
