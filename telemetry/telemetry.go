// Package telemetry is the ambient logging concern every generated
// service module carries, regardless of what the IDL declares: connection
// lifecycle, transport failures, and malformed traffic are always worth a
// line in the log, even though spec §1 keeps the protocol core itself free
// of anything beyond a trace hook. The client and server engines accept a
// *zap.Logger at construction and default to a no-op logger so nothing
// here is mandatory at the call site.
package telemetry

import (
	"go.uber.org/zap"

	"genrpc/codec"
)

// NewLogger returns a production zap.Logger suitable for the cmd/
// binaries. Library code should not call this — it should accept a
// *zap.Logger from its caller and fall back to NewNop.
func NewLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// NewNop returns a logger that discards everything, the default for
// engines constructed without an explicit logger.
func NewNop() *zap.Logger { return zap.NewNop() }

// DumpField renders v as a zap field carrying its JSON dump, for logging a
// payload without committing the log line's shape to the payload's Go
// type. The engines pass raw frame bytes, which JSON renders as base64.
func DumpField(key string, v any) zap.Field {
	s, err := codec.Default.Dump(v)
	if err != nil {
		return zap.String(key, "<unprintable>")
	}
	return zap.String(key, s)
}
