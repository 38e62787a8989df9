// Package codec is the teacher's pluggable-serialization concern,
// repurposed: the wire runtime has exactly one canonical serialization
// grammar (package wire, driven by the generated type layer) — spec §4.1
// is explicit that there is no second wire format to plug in. What remains
// useful from the teacher's Strategy-pattern codec is a debug-only
// rendering path: turning an already-decoded value into a human-readable
// form for the trace hook (spec §1, "logging beyond a trace hook" is the
// only logging the core allows itself). That's what DumpCodec is for.
package codec

// DumpCodec renders an already-decoded Go value for tracing/logging. It is
// never used to produce or consume wire bytes — only to describe them
// after wire.Reader has already done that job.
type DumpCodec interface {
	Dump(v any) (string, error)
}

// Default is the dump codec used by package telemetry when the caller
// doesn't supply one.
var Default DumpCodec = JSONDumpCodec{}
