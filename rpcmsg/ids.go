package rpcmsg

// Allocator assigns message ids from a per-service base, sequentially and
// deterministically in declaration order — the same invariant the IDL
// generator's id assignment must satisfy so ids are stable across
// processes for a given IDL input (spec §3). Generated service code calls
// Method/Push once per declared method/channel, in the order they appear
// in the IDL, and keeps the returned ids as constants; the Allocator
// itself is not used at runtime, only at generation time (here: package
// init time for the hand-authored kvservice stand-in).
type Allocator struct {
	next uint32
}

// NewAllocator starts id assignment at base.
func NewAllocator(base uint32) *Allocator {
	return &Allocator{next: base}
}

// Method consumes two consecutive ids for one RPC method: an even-offset
// request id and the following odd-offset response id.
func (a *Allocator) Method() (reqID, respID uint32) {
	reqID, respID = a.next, a.next+1
	a.next += 2
	return
}

// Push consumes one id for a push channel (request-form only — there is
// no reply to a push).
func (a *Allocator) Push() (reqID uint32) {
	reqID = a.next
	a.next++
	return
}
