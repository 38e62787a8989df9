package server

import "sync/atomic"

var nextHandleID uint64

// ClientHandle identifies one tracked client for Broadcast's exclude
// parameter and for OnClientConnected/OnClientDisconnected hooks. The
// zero value is never handed out; compare handles with ==.
type ClientHandle struct {
	id         uint64
	remoteAddr string
	send       func(frame []byte) error
}

func newClientHandle(remoteAddr string, send func([]byte) error) *ClientHandle {
	return &ClientHandle{
		id:         atomic.AddUint64(&nextHandleID, 1),
		remoteAddr: remoteAddr,
		send:       send,
	}
}

// RemoteAddr returns the client's network address as reported by the
// underlying transport.
func (h *ClientHandle) RemoteAddr() string {
	return h.remoteAddr
}
