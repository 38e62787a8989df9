// Package transport supplies the two alternative bindings spec §1 and §4.4
// present under one framing rule: a stream binding over net.Conn and a
// datagram binding over net.PacketConn, both satisfying the same Transport
// contract so the client engine (package client) doesn't need to know
// which one it was handed.
//
// This supersedes the teacher's single TCP-only ClientTransport: the
// send-mutex and recvLoop discipline it established is kept (see
// package client), but the connection itself is now pluggable.
package transport

import (
	"net"
	"time"

	"genrpc/framing"
)

// Transport sends and receives whole frames — the length-prefix handling
// of spec §4.3 is already done on both sides of this interface.
type Transport interface {
	// SendFrame writes one framed message. Callers sharing a Transport
	// across goroutines must serialize their own calls to SendFrame;
	// the transport does not lock internally (see client.Client's
	// send mutex).
	SendFrame(body []byte) error

	// RecvFrame blocks for up to the configured read timeout and
	// returns the next frame's body. A timeout with no data is
	// reported via net.Error.Timeout(); the client listener treats it
	// as a liveness tick on both bindings and re-checks its shutdown
	// flag (spec §4.4).
	RecvFrame() ([]byte, error)

	// SetReadTimeout bounds the next RecvFrame call, implementing the
	// listener's poll-for-shutdown-flag cadence of spec §5.
	SetReadTimeout(d time.Duration) error

	// RemoteAddr identifies the peer; the stream server records it in
	// each connection's ClientHandle.
	RemoteAddr() string

	Close() error
}

type streamTransport struct {
	conn         net.Conn
	maxFrameSize uint32
}

// NewStreamTransport wraps an established net.Conn (the stream binding).
// maxFrameSize bounds every RecvFrame on this transport; zero selects
// framing.DefaultMaxFrameSize.
func NewStreamTransport(conn net.Conn, maxFrameSize uint32) Transport {
	if maxFrameSize == 0 {
		maxFrameSize = framing.DefaultMaxFrameSize
	}
	return &streamTransport{conn: conn, maxFrameSize: maxFrameSize}
}

func (t *streamTransport) SendFrame(body []byte) error {
	return framing.WriteStreamFrame(t.conn, body)
}

func (t *streamTransport) RecvFrame() ([]byte, error) {
	return framing.ReadStreamFrame(t.conn, t.maxFrameSize)
}

func (t *streamTransport) SetReadTimeout(d time.Duration) error {
	if d <= 0 {
		return t.conn.SetReadDeadline(time.Time{})
	}
	return t.conn.SetReadDeadline(time.Now().Add(d))
}

func (t *streamTransport) RemoteAddr() string { return t.conn.RemoteAddr().String() }

func (t *streamTransport) Close() error { return t.conn.Close() }

type datagramTransport struct {
	pc           net.PacketConn
	peer         net.Addr
	buf          []byte
	maxFrameSize uint32
}

// NewDatagramTransport binds the datagram side of a client: every send
// targets peer, every receive is validated to have come from it.
// maxFrameSize bounds every RecvFrame on this transport; zero selects
// framing.DefaultMaxFrameSize.
func NewDatagramTransport(pc net.PacketConn, peer net.Addr, maxFrameSize uint32) Transport {
	if maxFrameSize == 0 {
		maxFrameSize = framing.DefaultMaxFrameSize
	}
	return &datagramTransport{pc: pc, peer: peer, buf: make([]byte, maxFrameSize+framing.HeaderSize), maxFrameSize: maxFrameSize}
}

func (t *datagramTransport) SendFrame(body []byte) error {
	packet := framing.EncodeDatagramFrame(body)
	_, err := t.pc.WriteTo(packet, t.peer)
	return err
}

func (t *datagramTransport) RecvFrame() ([]byte, error) {
	for {
		n, from, err := t.pc.ReadFrom(t.buf)
		if err != nil {
			return nil, err
		}
		if from.String() != t.peer.String() {
			// A datagram from an unexpected peer on our own socket;
			// drop it and keep waiting rather than misroute it.
			continue
		}
		return framing.DecodeDatagramFrame(t.buf[:n], t.maxFrameSize)
	}
}

func (t *datagramTransport) SetReadTimeout(d time.Duration) error {
	if d <= 0 {
		return t.pc.SetReadDeadline(time.Time{})
	}
	return t.pc.SetReadDeadline(time.Now().Add(d))
}

func (t *datagramTransport) RemoteAddr() string { return t.peer.String() }

func (t *datagramTransport) Close() error { return t.pc.Close() }
