// Package framing implements the frame wrapper of spec §4.3/§4.4 for both
// transport bindings named in spec §1: the stream binding (a 32-bit
// big-endian length prefix followed by exactly that many message bytes,
// read with io.ReadFull — the same discipline the teacher's protocol
// package uses, minus the magic/version/codec-type header bytes the wire
// format here does not carry) and the datagram binding (one message per
// datagram, with the length prefix duplicating — and validating against —
// the datagram's actual size).
package framing

import (
	"encoding/binary"
	"fmt"
	"io"

	"genrpc/rpcerr"
)

// HeaderSize is the length of the frame's length prefix, in bytes.
const HeaderSize = 4

// DefaultMaxFrameSize is the receive-buffer ceiling named in spec §6: a
// frame whose length prefix exceeds this is rejected as malformed before
// any allocation proportional to the (possibly attacker-controlled)
// length happens.
const DefaultMaxFrameSize = 65536

// WriteStreamFrame writes the length prefix and then body to w as a single
// logical frame. Callers sharing one writer across goroutines must
// serialize calls themselves (see client.Client's send mutex and the
// server's per-connection write mutex) — interleaving two frames' bytes
// corrupts the stream for every reader downstream.
func WriteStreamFrame(w io.Writer, body []byte) error {
	var hdr [HeaderSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(body)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

// ReadStreamFrame reads one complete frame from r, using io.ReadFull so a
// short read never silently returns a truncated message. maxFrameSize
// bounds the body length; 0 selects DefaultMaxFrameSize.
func ReadStreamFrame(r io.Reader, maxFrameSize uint32) ([]byte, error) {
	if maxFrameSize == 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("%w: %w: frame length %d exceeds max %d", rpcerr.ErrMalformedMessage, rpcerr.ErrFrameTooLarge, n, maxFrameSize)
	}
	body := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// EncodeDatagramFrame prepends the length prefix to body for the datagram
// binding, where the length duplicates — rather than precedes on a shared
// stream — the size of a single atomic send.
func EncodeDatagramFrame(body []byte) []byte {
	out := make([]byte, HeaderSize+len(body))
	binary.BigEndian.PutUint32(out[:HeaderSize], uint32(len(body)))
	copy(out[HeaderSize:], body)
	return out
}

// DecodeDatagramFrame validates a received datagram's duplicated length
// prefix against the datagram's actual size and returns the message body.
// A mismatch is always malformed — there is no partial-frame recovery on
// an unreliable, one-packet-per-message transport (spec §9, "no
// fragmentation").
func DecodeDatagramFrame(packet []byte, maxFrameSize uint32) ([]byte, error) {
	if maxFrameSize == 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	if len(packet) < HeaderSize {
		return nil, fmt.Errorf("%w: datagram shorter than frame header", rpcerr.ErrMalformedMessage)
	}
	n := binary.BigEndian.Uint32(packet[:HeaderSize])
	if n > maxFrameSize {
		return nil, fmt.Errorf("%w: %w: frame length %d exceeds max %d", rpcerr.ErrMalformedMessage, rpcerr.ErrFrameTooLarge, n, maxFrameSize)
	}
	body := packet[HeaderSize:]
	if uint32(len(body)) != n {
		return nil, fmt.Errorf("%w: length prefix %d does not match datagram body %d", rpcerr.ErrMalformedMessage, n, len(body))
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}
