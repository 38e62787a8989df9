// Package client implements the client engine of spec §4.4: one blocking
// call per RPC method serialized under a send mutex, a dedicated listener
// goroutine that demultiplexes inbound frames between unsolicited pushes
// and pending call responses, and a response-correlation table keyed by
// message id — the literal, fragile-by-design correlation spec §4.4 and
// §9 describe, not the sequence-number redesign spec §9 sketches for a
// future rewrite.
//
// Generated per-service clients (see kvservice.Client) are thin wrappers
// over Call and RegisterPush; this package never knows about IDL types.
package client

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"genrpc/loadbalance"
	"genrpc/registry"
	"genrpc/rpcerr"
	"genrpc/rpcmsg"
	"genrpc/telemetry"
	"genrpc/transport"
	"genrpc/wire"
)

// DefaultCallTimeout is the per-call bound of spec §5: "default 5 seconds".
const DefaultCallTimeout = 5 * time.Second

// pollInterval is how often the listener re-checks the shutdown flag
// between reads, per spec §4.4/§5 ("1-second poll timeout").
const pollInterval = time.Second

// PushHandler receives the full frame body of a push message, including
// its leading message id, and is responsible for decoding it.
type PushHandler func(body []byte)

// Option configures a Client at Dial time.
type Option func(*Client)

// WithTimeout overrides DefaultCallTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger attaches a structured logger; the default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMaxFrameSize overrides the receive-side frame size ceiling.
func WithMaxFrameSize(n uint32) Option {
	return func(c *Client) { c.maxFrameSize = n }
}

// WithDiscovery makes Dial/DialDatagram ignore the host:port they were
// given and instead resolve the address from reg's current instance list
// for serviceName via bal, re-resolved on every Dial call (spec §4.4's
// discovery path through registry.Registry + loadbalance.Balancer).
func WithDiscovery(reg registry.Registry, bal loadbalance.Balancer, serviceName string) Option {
	return func(c *Client) {
		c.discovery = &discoverySource{registry: reg, balancer: bal, service: serviceName}
	}
}

// discoverySource resolves a dial address through a registry and balancer
// instead of a fixed host:port.
type discoverySource struct {
	registry registry.Registry
	balancer loadbalance.Balancer
	service  string
}

func (d *discoverySource) pick() (string, error) {
	instances, err := d.registry.Discover(d.service)
	if err != nil {
		return "", err
	}
	if len(instances) == 0 {
		return "", fmt.Errorf("client: no instances registered for service %q", d.service)
	}
	inst, err := d.balancer.Pick(instances)
	if err != nil {
		return "", err
	}
	return inst.Addr, nil
}

// Client owns one transport endpoint, one listener goroutine, one
// send-serializing mutex, and one response-correlation table — the
// lifecycle spec §3 assigns to a client instance.
type Client struct {
	t          transport.Transport
	streamLike bool

	sendMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[uint32]chan []byte

	pushMu       sync.RWMutex
	pushHandlers map[uint32]PushHandler

	timeout      time.Duration
	maxFrameSize uint32
	logger       *zap.Logger
	discovery    *discoverySource

	closed atomic.Bool
	doneCh chan struct{}
}

// resolveOptions applies opts exactly once, before the transport (which
// needs maxFrameSize) and the dial address (which needs discovery) are
// known.
func resolveOptions(opts []Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newClient(t transport.Transport, streamLike bool, c *Client) *Client {
	c.t = t
	c.streamLike = streamLike
	c.pending = make(map[uint32]chan []byte)
	c.pushHandlers = make(map[uint32]PushHandler)
	c.doneCh = make(chan struct{})
	if c.timeout == 0 {
		c.timeout = DefaultCallTimeout
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	go c.listenLoop()
	return c
}

func dialAddr(host string, port int, c *Client) (string, error) {
	if c.discovery != nil {
		return c.discovery.pick()
	}
	return net.JoinHostPort(host, fmt.Sprint(port)), nil
}

// Dial opens the stream binding: a TCP connection to host:port. With
// WithDiscovery, host:port is ignored and the address is instead picked
// from the registry on every call to Dial via the given balancer.
func Dial(host string, port int, opts ...Option) (*Client, error) {
	c := resolveOptions(opts)

	addr, err := dialAddr(host, port, c)
	if err != nil {
		return nil, err
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return newClient(transport.NewStreamTransport(conn, c.maxFrameSize), true, c), nil
}

// DialDatagram opens the datagram binding: a UDP socket fixed to host:port.
// With WithDiscovery, host:port is ignored and the address is instead
// picked from the registry on every call to DialDatagram via the given
// balancer.
func DialDatagram(host string, port int, opts ...Option) (*Client, error) {
	c := resolveOptions(opts)

	addr, err := dialAddr(host, port, c)
	if err != nil {
		return nil, err
	}

	peer, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	pc, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, err
	}
	return newClient(transport.NewDatagramTransport(pc, peer, c.maxFrameSize), false, c), nil
}

// RegisterPush binds a push channel's message id to a handler, called by
// generated client constructors once per declared push channel.
func (c *Client) RegisterPush(id uint32, h PushHandler) {
	c.pushMu.Lock()
	defer c.pushMu.Unlock()
	c.pushHandlers[id] = h
}

// Call sends a request built from reqID and body (the generated method's
// encoded arguments) and blocks for the response matching respID. It
// returns the response payload (everything after the id and status
// fields), the response's status, and any transport/protocol error.
//
// Only one call per respID may be in flight at a time on a given Client;
// issuing a second before the first resolves silently reuses the same
// pending slot and the two responses may be conflated (spec §4.4, §9).
func (c *Client) Call(reqID, respID uint32, body []byte) ([]byte, int32, error) {
	if c.closed.Load() {
		return nil, 0, rpcerr.ErrDisconnected
	}

	ch := make(chan []byte, 1)
	c.pendingMu.Lock()
	c.pending[respID] = ch
	c.pendingMu.Unlock()

	frame := append(rpcmsg.EncodeRequestHeader(reqID), body...)

	c.sendMu.Lock()
	err := c.t.SendFrame(frame)
	c.sendMu.Unlock()
	if err != nil {
		return nil, 0, err
	}

	select {
	case raw, ok := <-ch:
		if !ok {
			return nil, 0, rpcerr.ErrDisconnected
		}
		r := wire.NewReader(raw)
		if _, err := rpcmsg.PeekID(r); err != nil {
			return nil, 0, err
		}
		status, err := rpcmsg.ReadStatus(r)
		if err != nil {
			return nil, 0, err
		}
		return r.Rest(), status, nil
	case <-time.After(c.timeout):
		// Deliberately do not remove the pending entry: a response
		// that arrives after this timeout is now an orphan that the
		// next call to the same method will silently inherit (spec
		// §4.4, §9's "fragile by design" correlation).
		return nil, 0, rpcerr.ErrCallTimeout
	case <-c.doneCh:
		return nil, 0, rpcerr.ErrDisconnected
	}
}

// Close stops the listener and closes the transport. It is safe to call
// more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.t.Close()
	select {
	case <-c.doneCh:
	case <-time.After(pollInterval + 500*time.Millisecond):
	}
	return err
}

func (c *Client) listenLoop() {
	defer close(c.doneCh)
	for {
		if c.closed.Load() {
			c.closeAllPending()
			return
		}
		if err := c.t.SetReadTimeout(pollInterval); err != nil {
			c.closeAllPending()
			return
		}
		body, err := c.t.RecvFrame()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			c.logger.Debug("client transport closed", zap.Error(err))
			c.closeAllPending()
			return
		}

		r := wire.NewReader(body)
		id, err := rpcmsg.PeekID(r)
		if err != nil {
			c.logger.Warn("malformed message on client listener", zap.Error(err), telemetry.DumpField("frame", body))
			if c.streamLike {
				// Framing is lost once a length/payload
				// disagreement is observed on a byte stream.
				c.closeAllPending()
				return
			}
			continue
		}

		c.pushMu.RLock()
		h, isPush := c.pushHandlers[id]
		c.pushMu.RUnlock()
		if isPush {
			h(body)
			continue
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[id]
		c.pendingMu.Unlock()
		if ok {
			ch <- body
		}
		// Unknown id: neither a push nor anything currently awaited.
		// Dropped silently, per spec §7's "unknown message id on the
		// client" malformed-message recovery.
	}
}

func (c *Client) closeAllPending() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}
