package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"genrpc/registry"
	"genrpc/rpcerr"
	"genrpc/rpcmsg"
	"genrpc/telemetry"
	"genrpc/transport"
	"genrpc/wire"

	"go.uber.org/zap"
)

type trackedStreamClient struct {
	handle    *ClientHandle
	transport transport.Transport
	writeMu   sync.Mutex
}

// StreamServer accepts TCP connections, runs one read loop per connection,
// and dispatches each request id to the matching Dispatcher entry. A
// per-connection write mutex serializes the response to a request against
// any concurrent Broadcast send on the same connection.
type StreamServer struct {
	dispatch Dispatcher
	cfg      *config

	listener net.Listener
	wg       sync.WaitGroup
	shutdown atomic.Bool

	mu      sync.Mutex
	clients map[uint64]*trackedStreamClient

	advertiseAddr string
	serviceName   string

	OnClientConnected    func(*ClientHandle)
	OnClientDisconnected func(*ClientHandle)
}

// NewStreamServer builds a stream server for the given dispatch table.
func NewStreamServer(dispatch Dispatcher, opts ...Option) *StreamServer {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &StreamServer{
		dispatch: withMiddleware(dispatch, cfg.middlewares),
		cfg:      cfg,
		clients:  make(map[uint64]*trackedStreamClient),
	}
}

// Start binds the listener and records advertiseAddr for a later
// RegisterService call; it does not register anything itself. It does not
// block — call Run to enter the accept loop.
func (s *StreamServer) Start(network, address, advertiseAddr string) error {
	listener, err := net.Listen(network, address)
	if err != nil {
		return err
	}
	s.listener = listener
	s.advertiseAddr = advertiseAddr
	return nil
}

// Run enters the accept loop, spawning one goroutine per connection. It
// returns nil when Stop closes the listener, or the Accept error otherwise.
func (s *StreamServer) Run() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// ListenAddr returns the bound listener's address, useful when Start was
// given port 0 and the OS picked an ephemeral port.
func (s *StreamServer) ListenAddr() string {
	return s.listener.Addr().String()
}

// RegisterService advertises advertiseAddr in reg under serviceName and
// keeps it alive via reg's own TTL renewal.
func (s *StreamServer) RegisterService(reg registry.Registry, serviceName string, ttl int64) error {
	s.cfg.registry = reg
	s.serviceName = serviceName
	return reg.Register(serviceName, registry.ServiceInstance{Addr: s.advertiseAddr}, ttl)
}

func (s *StreamServer) handleConn(conn net.Conn) {
	t := transport.NewStreamTransport(conn, s.cfg.maxFrameSize)
	defer t.Close()

	client := &trackedStreamClient{
		handle:    newClientHandle(t.RemoteAddr(), func(frame []byte) error { return t.SendFrame(frame) }),
		transport: t,
	}

	s.mu.Lock()
	s.clients[client.handle.id] = client
	s.mu.Unlock()

	if s.OnClientConnected != nil {
		s.OnClientConnected(client.handle)
	}

	defer func() {
		s.mu.Lock()
		delete(s.clients, client.handle.id)
		s.mu.Unlock()
		if s.OnClientDisconnected != nil {
			s.OnClientDisconnected(client.handle)
		}
	}()

	for {
		frame, err := t.RecvFrame()
		if err != nil {
			return
		}
		go s.handleRequest(client, frame)
	}
}

func (s *StreamServer) handleRequest(client *trackedStreamClient, frame []byte) {
	s.wg.Add(1)
	defer s.wg.Done()

	r := wire.NewReader(frame)
	reqID, err := rpcmsg.PeekID(r)
	if err != nil {
		s.cfg.logger.Debug("dropping malformed stream request", zap.Error(err), telemetry.DumpField("frame", frame))
		return
	}

	handler, ok := s.dispatch[reqID]
	if !ok {
		s.cfg.logger.Debug("no handler for request id", zap.Uint32("message_id", reqID))
		return
	}

	payload := r.Rest()
	resp, status, err := handler(context.Background(), payload)
	if err != nil {
		s.cfg.logger.Debug("handler error", zap.Uint32("message_id", reqID), zap.Error(err))
		return
	}

	respID := reqID + 1
	out := make([]byte, 0, 8+len(resp))
	out = append(out, rpcmsg.EncodeResponseHeader(respID, status)...)
	out = append(out, resp...)

	client.writeMu.Lock()
	defer client.writeMu.Unlock()
	if err := client.transport.SendFrame(out); err != nil {
		s.cfg.logger.Debug("failed to send response", zap.Error(err))
	}
}

// Broadcast sends a pre-built push message (see rpcmsg.EncodeRequestHeader)
// to every tracked client except exclude, which may be nil. It holds the
// client-set lock for the entire fan-out: a slow or stalled client's write
// delays delivery to every other client, matching spec.md §9's noted
// broadcast weakness rather than working around it.
func (s *StreamServer) Broadcast(frame []byte, exclude *ClientHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for id, client := range s.clients {
		if exclude != nil && id == exclude.id {
			continue
		}
		client.writeMu.Lock()
		err := client.transport.SendFrame(frame)
		client.writeMu.Unlock()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ClientCount returns the number of currently tracked connections.
func (s *StreamServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Stop deregisters from the registry, stops accepting new connections, and
// waits up to timeout for in-flight requests to finish.
func (s *StreamServer) Stop(timeout time.Duration) error {
	if s.cfg.registry != nil && s.serviceName != "" {
		_ = s.cfg.registry.Deregister(s.serviceName, s.advertiseAddr)
	}
	s.shutdown.Store(true)
	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.mu.Lock()
	for _, client := range s.clients {
		_ = client.transport.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%w: timeout waiting for in-flight requests", rpcerr.ErrDisconnected)
	}
}
