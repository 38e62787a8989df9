package server

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"genrpc/framing"
	"genrpc/registry"
	"genrpc/rpcmsg"
	"genrpc/telemetry"
	"genrpc/wire"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type datagramClient struct {
	addr      net.Addr
	sessionID string
}

// DatagramServer runs a single receive loop over one UDP socket, dispatching
// each packet inline (no per-packet goroutine — a slow handler delays the
// next datagram, matching spec.md §4.5's description of the binding). The
// client set is address-keyed and refreshed on every packet; there is no
// explicit disconnect notification for datagram clients.
type DatagramServer struct {
	dispatch Dispatcher
	cfg      *config

	conn     net.PacketConn
	shutdown atomic.Bool

	mu      sync.Mutex
	clients map[string]datagramClient

	advertiseAddr string
	serviceName   string

	// OnClientSeen fires the first time a datagram arrives from addr,
	// with the session token minted for it — there is no transport-level
	// handshake to carry one, so the server assigns it on first sight.
	OnClientSeen func(addr, sessionID string)
}

// NewDatagramServer builds a datagram server for the given dispatch table.
func NewDatagramServer(dispatch Dispatcher, opts ...Option) *DatagramServer {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &DatagramServer{
		dispatch: withMiddleware(dispatch, cfg.middlewares),
		cfg:      cfg,
		clients:  make(map[string]datagramClient),
	}
}

// Start binds the UDP socket.
func (s *DatagramServer) Start(network, address, advertiseAddr string) error {
	conn, err := net.ListenPacket(network, address)
	if err != nil {
		return err
	}
	s.conn = conn
	s.advertiseAddr = advertiseAddr
	return nil
}

// RegisterService advertises advertiseAddr in reg under serviceName.
func (s *DatagramServer) RegisterService(reg registry.Registry, serviceName string, ttl int64) error {
	s.cfg.registry = reg
	s.serviceName = serviceName
	return reg.Register(serviceName, registry.ServiceInstance{Addr: s.advertiseAddr}, ttl)
}

// Run enters the receive loop. It returns nil once Stop closes the socket.
func (s *DatagramServer) Run() error {
	buf := make([]byte, s.cfg.maxFrameSize+framing.HeaderSize)
	for {
		n, addr, err := s.conn.ReadFrom(buf)
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			return err
		}

		packet := make([]byte, n)
		copy(packet, buf[:n])
		s.trackClient(addr)
		s.handlePacket(addr, packet)
	}
}

func (s *DatagramServer) trackClient(addr net.Addr) {
	key := addr.String()
	s.mu.Lock()
	entry, known := s.clients[key]
	if !known {
		entry = datagramClient{addr: addr, sessionID: uuid.NewString()}
		s.clients[key] = entry
	}
	s.mu.Unlock()
	if !known && s.OnClientSeen != nil {
		s.OnClientSeen(key, entry.sessionID)
	}
}

// SessionID returns the token minted for addr on its first datagram, and
// whether addr has been seen at all.
func (s *DatagramServer) SessionID(addr string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.clients[addr]
	return entry.sessionID, ok
}

func (s *DatagramServer) handlePacket(addr net.Addr, packet []byte) {
	body, err := framing.DecodeDatagramFrame(packet, s.cfg.maxFrameSize)
	if err != nil {
		s.cfg.logger.Debug("dropping malformed datagram", zap.Error(err))
		return
	}

	r := wire.NewReader(body)
	reqID, err := rpcmsg.PeekID(r)
	if err != nil {
		s.cfg.logger.Debug("dropping malformed datagram request", zap.Error(err), telemetry.DumpField("frame", body))
		return
	}

	handler, ok := s.dispatch[reqID]
	if !ok {
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

	if _, err := s.conn.WriteTo(framing.EncodeDatagramFrame(out), addr); err != nil {
		s.cfg.logger.Debug("failed to send datagram response", zap.Error(err))
	}
}

// Broadcast sends a pre-built push message to every address seen since
// startup except exclude — datagram clients are never removed, only added.
func (s *DatagramServer) Broadcast(frame []byte, exclude string) error {
	s.mu.Lock()
	addrs := make([]net.Addr, 0, len(s.clients))
	for key, entry := range s.clients {
		if key == exclude {
			continue
		}
		addrs = append(addrs, entry.addr)
	}
	s.mu.Unlock()

	packet := framing.EncodeDatagramFrame(frame)
	var firstErr error
	for _, addr := range addrs {
		if _, err := s.conn.WriteTo(packet, addr); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ClientCount returns the number of distinct addresses seen.
func (s *DatagramServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Stop deregisters from the registry and closes the socket.
func (s *DatagramServer) Stop(timeout time.Duration) error {
	if s.cfg.registry != nil && s.serviceName != "" {
		_ = s.cfg.registry.Deregister(s.serviceName, s.advertiseAddr)
	}
	s.shutdown.Store(true)
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
