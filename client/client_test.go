package client

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"genrpc/loadbalance"
	"genrpc/registry"
	"genrpc/server"
	"genrpc/wire"
)

func echoDispatch() server.Dispatcher {
	return server.Dispatcher{
		1000: func(ctx context.Context, payload []byte) ([]byte, int32, error) {
			return payload, 0, nil
		},
	}
}

func startEchoServer(t *testing.T) (host string, port int, stop func()) {
	t.Helper()
	srv := server.NewStreamServer(echoDispatch())
	if err := srv.Start("tcp", "127.0.0.1:0", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	go srv.Run()

	h, portStr, err := net.SplitHostPort(srv.ListenAddr())
	if err != nil {
		t.Fatalf("split listen addr: %v", err)
	}
	p, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse listen port: %v", err)
	}
	return h, p, func() { srv.Stop(time.Second) }
}

func callEcho(t *testing.T, c *Client, s string) string {
	t.Helper()
	w := wire.NewWriter(16)
	w.WriteString(s)
	body, status, err := c.Call(1000, 1001, w.Bytes())
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if status != 0 {
		t.Fatalf("expect status 0, got %d", status)
	}
	r := wire.NewReader(body)
	got, err := r.ReadString()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return got
}

func TestDialAndCallRoundTrip(t *testing.T) {
	host, port, stop := startEchoServer(t)
	defer stop()

	c, err := Dial(host, port)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if got := callEcho(t, c, "hello"); got != "hello" {
		t.Fatalf("expect echo 'hello', got %q", got)
	}
}

func TestDialWithDiscoveryResolvesFromRegistry(t *testing.T) {
	host, port, stop := startEchoServer(t)
	defer stop()

	reg := registry.NewMockRegistry()
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	if err := reg.Register("echosvc", registry.ServiceInstance{Addr: addr}, 10); err != nil {
		t.Fatalf("register: %v", err)
	}

	c, err := Dial("ignored-host", 0, WithDiscovery(reg, &loadbalance.RoundRobinBalancer{}, "echosvc"))
	if err != nil {
		t.Fatalf("dial with discovery: %v", err)
	}
	defer c.Close()

	if got := callEcho(t, c, "via-discovery"); got != "via-discovery" {
		t.Fatalf("expect echo 'via-discovery', got %q", got)
	}
}

func TestDialWithDiscoveryNoInstancesFails(t *testing.T) {
	reg := registry.NewMockRegistry()
	_, err := Dial("ignored-host", 0, WithDiscovery(reg, &loadbalance.RoundRobinBalancer{}, "missing"))
	if err == nil {
		t.Fatal("expect error when no instances are registered")
	}
}

func TestCallTimesOutWithNoResponse(t *testing.T) {
	host, port, stop := startEchoServer(t)
	defer stop()

	c, err := Dial(host, port, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	// 9999 has no registered handler on the server, so no response ever
	// arrives for this respID.
	if _, _, err := c.Call(9999, 9999, nil); err == nil {
		t.Fatal("expect call timeout error")
	}
}
