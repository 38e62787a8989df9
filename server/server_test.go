package server

import (
	"context"
	"net"
	"testing"
	"time"

	"genrpc/framing"
	"genrpc/rpcmsg"
	"genrpc/wire"
)

func echoDispatch() Dispatcher {
	return Dispatcher{
		1000: func(ctx context.Context, payload []byte) ([]byte, int32, error) {
			return payload, 0, nil
		},
	}
}

func TestStreamServerDispatchesRequest(t *testing.T) {
	srv := NewStreamServer(echoDispatch())
	if err := srv.Start("tcp", "127.0.0.1:0", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	addr := srv.listener.Addr().String()
	go srv.Run()
	defer srv.Stop(time.Second)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	w := wire.NewWriter(16)
	w.WriteString("hello")
	frame := append(rpcmsg.EncodeRequestHeader(1000), w.Bytes()...)
	if err := framing.WriteStreamFrame(conn, frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := framing.ReadStreamFrame(conn, framing.DefaultMaxFrameSize)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}

	r := wire.NewReader(resp)
	id, err := rpcmsg.PeekID(r)
	if err != nil {
		t.Fatalf("peek id: %v", err)
	}
	if id != 1001 {
		t.Fatalf("expect response id 1001, got %d", id)
	}
	status, err := rpcmsg.ReadStatus(r)
	if err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status != 0 {
		t.Fatalf("expect status 0, got %d", status)
	}
	s, err := r.ReadString()
	if err != nil {
		t.Fatalf("read string: %v", err)
	}
	if s != "hello" {
		t.Fatalf("expect echoed 'hello', got %q", s)
	}
}

func TestStreamServerClientCountAndBroadcast(t *testing.T) {
	srv := NewStreamServer(echoDispatch())
	if err := srv.Start("tcp", "127.0.0.1:0", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	addr := srv.listener.Addr().String()
	go srv.Run()
	defer srv.Stop(time.Second)

	const n = 3
	conns := make([]net.Conn, n)
	for i := 0; i < n; i++ {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		defer conn.Close()
		conns[i] = conn
	}

	deadline := time.Now().Add(time.Second)
	for srv.ClientCount() != n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := srv.ClientCount(); got != n {
		t.Fatalf("expect %d tracked clients, got %d", n, got)
	}

	w := wire.NewWriter(16)
	w.WriteString("push!")
	pushFrame := append(rpcmsg.EncodeRequestHeader(2000), w.Bytes()...)
	if err := srv.Broadcast(pushFrame, nil); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	for _, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		frame, err := framing.ReadStreamFrame(conn, framing.DefaultMaxFrameSize)
		if err != nil {
			t.Fatalf("read pushed frame: %v", err)
		}
		r := wire.NewReader(frame)
		id, err := rpcmsg.PeekID(r)
		if err != nil || id != 2000 {
			t.Fatalf("expect push id 2000, got %d err=%v", id, err)
		}
	}
}

func TestDatagramServerDispatchesRequest(t *testing.T) {
	srv := NewDatagramServer(echoDispatch())
	if err := srv.Start("udp", "127.0.0.1:0", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	addr := srv.conn.LocalAddr().String()
	go srv.Run()
	defer srv.Stop(time.Second)

	conn, err := net.Dial("udp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	w := wire.NewWriter(16)
	w.WriteInt32(7)
	body := append(rpcmsg.EncodeRequestHeader(1000), w.Bytes()...)
	if _, err := conn.Write(framing.EncodeDatagramFrame(body)); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	resp, err := framing.DecodeDatagramFrame(buf[:n], framing.DefaultMaxFrameSize)
	if err != nil {
		t.Fatalf("decode datagram: %v", err)
	}
	r := wire.NewReader(resp)
	id, err := rpcmsg.PeekID(r)
	if err != nil || id != 1001 {
		t.Fatalf("expect response id 1001, got %d err=%v", id, err)
	}
}
