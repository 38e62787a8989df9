package transport

import (
	"net"
	"testing"
	"time"
)

func TestStreamTransportRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	serverDone := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tr := NewStreamTransport(conn, 0)
		body, err := tr.RecvFrame()
		if err != nil {
			return
		}
		serverDone <- body
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	client := NewStreamTransport(conn, 0)
	if err := client.SendFrame([]byte("ping")); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-serverDone:
		if string(got) != "ping" {
			t.Fatalf("got %q, want ping", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestDatagramTransportRoundTrip(t *testing.T) {
	serverPC, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer serverPC.Close()

	clientPC, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer clientPC.Close()

	client := NewDatagramTransport(clientPC, serverPC.LocalAddr(), 0)
	if err := client.SendFrame([]byte("hi")); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 2048)
	serverPC.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, from, err := serverPC.ReadFrom(buf)
	if err != nil {
		t.Fatal(err)
	}

	server := NewDatagramTransport(serverPC, from, 0)
	if err := server.SendFrame([]byte("echo:" + string(buf[4:n]))); err != nil {
		t.Fatal(err)
	}

	client.SetReadTimeout(2 * time.Second)
	got, err := client.RecvFrame()
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "echo:hi" {
		t.Fatalf("got %q, want echo:hi", got)
	}
}

func TestDatagramTransportReadTimeoutIsNetError(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer pc.Close()
	peer, err := net.ResolveUDPAddr("udp", "127.0.0.1:1")
	if err != nil {
		t.Fatal(err)
	}
	tr := NewDatagramTransport(pc, peer, 0)
	if err := tr.SetReadTimeout(50 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	_, err = tr.RecvFrame()
	if err == nil {
		t.Fatal("expected timeout error")
	}
	ne, ok := err.(net.Error)
	if !ok || !ne.Timeout() {
		t.Fatalf("expected net.Error timeout, got %v", err)
	}
}
