package rpcmsg

import (
	"testing"

	"genrpc/wire"
)

func TestAllocatorAssignsSequentialIDs(t *testing.T) {
	a := NewAllocator(1000)
	req1, resp1 := a.Method()
	if req1 != 1000 || resp1 != 1001 {
		t.Fatalf("got (%d, %d), want (1000, 1001)", req1, resp1)
	}
	req2, resp2 := a.Method()
	if req2 != 1002 || resp2 != 1003 {
		t.Fatalf("got (%d, %d), want (1002, 1003)", req2, resp2)
	}
	push := a.Push()
	if push != 1004 {
		t.Fatalf("got %d, want 1004", push)
	}
}

func TestResponseHeaderRoundTrip(t *testing.T) {
	b := EncodeResponseHeader(1001, 0)
	r := wire.NewReader(b)
	id, err := PeekID(r)
	if err != nil {
		t.Fatal(err)
	}
	if id != 1001 {
		t.Fatalf("got id %d, want 1001", id)
	}
	status, err := ReadStatus(r)
	if err != nil {
		t.Fatal(err)
	}
	if status != 0 {
		t.Fatalf("got status %d, want 0", status)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected no payload, got %d bytes left", r.Remaining())
	}
}
