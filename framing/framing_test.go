package framing

import (
	"bytes"
	"errors"
	"testing"

	"genrpc/rpcerr"
)

func TestStreamFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	body := []byte("hello frame")
	if err := WriteStreamFrame(&buf, body); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != HeaderSize+len(body) {
		t.Fatalf("framed length %d, want %d", buf.Len(), HeaderSize+len(body))
	}
	got, err := ReadStreamFrame(&buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("got %q, want %q", got, body)
	}
}

func TestStreamFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x01, 0x00, 0x00}) // claims 65536 bytes
	_, err := ReadStreamFrame(&buf, 65535)
	if !errors.Is(err, rpcerr.ErrFrameTooLarge) {
		t.Fatalf("got %v, want ErrFrameTooLarge", err)
	}
}

func TestDatagramFrameRoundTrip(t *testing.T) {
	body := []byte("datagram body")
	packet := EncodeDatagramFrame(body)
	got, err := DecodeDatagramFrame(packet, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("got %q, want %q", got, body)
	}
}

func TestDatagramFrameRejectsLengthMismatch(t *testing.T) {
	packet := EncodeDatagramFrame([]byte("abc"))
	packet = append(packet, 'X') // corrupt: body now longer than declared length
	_, err := DecodeDatagramFrame(packet, 0)
	if !errors.Is(err, rpcerr.ErrMalformedMessage) {
		t.Fatalf("got %v, want ErrMalformedMessage", err)
	}
}
