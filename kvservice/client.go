package kvservice

import (
	"genrpc/client"
	"genrpc/wire"
)

// Client is the generated typed wrapper over the core client.Client: one
// blocking method per RPC, one overridable field per push channel. The
// untyped client.Call error is discarded on every typed method, matching
// spec.md §7's "no distinguished error channel" literally — callers that
// need the transport-level error can still use Raw().
type Client struct {
	raw *client.Client

	// OnKeyChanged is invoked synchronously on the client's listener
	// goroutine for every onKeyChanged push. The default is a no-op.
	OnKeyChanged func(KeyChangeEvent)
}

// NewClient wraps an already-dialed core client and registers this
// service's push channel.
func NewClient(raw *client.Client) *Client {
	c := &Client{raw: raw, OnKeyChanged: func(KeyChangeEvent) {}}
	raw.RegisterPush(onKeyChangedPushID, c.dispatchKeyChanged)
	return c
}

// Raw returns the underlying transport-agnostic client, for callers that
// need Close() or want the untyped Call error.
func (c *Client) Raw() *client.Client { return c.raw }

func (c *Client) dispatchKeyChanged(body []byte) {
	r := wire.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return
	}
	var e KeyChangeEvent
	if err := e.Decode(r); err != nil {
		return
	}
	c.OnKeyChanged(e)
}

// TestInt exercises every integer width in one call (spec.md §8 scenario 1).
func (c *Client) TestInt(i8 int8, u8 uint8, i16 int16, u16 uint16, i32 int32, u32 uint32, i64 int64, u64 uint64) int32 {
	body := encodeTestIntArgs(i8, u8, i16, u16, i32, u32, i64, u64)
	resp, _, err := c.raw.Call(testIntReqID, testIntRespID, body)
	if err != nil {
		return 0
	}
	v, err := wire.NewReader(resp).ReadInt32()
	if err != nil {
		return 0
	}
	return v
}

// TestFloats sums a float32 and a float64 server-side (spec.md §8 scenario 2).
func (c *Client) TestFloats(f float32, d float64) float64 {
	body := encodeTestFloatsArgs(f, d)
	resp, _, err := c.raw.Call(testFloatsReqID, testFloatsRespID, body)
	if err != nil {
		return 0
	}
	v, err := wire.NewReader(resp).ReadFloat64()
	if err != nil {
		return 0
	}
	return v
}

// TestString round-trips a string through the server's echo handler
// (spec.md §8 scenario 3).
func (c *Client) TestString(s string) string {
	body := encodeTestStringArgs(s)
	resp, _, err := c.raw.Call(testStringReqID, testStringRespID, body)
	if err != nil {
		return ""
	}
	v, err := wire.NewReader(resp).ReadString()
	if err != nil {
		return ""
	}
	return v
}

// TestStruct sends a Blob and returns the server's mutated copy
// (spec.md §8 scenario 4).
func (c *Client) TestStruct(b Blob) Blob {
	body := encodeTestStructArgs(b)
	resp, _, err := c.raw.Call(testStructReqID, testStructRespID, body)
	if err != nil {
		return Blob{}
	}
	var out Blob
	if err := out.Decode(wire.NewReader(resp)); err != nil {
		return Blob{}
	}
	return out
}

// TestInOutParams exercises a method that mutates every parameter kind
// (spec.md §8 scenario 6).
func (c *Client) TestInOutParams(value int32, str string, data Blob, seq []int32) (int32, string, Blob, []int32) {
	body := encodeTestInOutParamsArgs(value, str, data, seq)
	resp, _, err := c.raw.Call(testInOutParamsReqID, testInOutParamsRespID, body)
	if err != nil {
		return 0, "", Blob{}, nil
	}
	r := wire.NewReader(resp)
	outValue, err := r.ReadInt32()
	if err != nil {
		return 0, "", Blob{}, nil
	}
	outStr, err := r.ReadString()
	if err != nil {
		return 0, "", Blob{}, nil
	}
	var outData Blob
	if err := outData.Decode(r); err != nil {
		return 0, "", Blob{}, nil
	}
	n, err := r.ReadUint32()
	if err != nil {
		return 0, "", Blob{}, nil
	}
	outSeq := make([]int32, n)
	for i := range outSeq {
		v, err := r.ReadInt32()
		if err != nil {
			return 0, "", Blob{}, nil
		}
		outSeq[i] = v
	}
	return outValue, outStr, outData, outSeq
}
