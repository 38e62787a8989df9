package codec

import "testing"

func TestJSONDumpCodecDump(t *testing.T) {
	s, err := JSONDumpCodec{}.Dump(struct {
		A int
		B string
	}{A: 1, B: "x"})
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if s != `{"A":1,"B":"x"}` {
		t.Fatalf("unexpected dump: %q", s)
	}
}

func TestDefaultIsJSONDumpCodec(t *testing.T) {
	if _, ok := Default.(JSONDumpCodec); !ok {
		t.Fatalf("expect Default to be JSONDumpCodec, got %T", Default)
	}
}
