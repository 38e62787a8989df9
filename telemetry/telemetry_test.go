package telemetry

import "testing"

func TestDumpFieldRendersJSON(t *testing.T) {
	f := DumpField("payload", map[string]int{"a": 1})
	if f.Key != "payload" {
		t.Fatalf("expect key 'payload', got %q", f.Key)
	}
	if f.String != `{"a":1}` {
		t.Fatalf("expect JSON dump, got %q", f.String)
	}
}

func TestNewNopDoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Info("noop")
}
