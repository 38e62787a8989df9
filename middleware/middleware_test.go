package middleware

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func echoHandler(ctx context.Context, req *Request) *Response {
	return &Response{Payload: []byte("ok"), Status: StatusOK}
}

func slowHandler(ctx context.Context, req *Request) *Response {
	time.Sleep(200 * time.Millisecond)
	return &Response{Payload: []byte("ok"), Status: StatusOK}
}

func TestLogging(t *testing.T) {
	handler := LoggingMiddleware(zap.NewNop())(echoHandler)
	resp := handler(context.Background(), &Request{ID: 1000})
	if resp == nil {
		t.Fatal("expect non-nil response")
	}
	if string(resp.Payload) != "ok" {
		t.Fatalf("expect payload 'ok', got %q", resp.Payload)
	}
}

func TestTimeoutPass(t *testing.T) {
	handler := TimeoutMiddleware(500 * time.Millisecond)(echoHandler)
	resp := handler(context.Background(), &Request{ID: 1000})
	if resp.Status != StatusOK {
		t.Fatalf("expect StatusOK, got %d", resp.Status)
	}
}

func TestTimeoutExceeded(t *testing.T) {
	handler := TimeoutMiddleware(50 * time.Millisecond)(slowHandler)
	resp := handler(context.Background(), &Request{ID: 1000})
	if resp.Status != StatusTimeout {
		t.Fatalf("expect StatusTimeout, got %d", resp.Status)
	}
}

func TestRateLimit(t *testing.T) {
	handler := RateLimitMiddleware(1, 2)(echoHandler)
	req := &Request{ID: 1000}

	for i := 0; i < 2; i++ {
		resp := handler(context.Background(), req)
		if resp.Status != StatusOK {
			t.Fatalf("request %d should pass, got status %d", i, resp.Status)
		}
	}

	resp := handler(context.Background(), req)
	if resp.Status != StatusRateLimited {
		t.Fatalf("request 3 should be rate limited, got status %d", resp.Status)
	}
}

func TestChain(t *testing.T) {
	chained := Chain(LoggingMiddleware(zap.NewNop()), TimeoutMiddleware(500*time.Millisecond))
	handler := chained(echoHandler)
	resp := handler(context.Background(), &Request{ID: 1000})
	if resp == nil {
		t.Fatal("expect non-nil response")
	}
	if resp.Status != StatusOK {
		t.Fatalf("expect StatusOK, got %d", resp.Status)
	}
}

func TestRetryRetriesOnTimeoutOnly(t *testing.T) {
	attempts := 0
	flaky := func(ctx context.Context, req *Request) *Response {
		attempts++
		if attempts < 3 {
			return &Response{Status: StatusTimeout}
		}
		return &Response{Status: StatusOK, Payload: []byte("ok")}
	}
	handler := RetryMiddleware(zap.NewNop(), 5, time.Millisecond)(flaky)
	resp := handler(context.Background(), &Request{ID: 1000})
	if resp.Status != StatusOK {
		t.Fatalf("expect eventual StatusOK, got %d", resp.Status)
	}
	if attempts != 3 {
		t.Fatalf("expect 3 attempts, got %d", attempts)
	}
}
