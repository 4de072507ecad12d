package natsconn

import (
	"testing"
	"time"
)

func TestWithDefaults_ZeroValues(t *testing.T) {
	opts := Options{URL: "nats://localhost:4222"}.withDefaults()
	if opts.MaxReconnects != DefaultMaxReconnects {
		t.Fatalf("expected default max reconnects %d, got %d", DefaultMaxReconnects, opts.MaxReconnects)
	}
	if opts.ReconnectWait != DefaultReconnectWait {
		t.Fatalf("expected default reconnect wait %s, got %s", DefaultReconnectWait, opts.ReconnectWait)
	}
}

func TestWithDefaults_ExplicitValues(t *testing.T) {
	opts := Options{
		URL:           "nats://localhost:4222",
		MaxReconnects: 7,
		ReconnectWait: 3 * time.Second,
	}.withDefaults()
	if opts.MaxReconnects != 7 {
		t.Fatalf("expected 7, got %d", opts.MaxReconnects)
	}
	if opts.ReconnectWait != 3*time.Second {
		t.Fatalf("expected 3s, got %s", opts.ReconnectWait)
	}
}

func TestWithDefaults_NegativeValues(t *testing.T) {
	opts := Options{URL: "nats://localhost:4222", MaxReconnects: -1, ReconnectWait: -time.Second}.withDefaults()
	if opts.MaxReconnects != DefaultMaxReconnects || opts.ReconnectWait != DefaultReconnectWait {
		t.Fatalf("expected defaults for negative knobs, got %+v", opts)
	}
}

func TestConnect_EmptyURL(t *testing.T) {
	if _, err := Connect(Options{}); err == nil {
		t.Fatal("expected error for empty NATS URL")
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(Options{
		URL:           "nats://127.0.0.1:19999",
		ReconnectWait: 10 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error connecting to invalid NATS URL")
	}
}
