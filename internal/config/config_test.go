package config

import (
	"strings"
	"testing"
	"time"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := load(envOf(map[string]string{"TOKEN_SECRET": "s3cret"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "3030" {
		t.Fatalf("unexpected port %s", cfg.Server.Port)
	}
	if cfg.Mongo.URI != "" || cfg.Mongo.Database != "kanban" {
		t.Fatalf("unexpected mongo config %#v", cfg.Mongo)
	}
	if cfg.Security.TokenTTL != 7*24*time.Hour {
		t.Fatalf("unexpected ttl %v", cfg.Security.TokenTTL)
	}
	if len(cfg.Server.AllowedOrigins) != 4 {
		t.Fatalf("expected default origins, got %v", cfg.Server.AllowedOrigins)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Fatalf("expected no brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Websocket.SendBuffer != 32 {
		t.Fatalf("unexpected send buffer %d", cfg.Websocket.SendBuffer)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := load(envOf(map[string]string{
		"TOKEN_SECRET":    "s3cret",
		"NODE_ENV":        "production",
		"KAFKA_BROKER":    "k1:9092, k2:9092 ,",
		"ALLOWED_ORIGINS": "https://boards.example.com",
		"TOKEN_TTL":       "2h",
		"GUEST_MODE":      "true",
		"GUEST_EMAIL":     "guest@example.com",
		"GUEST_PASSWORD":  "guest",
		"WS_SEND_BUFFER":  "64",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Server.Production {
		t.Fatal("expected production mode")
	}
	if got := strings.Join(cfg.Kafka.Brokers, "|"); got != "k1:9092|k2:9092" {
		t.Fatalf("unexpected brokers %s", got)
	}
	if cfg.Security.TokenTTL != 2*time.Hour || !cfg.Security.GuestMode {
		t.Fatalf("unexpected security config %#v", cfg.Security)
	}
	if cfg.Websocket.SendBuffer != 64 {
		t.Fatalf("unexpected send buffer %d", cfg.Websocket.SendBuffer)
	}
}

func TestLoadCollectsErrors(t *testing.T) {
	t.Parallel()

	_, err := load(envOf(map[string]string{
		"TOKEN_TTL":  "soon",
		"GUEST_MODE": "true",
	}))
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, fragment := range []string{"TOKEN_SECRET", "TOKEN_TTL", "GUEST_MODE"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %s in %q", fragment, msg)
		}
	}
}
