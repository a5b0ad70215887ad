package logger

import "testing"

func TestSanitizeKVsRedactsCredentials(t *testing.T) {
	out := sanitizeKVs([]interface{}{"password", "hunter2", "user_id", "u-1", "secret_key", "s"})

	if out[1] != "[REDACTED]" {
		t.Fatalf("expected password to be redacted, got %v", out[1])
	}
	if out[3] != "u-1" {
		t.Fatalf("expected user_id to pass through, got %v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("expected secret to be redacted, got %v", out[5])
	}
}

func TestSanitizeKVsMasksDeviceTokens(t *testing.T) {
	out := sanitizeKVs([]interface{}{"device_token", "abcdefghijklmnop", "device_token", "short"})

	if out[1] != "abcdefgh…" {
		t.Fatalf("expected masked device token prefix, got %v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("expected short device token to be redacted, got %v", out[3])
	}
}

func TestSanitizeKVsKeepsDanglingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"status", 200, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("expected dangling key to be kept, got %v", out)
	}
}

func TestNopLoggerAcceptsCalls(t *testing.T) {
	log := Nop()
	log.With("component", "test").Info("hello", "password", "x")
	log.Sync()
}
