package push

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestBuildSendRequestDefaults(t *testing.T) {
	request, err := buildSendRequest(Message{
		Token: "token-1",
		Title: "Analysis ready",
		Body:  "Your skin analysis is complete",
		Data:  map[string]string{"type": "skin_analysis_complete"},
	})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}

	message := request.Message
	if message.Token != "token-1" {
		t.Fatalf("expected token to be carried, got %q", message.Token)
	}
	if message.Android.Priority != "NORMAL" {
		t.Fatalf("expected NORMAL android priority by default, got %q", message.Android.Priority)
	}
	if message.Android.Ttl != "86400s" {
		t.Fatalf("expected 24h ttl, got %q", message.Android.Ttl)
	}
	if message.Data["type"] != "skin_analysis_complete" {
		t.Fatalf("expected data to be carried, got %v", message.Data)
	}

	var apns apnsPayload
	if err := json.Unmarshal(message.Apns.Payload, &apns); err != nil {
		t.Fatalf("decode apns payload: %v", err)
	}
	if apns.APS.Sound != "default" || apns.APS.Badge != 1 {
		t.Fatalf("expected default sound and badge 1, got %+v", apns.APS)
	}
	if apns.APS.Alert.Title != "Analysis ready" {
		t.Fatalf("expected apns alert title, got %q", apns.APS.Alert.Title)
	}
}

func TestBuildSendRequestHighPriorityAndCustomTTL(t *testing.T) {
	request, err := buildSendRequest(Message{Token: "t", Priority: PriorityHigh, TTL: time.Hour, Badge: 3})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if request.Message.Android.Priority != "HIGH" {
		t.Fatalf("expected HIGH priority, got %q", request.Message.Android.Priority)
	}
	if request.Message.Android.Ttl != "3600s" {
		t.Fatalf("expected 3600s ttl, got %q", request.Message.Android.Ttl)
	}
}

func TestBuildSendRequestRequiresToken(t *testing.T) {
	if _, err := buildSendRequest(Message{Token: "  "}); !errors.Is(err, ErrTokenRequired) {
		t.Fatalf("expected ErrTokenRequired, got %v", err)
	}
}

func TestFCMConfigEnabled(t *testing.T) {
	if (FCMConfig{ProjectID: "p"}).Enabled() {
		t.Fatal("expected config without credentials to be disabled")
	}
	if !(FCMConfig{ProjectID: "p", CredentialsJSON: "{}"}).Enabled() {
		t.Fatal("expected config with inline credentials to be enabled")
	}
	if _, err := NewFCMSender(context.Background(), FCMConfig{}); err == nil {
		t.Fatal("expected NewFCMSender to reject empty config")
	}
}

func TestLogSenderSucceedsWithToken(t *testing.T) {
	sender := NewLogSender(nil)
	if err := sender.Send(context.Background(), Message{Token: "abc"}); err != nil {
		t.Fatalf("expected log sender to succeed, got %v", err)
	}
	if err := sender.Send(context.Background(), Message{}); !errors.Is(err, ErrTokenRequired) {
		t.Fatalf("expected ErrTokenRequired, got %v", err)
	}
}
