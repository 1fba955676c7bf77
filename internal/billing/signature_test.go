package billing

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func signedHeader(secret string, timestamp int64, payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, ComputeSignature(secret, timestamp, payload))
}

func TestComputeSignature(t *testing.T) {
	secret := "whsec_test123"
	timestamp := int64(1736600000)
	payload := []byte(`{"type":"checkout.session.completed"}`)

	sig := ComputeSignature(secret, timestamp, payload)

	// Hex-encoded SHA256 is 64 chars
	if len(sig) != 64 {
		t.Errorf("signature length = %d, want 64", len(sig))
	}

	// Deterministic
	if sig != ComputeSignature(secret, timestamp, payload) {
		t.Error("signature is not deterministic")
	}

	// Sensitive to every input
	if sig == ComputeSignature(secret, timestamp+1, payload) {
		t.Error("different timestamp should produce different signature")
	}
	if sig == ComputeSignature(secret+"x", timestamp, payload) {
		t.Error("different secret should produce different signature")
	}
	if sig == ComputeSignature(secret, timestamp, []byte(`{}`)) {
		t.Error("different payload should produce different signature")
	}
}

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"type":"checkout.session.completed","data":{"object":{}}}`)
	now := time.Now().Unix()

	tests := []struct {
		name    string
		header  string
		payload []byte
		wantErr error
	}{
		{
			name:    "valid signature",
			header:  signedHeader(secret, now, payload),
			payload: payload,
		},
		{
			name:    "valid among multiple v1 entries",
			header:  fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", now, ComputeSignature(secret, now, payload)),
			payload: payload,
		},
		{
			name:    "tampered payload",
			header:  signedHeader(secret, now, payload),
			payload: []byte(`{"type":"checkout.session.completed","data":{"object":{"amount":0}}}`),
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "wrong secret",
			header:  signedHeader("whsec_other", now, payload),
			payload: payload,
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "stale timestamp",
			header:  signedHeader(secret, time.Now().Add(-10*time.Minute).Unix(), payload),
			payload: payload,
			wantErr: ErrReplayWindowExceeded,
		},
		{
			name:    "future timestamp beyond window",
			header:  signedHeader(secret, time.Now().Add(10*time.Minute).Unix(), payload),
			payload: payload,
			wantErr: ErrReplayWindowExceeded,
		},
		{
			name:    "empty header",
			header:  "",
			payload: payload,
			wantErr: ErrMalformedSignature,
		},
		{
			name:    "missing v1",
			header:  fmt.Sprintf("t=%d", now),
			payload: payload,
			wantErr: ErrMalformedSignature,
		},
		{
			name:    "missing timestamp",
			header:  "v1=abc123",
			payload: payload,
			wantErr: ErrMalformedSignature,
		},
		{
			name:    "non-numeric timestamp",
			header:  "t=notanumber,v1=abc123",
			payload: payload,
			wantErr: ErrMalformedSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(secret, tt.header, tt.payload, DefaultTolerance)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifySignature() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_123",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "customer": "cus_9", "payment_intent": "pi_7",
			"metadata": {"userId": "01HV5USER", "priceType": "per_listing"}}}
	}`)

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if event.Type != EventCheckoutCompleted {
		t.Errorf("event type = %q", event.Type)
	}

	session, err := event.CheckoutSession()
	if err != nil {
		t.Fatalf("CheckoutSession() error = %v", err)
	}
	if session.PaymentIntent != "pi_7" {
		t.Errorf("payment intent = %q", session.PaymentIntent)
	}
	if session.Metadata["userId"] != "01HV5USER" || session.Metadata["priceType"] != PriceTypePerListing {
		t.Errorf("metadata = %v", session.Metadata)
	}
}

func TestParseEvent_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "not-json"},
		{"missing type", `{"id":"evt_1","data":{"object":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEvent([]byte(tt.payload)); err == nil {
				t.Error("ParseEvent() expected error")
			}
		})
	}
}

func TestEvent_Subscription(t *testing.T) {
	payload := []byte(`{
		"id": "evt_456",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_1", "customer": "cus_9", "status": "canceled",
			"current_period_end": 1736600000}}
	}`)

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}

	sub, err := event.Subscription()
	if err != nil {
		t.Fatalf("Subscription() error = %v", err)
	}
	if sub.Customer != "cus_9" || sub.Status != "canceled" || sub.CurrentPeriodEnd != 1736600000 {
		t.Errorf("subscription = %+v", sub)
	}
}
