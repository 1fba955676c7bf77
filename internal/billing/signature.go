// Package billing integrates the payment processor: webhook signature
// verification, event parsing, and hosted-checkout provisioning.
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformedSignature is returned when the signature header cannot be parsed.
	ErrMalformedSignature = errors.New("malformed signature header")
	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrReplayWindowExceeded is returned when the timestamp is outside the tolerance window.
	ErrReplayWindowExceeded = errors.New("timestamp outside replay window")
)

// DefaultTolerance is the default replay protection window for webhook events.
const DefaultTolerance = 5 * time.Minute

// SignatureHeader is the HTTP header carrying the processor's signature.
const SignatureHeader = "Stripe-Signature"

// ComputeSignature creates the HMAC-SHA256 signature for a webhook payload.
// The canonical string format is: "{timestamp}.{payload}"
func ComputeSignature(secret string, timestamp int64, payload []byte) string {
	canonical := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// parseSignatureHeader extracts the timestamp and v1 signature from a header
// of the form "t=<unix>,v1=<hex>[,v1=<hex>...]".
func parseSignatureHeader(header string) (int64, []string, error) {
	var timestamp int64
	var signatures []string
	sawTimestamp := false

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return 0, nil, ErrMalformedSignature
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, ErrMalformedSignature
			}
			timestamp = ts
			sawTimestamp = true
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if !sawTimestamp || len(signatures) == 0 {
		return 0, nil, ErrMalformedSignature
	}

	return timestamp, signatures, nil
}

// VerifySignature checks a webhook payload against its signature header.
// It enforces the replay window and uses constant-time comparison. Any
// failure must leave state untouched; the processor owns redelivery.
func VerifySignature(secret, header string, payload []byte, tolerance time.Duration) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	if abs(now-timestamp) > int64(tolerance.Seconds()) {
		return ErrReplayWindowExceeded
	}

	expected := ComputeSignature(secret, timestamp, payload)
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}

	return ErrInvalidSignature
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
