// Package service implements webhook payload signing and HTTP delivery.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Signer produces the X-Reserve-Signature value for outgoing webhooks using
// HMAC-SHA256 over "<unix timestamp>.<raw JSON body>". Receivers verify with
// the shared secret and reject stale timestamps to stop replays.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer with the shared signing secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Configured reports whether a signing secret is present. An unconfigured
// signer fail-closes the whole webhook cycle; unsigned deliveries are never
// attempted.
func (s *Signer) Configured() bool {
	return len(s.secret) > 0
}

// SignatureInput builds the exact string that gets signed. It is persisted
// alongside the delivery for audit.
func SignatureInput(timestamp string, body []byte) string {
	return timestamp + "." + string(body)
}

// Sign computes the hex HMAC-SHA256 of the signature input.
func (s *Signer) Sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(SignatureInput(timestamp, body)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Header formats the signature header value: "t=<ts>,v1=<hex signature>".
// The v1 scheme tag leaves room for future algorithm changes.
func (s *Signer) Header(timestamp string, body []byte) string {
	return fmt.Sprintf("t=%s,v1=%s", timestamp, s.Sign(timestamp, body))
}
