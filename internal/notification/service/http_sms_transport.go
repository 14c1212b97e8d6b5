package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// SMSGatewayConfig holds the HTTP SMS gateway settings.
type SMSGatewayConfig struct {
	URL    string
	APIKey string
	From   string
}

// HTTPSMSTransport sends text messages through an HTTP SMS gateway.
type HTTPSMSTransport struct {
	config  SMSGatewayConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPSMSTransport creates an HTTP SMS transport. A nil client defaults
// to one with a 10 second timeout; a nil limiter disables rate limiting.
func NewHTTPSMSTransport(config SMSGatewayConfig, client *http.Client, limiter *rate.Limiter) *HTTPSMSTransport {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSMSTransport{config: config, client: client, limiter: limiter}
}

// Configured reports whether both the gateway URL and the API key are set.
func (t *HTTPSMSTransport) Configured() bool {
	return t.config.URL != "" && t.config.APIKey != ""
}

// smsRequest is the gateway wire format.
type smsRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// Send posts one message to the gateway. Any non-2xx response is an error
// the provider surfaces as transient.
func (t *HTTPSMSTransport) Send(ctx context.Context, sms SMS) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	body, err := json.Marshal(smsRequest{From: t.config.From, To: sms.To, Text: sms.Text})
	if err != nil {
		return fmt.Errorf("marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.config.APIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway responded %d", resp.StatusCode)
	}
	return nil
}
