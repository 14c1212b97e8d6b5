package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

const (
	headerEvent     = "X-Reserve-Event"
	headerDelivery  = "X-Reserve-Delivery"
	headerTimestamp = "X-Reserve-Timestamp"
	headerSignature = "X-Reserve-Signature"

	userAgent = "reserve-outbox/1.0"

	// drainLimit bounds how much of an endpoint's response body is read
	// before closing, enough to keep connections reusable without trusting
	// the endpoint to be well-behaved.
	drainLimit = 4 << 10
)

// Request carries one signed webhook POST.
type Request struct {
	URL        string
	Event      string
	DeliveryID string
	Timestamp  string
	Signature  string
	Body       []byte
}

// Sender issues signed webhook POSTs. Non-2xx responses and network errors
// are transient delivery failures feeding the retry policy; receivers are
// expected to dedupe on the delivery id header.
type Sender struct {
	client *http.Client
}

// NewSender creates a Sender. A nil client gets a default with a 10 second
// timeout.
func NewSender(client *http.Client) *Sender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Sender{client: client}
}

// Send POSTs the signed envelope to the endpoint URL.
func (s *Sender) Send(ctx context.Context, req Request) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return outboxDomain.Permanentf("build webhook request: %v", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set(headerEvent, req.Event)
	httpReq.Header.Set(headerDelivery, req.DeliveryID)
	httpReq.Header.Set(headerTimestamp, req.Timestamp)
	httpReq.Header.Set(headerSignature, req.Signature)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return outboxDomain.Transient(fmt.Errorf("post webhook: %w", err))
	}
	defer resp.Body.Close() //nolint:errcheck

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return outboxDomain.Transientf("endpoint responded %d", resp.StatusCode)
	}

	return nil
}
