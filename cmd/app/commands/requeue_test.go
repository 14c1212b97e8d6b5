package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunRequeueNotificationInvalidID(t *testing.T) {
	err := RunRequeueNotification(context.Background(), "not-a-uuid", "text")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid notification id")
}

func TestRunRequeueWebhookInvalidID(t *testing.T) {
	err := RunRequeueWebhook(context.Background(), "not-a-uuid", "text")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid webhook delivery id")
}

func TestRunCreateWebhookEndpointInvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"relative", "/hooks"},
		{"no-scheme", "example.com/hooks"},
		{"bad-scheme", "ftp://example.com/hooks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RunCreateWebhookEndpoint(context.Background(), tt.url, "", "text")
			require.Error(t, err)
		})
	}
}
