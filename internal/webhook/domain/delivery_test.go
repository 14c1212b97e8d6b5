package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

func TestParsePayload(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		payload, err := ParsePayload(json.RawMessage(`{"data": {"reservationId": "r-1", "partySize": 4}}`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"reservationId": "r-1", "partySize": 4}`, string(payload.Data))
	})

	t.Run("empty payload is permanent", func(t *testing.T) {
		_, err := ParsePayload(nil)
		assert.ErrorIs(t, err, outboxDomain.ErrPermanentPayload)
	})

	t.Run("malformed json is permanent", func(t *testing.T) {
		_, err := ParsePayload(json.RawMessage(`{"data":`))
		assert.ErrorIs(t, err, outboxDomain.ErrPermanentPayload)
	})

	t.Run("missing data is permanent", func(t *testing.T) {
		_, err := ParsePayload(json.RawMessage(`{}`))
		assert.ErrorIs(t, err, outboxDomain.ErrPermanentPayload)
	})
}
