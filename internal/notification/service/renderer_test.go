package service

import (
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"en/reservation.created.txt":         {Data: []byte("Hi {{guestName}}, your table for {{partySize}} is booked.")},
		"en/reservation.created.subject.txt": {Data: []byte("Reservation confirmed")},
		"es/reservation.created.txt":         {Data: []byte("Hola {{guestName}}, tu mesa para {{partySize}} está reservada.")},
	}
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	return NewRenderer(testTemplates(), "en", slog.New(slog.DiscardHandler))
}

func TestRenderer_Render(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render("en", "reservation.created", map[string]any{
		"guestName": "Ana",
		"partySize": 4,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hi Ana, your table for 4 is booked.", out)
}

func TestRenderer_Render_LocaleMatch(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render("es", "reservation.created", map[string]any{
		"guestName": "Ana",
		"partySize": 2,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hola Ana, tu mesa para 2 está reservada.", out)
}

func TestRenderer_Render_FallbackToDefaultLocale(t *testing.T) {
	r := newTestRenderer(t)

	// fr has no templates: falls back to en without raising.
	out, err := r.Render("fr", "reservation.created", map[string]any{
		"guestName": "Luc",
		"partySize": 2,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hi Luc, your table for 2 is booked.", out)
}

func TestRenderer_Render_DefaultLocaleMissing(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.Render("fr", "reservation.unknown", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, outboxDomain.ErrPermanentPayload)
}

func TestRenderer_Render_Cached(t *testing.T) {
	fsys := testTemplates()
	r := NewRenderer(fsys, "en", slog.New(slog.DiscardHandler))

	_, err := r.Render("en", "reservation.created", nil)
	require.NoError(t, err)

	// Mutating the backing store after the first load must not change the
	// rendered output: templates are cached write-once per key.
	fsys["en/reservation.created.txt"] = &fstest.MapFile{Data: []byte("changed")}

	out, err := r.Render("en", "reservation.created", map[string]any{"guestName": "Ana", "partySize": 1})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ana, your table for 1 is booked.", out)
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		variables map[string]any
		want      string
	}{
		{
			name:      "present variable",
			text:      "Hi {{guestName}}",
			variables: map[string]any{"guestName": "Ana"},
			want:      "Hi Ana",
		},
		{
			name:      "absent variable renders empty",
			text:      "{{missing}}",
			variables: map[string]any{},
			want:      "",
		},
		{
			name:      "numeric variable stringified",
			text:      "party of {{partySize}}",
			variables: map[string]any{"partySize": 6},
			want:      "party of 6",
		},
		{
			name:      "empty braces pass through",
			text:      "a {{}} b",
			variables: map[string]any{"": "x"},
			want:      "a {{}} b",
		},
		{
			name:      "malformed forms pass through",
			text:      "a {{ open and }}closed{ and {{bad token}}",
			variables: map[string]any{"open": "x", "bad": "y"},
			want:      "a {{ open and }}closed{ and {{bad token}}",
		},
		{
			name:      "mixed tokens",
			text:      "{{a}}-{{b}}-{{a}}",
			variables: map[string]any{"a": "1"},
			want:      "1--1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.text, tt.variables))
		})
	}
}
