package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignerSign(t *testing.T) {
	signer := NewSigner("s")
	body := []byte(`{"a":1}`)

	mac := hmac.New(sha256.New, []byte("s"))
	mac.Write([]byte(`1700000000.{"a":1}`))
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, signer.Sign("1700000000", body))
}

func TestSignerSignChangesWithAnyInput(t *testing.T) {
	signer := NewSigner("s")
	base := signer.Sign("1700000000", []byte(`{"a":1}`))

	assert.NotEqual(t, base, signer.Sign("1700000001", []byte(`{"a":1}`)))
	assert.NotEqual(t, base, signer.Sign("1700000000", []byte(`{"a":2}`)))
	assert.NotEqual(t, base, NewSigner("t").Sign("1700000000", []byte(`{"a":1}`)))
}

func TestSignerHeader(t *testing.T) {
	signer := NewSigner("s")
	body := []byte(`{"a":1}`)

	header := signer.Header("1700000000", body)
	assert.Equal(t, "t=1700000000,v1="+signer.Sign("1700000000", body), header)
}

func TestSignerConfigured(t *testing.T) {
	assert.True(t, NewSigner("s").Configured())
	assert.False(t, NewSigner("").Configured())
}

func TestSignatureInput(t *testing.T) {
	assert.Equal(t, `1700000000.{"a":1}`, SignatureInput("1700000000", []byte(`{"a":1}`)))
}
