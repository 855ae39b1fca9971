package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartflow/internal/applications/payment/model"
	"cartflow/pkg/testutil"
)

func TestDeriveIdempotencyKey(t *testing.T) {
	first := DeriveIdempotencyKey("pay-1", "capture", 0)
	again := DeriveIdempotencyKey("pay-1", "capture", 0)
	retry := DeriveIdempotencyKey("pay-1", "capture", 1)
	other := DeriveIdempotencyKey("pay-1", "refund", 0)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, retry)
	assert.NotEqual(t, first, other)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	processor, err := registry.Resolve(model.MethodCashOnDelivery)
	require.NoError(t, err)
	assert.NotNil(t, processor)

	_, err = registry.Resolve(model.MethodPayPal)
	require.Error(t, err)
}

func TestCashOnDelivery(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	processor := NewCashOnDelivery()
	payment := &model.Payment{Currency: "USD"}
	payment.ID = testutil.RandomUUID()

	result, err := processor.CreateIntent(ctx, payment, 4498, "key", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, result.Status)
	assert.Equal(t, "cod-"+payment.ID, result.ProviderRef)

	require.NoError(t, processor.Capture(ctx, payment, "key", nil))
	require.NoError(t, processor.Refund(ctx, payment, 4498, "change of mind", "key", nil))
	require.NoError(t, processor.Void(ctx, payment, "key", nil))

	_, err = processor.ValidateWebhook([]byte("{}"), "sig", "secret")
	require.Error(t, err)
}

func TestHostedGatewayValidateWebhook(t *testing.T) {
	g := NewHostedGateway("stripe", "https://gateway.example", 15*time.Second)
	secret := "whsec_test"
	payload := []byte(`{"type":"payment_intent.succeeded","sequence":5,"data":{"metadata":{"payment_id":"pay-1"}}}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	event, err := g.ValidateWebhook(payload, signature, secret)
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.succeeded", event.Type)
	assert.Equal(t, "pay-1", event.PaymentID)
	assert.Equal(t, int64(5), event.Sequence)

	_, err = g.ValidateWebhook(payload, "deadbeef", secret)
	require.Error(t, err)

	_, err = g.ValidateWebhook([]byte(`{"type":"x","sequence":1,"data":{"metadata":{}}}`), signatureFor(secret, `{"type":"x","sequence":1,"data":{"metadata":{}}}`), secret)
	require.Error(t, err)
}

func signatureFor(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCredentialCipherRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	cipher, err := NewCredentialCipher(hex.EncodeToString(key))
	require.NoError(t, err)

	creds := Credentials{"secret_key": "sk_test_123", "webhook_secret": "whsec_456"}
	blob, err := cipher.Seal(creds)
	require.NoError(t, err)

	opened, err := cipher.Open(blob)
	require.NoError(t, err)
	assert.Equal(t, creds, opened)

	_, err = cipher.Open(blob[:4])
	require.Error(t, err)
}

func TestNewCredentialCipherRejectsBadKey(t *testing.T) {
	_, err := NewCredentialCipher("too-short")
	require.Error(t, err)
}
