package stripecard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftwell/settlement-engine/gateway/stripecard"
	"github.com/giftwell/settlement-engine/settlement"
)

// =============================================================================
// REFUND CALLS
// =============================================================================

func TestCreateRefund_SendsFormAndHeaders(t *testing.T) {
	// GIVEN: a processor stub capturing the request
	// WHEN: creating a refund
	// THEN: charge, amount, auth and idempotency key all arrive as expected

	var gotPath, gotAuth, gotIdemKey, gotCharge, gotAmount string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotIdemKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, r.ParseForm())
		gotCharge = r.PostForm.Get("charge")
		gotAmount = r.PostForm.Get("amount")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "re_abc123", "status": "succeeded"}`))
	}))
	defer server.Close()

	client := stripecard.NewClient(server.URL, "sk_test_key")

	refundID, err := client.CreateRefund(context.Background(), "ch_999", 9000, "refund_gift-1_c-1")
	require.NoError(t, err)

	assert.Equal(t, "re_abc123", refundID)
	assert.Equal(t, "/v1/refunds", gotPath)
	assert.Equal(t, "Bearer sk_test_key", gotAuth)
	assert.Equal(t, "refund_gift-1_c-1", gotIdemKey)
	assert.Equal(t, "ch_999", gotCharge)
	assert.Equal(t, "9000", gotAmount)
}

func TestCreateRefund_ErrorEnvelope(t *testing.T) {
	// GIVEN: the processor declining the refund
	// WHEN: creating a refund
	// THEN: the envelope surfaces as a GatewayError with code and message

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error": {"type": "card_error", "code": "charge_already_refunded", "message": "Charge ch_999 has already been refunded."}}`))
	}))
	defer server.Close()

	client := stripecard.NewClient(server.URL, "sk_test_key")

	_, err := client.CreateRefund(context.Background(), "ch_999", 9000, "refund_gift-1_c-1")
	require.Error(t, err)

	var gatewayErr *settlement.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "ch_999", gatewayErr.PaymentReference)
	assert.Equal(t, "charge_already_refunded", gatewayErr.Code)
	assert.Contains(t, gatewayErr.Message, "already been refunded")
}

func TestCreateRefund_OpaqueServerError(t *testing.T) {
	// A 5xx with no parseable envelope still comes back as a GatewayError.

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client := stripecard.NewClient(server.URL, "sk_test_key")

	_, err := client.CreateRefund(context.Background(), "ch_999", 9000, "k")
	var gatewayErr *settlement.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Contains(t, gatewayErr.Message, "502")
}

func TestCreateRefund_MissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "succeeded"}`))
	}))
	defer server.Close()

	client := stripecard.NewClient(server.URL, "sk_test_key")

	_, err := client.CreateRefund(context.Background(), "ch_999", 100, "k")
	var gatewayErr *settlement.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

func TestClient_Unconfigured(t *testing.T) {
	client := stripecard.NewClient("", "")

	assert.False(t, client.Configured())

	_, err := client.CreateRefund(context.Background(), "ch_1", 100, "k")
	assert.ErrorIs(t, err, settlement.ErrGatewayNotConfigured)
}

func TestClient_ConfiguredWithKey(t *testing.T) {
	assert.True(t, stripecard.NewClient("", "sk_test_key").Configured())
}
