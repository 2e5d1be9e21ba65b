/*
Package stripecard is the HTTP client for the card payment processor's
refund API.

PURPOSE:
  Implements settlement.PaymentGateway against a Stripe-shaped REST
  surface: POST {base}/v1/refunds with a form body, bearer auth, and an
  Idempotency-Key header. The processor deduplicates on that header, so a
  retried call returns the original refund object instead of moving money
  twice.

CONFIGURATION:
  NewClient(baseURL, apiKey). An empty apiKey produces an unconfigured
  client; the orchestrator checks Configured() before taking any lock.
  BaseURL defaults to the live processor; tests point it at an
  httptest.Server.

TIMEOUTS:
  Each call runs under a per-request timeout. A timed-out refund surfaces
  as a per-contribution failure and falls through to the credit path.
*/
package stripecard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/giftwell/settlement-engine/settlement"
)

const (
	defaultBaseURL = "https://api.stripe.com"
	defaultTimeout = 20 * time.Second
)

// Client talks to the refund API. Implements settlement.PaymentGateway.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

// NewClient creates a gateway client. baseURL may be empty for the
// default endpoint.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: defaultTimeout,
		http:    &http.Client{},
	}
}

// Configured reports whether API credentials are present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// refundResponse is the subset of the refund object we consume.
type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// apiError is the processor's error envelope.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateRefund refunds amountMinor cents against the original charge.
func (c *Client) CreateRefund(ctx context.Context, paymentReference string, amountMinor int64, idempotencyKey string) (string, error) {
	if !c.Configured() {
		return "", settlement.ErrGatewayNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("charge", paymentReference)
	form.Set("amount", strconv.FormatInt(amountMinor, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/refunds", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build refund request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &settlement.GatewayError{PaymentReference: paymentReference, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope apiError
		if derr := json.NewDecoder(resp.Body).Decode(&envelope); derr == nil && envelope.Error.Message != "" {
			return "", &settlement.GatewayError{
				PaymentReference: paymentReference,
				Code:             envelope.Error.Code,
				Message:          envelope.Error.Message,
			}
		}
		return "", &settlement.GatewayError{
			PaymentReference: paymentReference,
			Message:          fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var refund refundResponse
	if err := json.NewDecoder(resp.Body).Decode(&refund); err != nil {
		return "", fmt.Errorf("failed to decode refund response: %w", err)
	}
	if refund.ID == "" {
		return "", &settlement.GatewayError{PaymentReference: paymentReference, Message: "refund response missing id"}
	}
	return refund.ID, nil
}
