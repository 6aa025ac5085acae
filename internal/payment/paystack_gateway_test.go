package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func TestPaystackGateway_InitializeTransaction(t *testing.T) {
	secretKey := "sk_test_secret"
	gw := NewPaystackGateway(secretKey).(*paystackGateway)

	req := InitializeRequest{
		Email:       "buyer@example.com",
		AmountMinor: 250000,
		Reference:   "817263545091",
	}

	t.Run("Success", func(t *testing.T) {
		respBody := `{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "817263545091"
			}
		}`

		gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "https://api.paystack.co/transaction/initialize", r.URL.String())
			assert.Equal(t, "Bearer "+secretKey, r.Header.Get("Authorization"))

			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"amount":250000`)
			assert.Contains(t, string(body), `"currency":"NGN"`)

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(respBody)),
				Header:     make(http.Header),
			}
		})

		resp, err := gw.InitializeTransaction(context.Background(), req)
		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Equal(t, "https://checkout.paystack.com/abc123", resp.AuthorizationURL)
		assert.Equal(t, "817263545091", resp.Reference)
	})

	t.Run("HTTP Error", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusUnauthorized,
				Body:       io.NopCloser(bytes.NewBufferString(`{"status":false,"message":"Invalid key"}`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.InitializeTransaction(context.Background(), req)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "paystack error")
	})

	t.Run("Provider Rejection", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{"status":false,"message":"Invalid amount"}`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.InitializeTransaction(context.Background(), req)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid amount")
	})
}

func TestPaystackGateway_VerifyTransaction(t *testing.T) {
	gw := NewPaystackGateway("sk_test_secret").(*paystackGateway)

	t.Run("Success", func(t *testing.T) {
		respBody := `{
			"status": true,
			"data": {
				"status": "success",
				"reference": "817263545091",
				"amount": 250000,
				"paid_at": "2024-03-01T12:00:00Z"
			}
		}`

		gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, "https://api.paystack.co/transaction/verify/817263545091", r.URL.String())

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(respBody)),
				Header:     make(http.Header),
			}
		})

		status, err := gw.VerifyTransaction(context.Background(), "817263545091")
		assert.NoError(t, err)
		assert.Equal(t, StatusSuccess, status.Status)
		assert.Equal(t, int64(250000), status.AmountMinor)
		assert.NotNil(t, status.PaidAt)
	})

	t.Run("Not Found", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{"status":false}`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.VerifyTransaction(context.Background(), "unknown")
		assert.Error(t, err)
	})
}

func TestPaystackGateway_VerifyWebhookSignature(t *testing.T) {
	secretKey := "sk_test_secret"
	gw := NewPaystackGateway(secretKey)

	body := []byte(`{"event":"charge.success","data":{"reference":"abc123"}}`)

	sign := func(key string, payload []byte) string {
		mac := hmac.New(sha512.New, []byte(key))
		mac.Write(payload)
		return hex.EncodeToString(mac.Sum(nil))
	}

	t.Run("Valid signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/paystack", bytes.NewReader(body))
		req.Header.Set("x-paystack-signature", sign(secretKey, body))

		assert.NoError(t, gw.VerifyWebhookSignature(req, body))
	})

	t.Run("Invalid signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/paystack", bytes.NewReader(body))
		req.Header.Set("x-paystack-signature", sign("wrong-key", body))

		assert.Error(t, gw.VerifyWebhookSignature(req, body))
	})

	t.Run("Missing signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/paystack", bytes.NewReader(body))

		assert.Error(t, gw.VerifyWebhookSignature(req, body))
	})

	t.Run("Empty secret skips check", func(t *testing.T) {
		devGw := NewPaystackGateway("")
		req := httptest.NewRequest(http.MethodPost, "/webhook/paystack", bytes.NewReader(body))

		assert.NoError(t, devGw.VerifyWebhookSignature(req, body))
	})
}
