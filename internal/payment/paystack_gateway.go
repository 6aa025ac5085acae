package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"oxytoxin-be/internal/logger"

	"go.uber.org/zap"
)

const paystackBaseURL = "https://api.paystack.co"

type paystackGateway struct {
	secretKey  string
	httpClient *http.Client
}

// ----------------- Constructor -----------------

func NewPaystackGateway(secretKey string) Gateway {
	if secretKey == "" {
		logger.L().Warn("Paystack secret key is empty")
	}

	return &paystackGateway{
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ----------------- InitializeTransaction -----------------

func (p *paystackGateway) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("reference", req.Reference),
		zap.Int64("amount", req.AmountMinor),
		zap.String("email", req.Email),
	)

	if req.Currency == "" {
		req.Currency = Currency
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		log.Error("Failed to marshal payment request", zap.Error(err))
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", paystackBaseURL+"/transaction/initialize", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}

	httpReq.Header.Add("Authorization", "Bearer "+p.secretKey)
	httpReq.Header.Add("Content-Type", "application/json")

	log.Info("Initializing Paystack transaction")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		log.Error("Paystack request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read paystack response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("Paystack returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("paystack error: %s", string(bodyBytes))
	}

	var res struct {
		Status  bool               `json:"status"`
		Message string             `json:"message"`
		Data    InitializeResponse `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("Failed decoding Paystack response", zap.Error(err))
		return nil, err
	}
	if !res.Status {
		log.Error("Paystack rejected initialization", zap.String("message", res.Message))
		return nil, fmt.Errorf("paystack error: %s", res.Message)
	}

	log.Info("Paystack transaction initialized",
		zap.String("access_code", res.Data.AccessCode),
		zap.String("reference", res.Data.Reference),
	)

	return &res.Data, nil
}

// ----------------- VerifyTransaction -----------------

func (p *paystackGateway) VerifyTransaction(ctx context.Context, reference string) (*TransactionStatus, error) {
	log := logger.FromCtx(ctx).With(zap.String("reference", reference))

	url := fmt.Sprintf("%s/transaction/verify/%s", paystackBaseURL, reference)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		log.Error("Failed building request", zap.Error(err))
		return nil, err
	}

	req.Header.Add("Authorization", "Bearer "+p.secretKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Error("Request to Paystack failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read paystack response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("Paystack returned error",
			zap.Int("http_status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("paystack error: %s", string(bodyBytes))
	}

	var res struct {
		Status bool `json:"status"`
		Data   struct {
			Status    string     `json:"status"`
			Reference string     `json:"reference"`
			Amount    int64      `json:"amount"`
			PaidAt    *time.Time `json:"paid_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("Failed decoding transaction", zap.Error(err))
		return nil, err
	}
	if !res.Status {
		log.Warn("Transaction not found")
		return nil, errors.New("transaction not found")
	}

	return &TransactionStatus{
		Status:      res.Data.Status,
		Reference:   res.Data.Reference,
		AmountMinor: res.Data.Amount,
		PaidAt:      res.Data.PaidAt,
	}, nil
}

// ----------------- Verify Webhook Signature -----------------

func (p *paystackGateway) VerifyWebhookSignature(r *http.Request, body []byte) error {
	sig := r.Header.Get("x-paystack-signature")

	if p.secretKey == "" {
		return nil // skip in dev
	}

	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return errors.New("invalid webhook signature")
	}
	return nil
}
