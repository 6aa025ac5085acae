package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"oxytoxin-be/internal/cart"
	"oxytoxin-be/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("backend rejected credentials")

	genericFailure = "something went wrong, please try again"
)

// envelope is the fixed response shape of every backend endpoint.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type DeliveryInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
}

type CreateOrderRequest struct {
	PaymentRef  string          `json:"paymentRef"`
	Items       []cart.LineItem `json:"items"`
	TotalAmount float64         `json:"totalAmount"`
}

type AuthResult struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

// TokenSource supplies the bearer token attached to each backend call.
// Wiring the session store's token here means a fresh login is picked up
// without rebuilding the client.
type TokenSource func(ctx context.Context) string

func StaticToken(token string) TokenSource {
	return func(context.Context) string { return token }
}

// Client is the thin wrapper over the remote authoritative backend. It
// forwards fields and interprets the success/error envelope; it never
// retries.
type Client struct {
	baseURL    string
	token      TokenSource
	httpClient *http.Client
}

func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Login authenticates against the backend's user store.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	data, err := c.do(ctx, "POST", "/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var res AuthResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to decode auth result: %w", err)
	}
	return &res, nil
}

// CreateOrder forwards the paid order to the backend's authoritative store.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) error {
	_, err := c.do(ctx, "POST", "/orders", req)
	return err
}

func (c *Client) SaveDeliveryInfo(ctx context.Context, info DeliveryInfo) error {
	if info.Name == "" || info.Phone == "" || info.Address == "" {
		return errors.New("missing required delivery fields")
	}
	_, err := c.do(ctx, "POST", "/delivery-info", info)
	return err
}

func (c *Client) DeliveryInfo(ctx context.Context) (*DeliveryInfo, error) {
	data, err := c.do(ctx, "GET", "/delivery-info", nil)
	if err != nil {
		return nil, err
	}

	var info DeliveryInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to decode delivery info: %w", err)
	}
	return &info, nil
}

// Messages fetches the support-chat inbox, normally on a Poller interval.
func (c *Client) Messages(ctx context.Context) ([]Message, error) {
	data, err := c.do(ctx, "GET", "/messages", nil)
	if err != nil {
		return nil, err
	}

	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) (json.RawMessage, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", method),
		zap.String("path", path),
	)

	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			log.Error("Failed to marshal request", zap.Error(err))
			return nil, err
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}

	if payload != nil {
		req.Header.Add("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(ctx); tok != "" {
			req.Header.Add("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Backend request failed", zap.Error(err))
		return nil, errors.New(genericFailure)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, errors.New(genericFailure)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		log.Warn("Backend rejected credentials", zap.Int("status", resp.StatusCode))
		return nil, ErrUnauthorized
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		log.Error("Failed decoding backend response",
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return nil, errors.New(genericFailure)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || env.Status == "error" {
		msg := env.Message
		if msg == "" {
			msg = genericFailure
		}
		log.Warn("Backend returned error envelope",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return nil, errors.New(msg)
	}

	return env.Data, nil
}
