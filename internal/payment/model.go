package payment

import "time"

// Currency is fixed for the storefront; the catalog is single-currency.
const Currency = "NGN"

// InitializeRequest describes one payment session. AmountMinor is in minor
// currency units (kobo), total × 100.
type InitializeRequest struct {
	Email       string `json:"email"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
}

type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type TransactionStatus struct {
	Status      string
	Reference   string
	AmountMinor int64
	PaidAt      *time.Time
}

// WebhookEvent is the JSON Paystack posts to the webhook endpoint.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		PaidAt    string `json:"paid_at,omitempty"`
	} `json:"data"`
}

const (
	EventChargeSuccess = "charge.success"

	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)
