package payment

import (
	"context"
	"net/http"
)

type Gateway interface {
	InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
	VerifyTransaction(ctx context.Context, reference string) (*TransactionStatus, error)
	VerifyWebhookSignature(r *http.Request, body []byte) error
}
