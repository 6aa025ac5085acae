package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"oxytoxin-be/internal/checkout"
	"oxytoxin-be/internal/logger"
	"oxytoxin-be/internal/payment"

	"go.uber.org/zap"
)

// Handler receives Paystack's server-to-server charge notifications and
// resolves the open payment session. If the interactive flow already
// resolved it, the event is acknowledged without a second order record.
type Handler struct {
	Checkout *checkout.Adapter
	Gateway  payment.Gateway
}

func NewWebhookHandler(co *checkout.Adapter, gateway payment.Gateway) *Handler {
	return &Handler{
		Checkout: co,
		Gateway:  gateway,
	}
}

func (h *Handler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.Gateway.VerifyWebhookSignature(r, body); err != nil {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var event payment.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log := logger.FromCtx(r.Context()).With(
		zap.String("event", event.Event),
		zap.String("reference", event.Data.Reference),
	)

	if event.Event != payment.EventChargeSuccess {
		// other events carry nothing actionable for the session
		w.WriteHeader(http.StatusOK)
		return
	}

	_, err = h.Checkout.Complete(r.Context(), event.Data.Reference)
	switch {
	case err == nil:
		log.Info("webhook settled payment session")
	case errors.Is(err, checkout.ErrNoActiveSession):
		log.Info("payment session already resolved, acknowledging")
	default:
		log.Error("failed to settle payment from webhook", zap.Error(err))
		http.Error(w, "failed to settle payment", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
