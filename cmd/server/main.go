package main

import (
	"context"
	"net/http"
	"time"

	"oxytoxin-be/internal/backend"
	"oxytoxin-be/internal/cart"
	"oxytoxin-be/internal/checkout"
	"oxytoxin-be/internal/config"
	"oxytoxin-be/internal/logger"
	"oxytoxin-be/internal/middleware"
	"oxytoxin-be/internal/order"
	"oxytoxin-be/internal/payment"
	"oxytoxin-be/internal/payment/webhook"
	"oxytoxin-be/internal/session"
	"oxytoxin-be/internal/storage"
	"oxytoxin-be/internal/transport"

	"go.uber.org/zap"
)

// Indirections for testability.
var (
	openStoreFunc   = openStore
	startServerFunc = http.ListenAndServe
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	st, cleanup, err := openStoreFunc(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	router := newServer(cfg, st)

	logger.L().Info("storefront session server listening",
		zap.String("port", cfg.AppPort),
		zap.String("storage", cfg.StorageDriver))
	return startServerFunc(":"+cfg.AppPort, router)
}

// openStore picks the persistence driver. Memory is the default so the
// server runs with zero configuration.
func openStore(cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.StorageDriver {
	case "postgres":
		db, err := storage.OpenPostgres(cfg)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresStore(db), func() { _ = db.Close() }, nil
	case "file":
		st, err := storage.NewFileStore(cfg.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	default:
		return storage.NewMemoryStore(), func() {}, nil
	}
}

func newServer(cfg *config.Config, st storage.Store) http.Handler {
	ctx := context.Background()

	cartStore := cart.NewStore(ctx, st)
	recorder := order.NewRecorder(st)
	gateway := payment.NewPaystackGateway(cfg.PaystackSecretKey)
	notifier := checkout.NewLogNotifier()
	adapter := checkout.NewAdapter(cartStore, recorder, gateway, notifier)

	sessions := session.NewStore(st)
	guard := session.NewGuard(sessions, notifier, session.GuardConfig{
		Timeout:       cfg.IdleTimeout,
		WarningWindow: cfg.WarningWindow,
	})
	// arms only if a persisted session survived a restart
	guard.Start(ctx)

	client := backend.NewClient(cfg.BackendBaseURL, sessions.Token)
	inbox := backend.NewInbox(client, time.Minute)
	inbox.Start(ctx)

	h := &transport.Handler{
		Cart:     cartStore,
		Checkout: adapter,
		Recorder: recorder,
		Sessions: sessions,
		Guard:    guard,
		Backend:  client,
		Inbox:    inbox,
	}

	wh := webhook.NewWebhookHandler(adapter, gateway)

	return setupRouter(h, wh.WebhookHandler)
}

func setupRouter(h *transport.Handler, webhookHandler http.HandlerFunc) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("POST /session/touch", h.Touch)

	mux.HandleFunc("GET /cart", h.GetCart)
	mux.HandleFunc("POST /cart/items", h.AddCartItem)
	mux.HandleFunc("PATCH /cart/items/{id}", h.UpdateCartItem)
	mux.HandleFunc("DELETE /cart/items/{id}", h.RemoveCartItem)
	mux.HandleFunc("DELETE /cart", h.ClearCart)

	mux.HandleFunc("POST /checkout", h.BeginCheckout)
	mux.HandleFunc("POST /checkout/complete", h.CompleteCheckout)
	mux.HandleFunc("POST /checkout/cancel", h.CancelCheckout)

	mux.HandleFunc("GET /orders/history", h.OrderHistory)

	mux.Handle("POST /delivery-info", middleware.RequireAuth(http.HandlerFunc(h.SaveDeliveryInfo)))
	mux.Handle("GET /delivery-info", middleware.RequireAuth(http.HandlerFunc(h.GetDeliveryInfo)))
	mux.Handle("GET /admin/messages", middleware.RequireAuth(http.HandlerFunc(h.Messages)))

	mux.HandleFunc("POST /webhook/paystack", webhookHandler)

	var handler http.Handler = mux
	handler = middleware.AuthMiddleware(handler)
	handler = middleware.RateLimitMiddleware(handler)
	handler = middleware.CORS(handler)
	handler = logger.LoggingMiddleware(handler)
	handler = logger.RequestIDMiddleware(handler)
	return handler
}
