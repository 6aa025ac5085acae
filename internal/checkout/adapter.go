package checkout

import (
	"context"
	"errors"
	"math"
	"sync"

	"oxytoxin-be/internal/cart"
	"oxytoxin-be/internal/logger"
	"oxytoxin-be/internal/order"
	"oxytoxin-be/internal/payment"
	"oxytoxin-be/internal/utils"

	"go.uber.org/zap"
)

// Outcome tags how a payment session ended. Exactly one outcome resolves
// each session.
type Outcome string

const (
	OutcomeCompleted   Outcome = "completed"
	OutcomeCancelled   Outcome = "cancelled"
	OutcomeSetupFailed Outcome = "setup_failed"
)

type Result struct {
	Outcome   Outcome
	Reference string
	Err       error
}

// Session is one open invocation of the provider's hosted payment UI.
type Session struct {
	Reference        string
	AccessCode       string
	AuthorizationURL string
	AmountMinor      int64
}

var (
	ErrPaymentInProgress = errors.New("a payment session is already open")
	ErrNoActiveSession   = errors.New("no payment session is open")
	ErrPaymentNotSettled = errors.New("payment not settled")
)

const (
	msgPaymentSuccess = "Payment complete! Your order has been placed."
	msgPaymentClosed  = "Payment was not completed. Your cart is unchanged."
	msgPaymentSetup   = "Could not start payment. Please try again."
	msgPaymentVerify  = "We could not confirm your payment. Please contact support."
)

// Adapter wraps the provider's popup lifecycle into one operation with a
// tagged result. While a session is open the loading flag is held so the
// UI can disable duplicate submits; every exit path releases it.
type Adapter struct {
	mu      sync.Mutex
	loading bool

	cart     *cart.Store
	recorder *order.Recorder
	gateway  payment.Gateway
	notifier Notifier
}

func NewAdapter(c *cart.Store, r *order.Recorder, g payment.Gateway, n Notifier) *Adapter {
	if n == nil {
		n = NewLogNotifier()
	}
	return &Adapter{cart: c, recorder: r, gateway: g, notifier: n}
}

func (a *Adapter) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// Begin opens a payment session for the current cart total. The amount is
// converted to minor units and the currency is fixed. Setup failure is
// terminal for the attempt; nothing is retried.
func (a *Adapter) Begin(ctx context.Context, payerEmail string) (*Session, error) {
	a.mu.Lock()
	if a.loading {
		a.mu.Unlock()
		return nil, ErrPaymentInProgress
	}
	if a.cart.Len() == 0 {
		a.mu.Unlock()
		return nil, cart.ErrCartEmpty
	}
	a.loading = true
	a.mu.Unlock()

	reference := utils.GeneratePaymentReference()
	amountMinor := int64(math.Round(a.cart.TotalAmount() * 100))

	resp, err := a.gateway.InitializeTransaction(ctx, payment.InitializeRequest{
		Email:       payerEmail,
		AmountMinor: amountMinor,
		Currency:    payment.Currency,
		Reference:   reference,
	})
	if err != nil {
		logger.FromCtx(ctx).Error("payment setup failed", zap.Error(err))
		a.notifier.Error(msgPaymentSetup)
		a.resolve()
		return nil, err
	}

	return &Session{
		Reference:        resp.Reference,
		AccessCode:       resp.AccessCode,
		AuthorizationURL: resp.AuthorizationURL,
		AmountMinor:      amountMinor,
	}, nil
}

// Complete resolves the open session as paid: verify with the provider,
// record the order, then clear the cart. Recording happens before the
// clear so a crash between the two loses nothing.
func (a *Adapter) Complete(ctx context.Context, reference string) (*order.Record, error) {
	a.mu.Lock()
	if !a.loading {
		a.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	a.mu.Unlock()

	status, err := a.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		logger.FromCtx(ctx).Error("payment verification failed", zap.Error(err))
		a.notifier.Error(msgPaymentVerify)
		a.resolve()
		return nil, err
	}
	if status.Status != payment.StatusSuccess {
		logger.FromCtx(ctx).Warn("payment not settled",
			zap.String("reference", reference),
			zap.String("status", status.Status),
		)
		a.notifier.Error(msgPaymentVerify)
		a.resolve()
		return nil, ErrPaymentNotSettled
	}

	rec, err := a.recorder.Record(ctx, a.cart.Items(), a.cart.TotalAmount(), reference)
	if err != nil {
		a.notifier.Error(msgPaymentVerify)
		a.resolve()
		return nil, err
	}

	a.cart.Clear(ctx)
	a.cart.SetVisible(false)
	a.notifier.Success(msgPaymentSuccess)
	a.resolve()

	return rec, nil
}

// Cancel resolves the open session as closed-without-paying. The cart is
// left untouched so the user can simply try again.
func (a *Adapter) Cancel(ctx context.Context) error {
	a.mu.Lock()
	if !a.loading {
		a.mu.Unlock()
		return ErrNoActiveSession
	}
	a.mu.Unlock()

	logger.FromCtx(ctx).Info("payment session closed by user")
	a.notifier.Error(msgPaymentClosed)
	a.resolve()
	return nil
}

func (a *Adapter) resolve() {
	a.mu.Lock()
	a.loading = false
	a.mu.Unlock()
}
