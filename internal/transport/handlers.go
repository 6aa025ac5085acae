package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"oxytoxin-be/internal/backend"
	"oxytoxin-be/internal/cart"
	"oxytoxin-be/internal/checkout"
	"oxytoxin-be/internal/logger"
	"oxytoxin-be/internal/order"
	"oxytoxin-be/internal/session"
	"oxytoxin-be/internal/user"
	"oxytoxin-be/internal/utils"

	"go.uber.org/zap"
)

// Handler exposes the storefront session over REST.
type Handler struct {
	Cart     *cart.Store
	Checkout *checkout.Adapter
	Recorder *order.Recorder
	Sessions *session.Store
	Guard    *session.Guard
	Backend  *backend.Client
	Inbox    *backend.Inbox
}

// ----------------- Auth -----------------

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	res, err := h.Backend.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			WriteError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	token, err := user.GenerateJWT(res.UserID, res.Email, res.Name)
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to mint session token", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "could not start session")
		return
	}

	if err := h.Sessions.Save(r.Context(), session.Session{
		AuthToken: token,
		UserEmail: res.Email,
		UserName:  res.Name,
	}); err != nil {
		logger.FromCtx(r.Context()).Warn("failed to persist session tuple", zap.Error(err))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// the request context dies with the request; the guard outlives it
	if h.Guard != nil {
		h.Guard.Start(context.Background())
	}

	WriteSuccess(w, http.StatusOK, map[string]string{
		"token": token,
		"email": res.Email,
		"name":  res.Name,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Purge(r.Context())
	if h.Guard != nil {
		h.Guard.Stop()
	}

	http.SetCookie(w, &http.Cookie{
		Name:   "access_token",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	WriteSuccess(w, http.StatusOK, nil)
}

// Touch resets the inactivity clock; the frontend calls it on input events.
func (h *Handler) Touch(w http.ResponseWriter, r *http.Request) {
	if h.Guard != nil {
		h.Guard.Touch()
	}
	WriteSuccess(w, http.StatusOK, nil)
}

// ----------------- Cart -----------------

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"items":       h.Cart.Items(),
		"totalAmount": h.Cart.TotalAmount(),
		"showCart":    h.Cart.Visible(),
	})
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var item cart.LineItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	added, err := h.Cart.Add(r.Context(), item)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteSuccess(w, http.StatusCreated, added)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.Cart.UpdateQuantity(r.Context(), r.PathValue("id"), req.Quantity); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]float64{"totalAmount": h.Cart.TotalAmount()})
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	h.Cart.Remove(r.Context(), r.PathValue("id"))
	WriteSuccess(w, http.StatusOK, map[string]float64{"totalAmount": h.Cart.TotalAmount()})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.Cart.Clear(r.Context())
	WriteSuccess(w, http.StatusOK, nil)
}

// ----------------- Checkout -----------------

func (h *Handler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	email := utils.GetUserEmailFromContext(r.Context())
	if email == "" {
		if sess, ok := h.Sessions.Current(r.Context()); ok {
			email = sess.UserEmail
		}
	}
	if email == "" {
		WriteError(w, http.StatusUnauthorized, "sign in to check out")
		return
	}

	sess, err := h.Checkout.Begin(r.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrCartEmpty):
			WriteError(w, http.StatusBadRequest, "your cart is empty")
		case errors.Is(err, checkout.ErrPaymentInProgress):
			WriteError(w, http.StatusConflict, "a payment is already in progress")
		default:
			WriteError(w, http.StatusBadGateway, "could not start payment")
		}
		return
	}

	WriteSuccess(w, http.StatusOK, sess)
}

func (h *Handler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reference == "" {
		WriteError(w, http.StatusBadRequest, "payment reference is required")
		return
	}

	rec, err := h.Checkout.Complete(r.Context(), req.Reference)
	if err != nil {
		if errors.Is(err, checkout.ErrNoActiveSession) {
			WriteError(w, http.StatusConflict, "no payment in progress")
			return
		}
		WriteError(w, http.StatusBadGateway, "could not confirm payment")
		return
	}

	// forward to the authoritative backend; local record already stands
	if err := h.Backend.CreateOrder(r.Context(), backend.CreateOrderRequest{
		PaymentRef:  rec.PaymentRef,
		Items:       rec.Items,
		TotalAmount: rec.TotalAmount,
	}); err != nil {
		logger.FromCtx(r.Context()).Warn("backend order creation failed", zap.Error(err))
	}

	WriteSuccess(w, http.StatusOK, rec)
}

func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	if err := h.Checkout.Cancel(r.Context()); err != nil {
		WriteError(w, http.StatusConflict, "no payment in progress")
		return
	}
	WriteSuccess(w, http.StatusOK, nil)
}

// ----------------- Orders -----------------

func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, h.Recorder.History(r.Context()))
}

// ----------------- Delivery -----------------

func (h *Handler) SaveDeliveryInfo(w http.ResponseWriter, r *http.Request) {
	var info backend.DeliveryInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.Backend.SaveDeliveryInfo(r.Context(), info); err != nil {
		h.writeBackendError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, nil)
}

func (h *Handler) GetDeliveryInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.Backend.DeliveryInfo(r.Context())
	if err != nil {
		h.writeBackendError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, info)
}

// ----------------- Admin inbox -----------------

func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	fetch := h.Backend.Messages
	if h.Inbox != nil {
		fetch = h.Inbox.Messages
	}

	msgs, err := fetch(r.Context())
	if err != nil {
		h.writeBackendError(w, r, err)
		return
	}
	WriteSuccess(w, http.StatusOK, msgs)
}

// writeBackendError maps backend failures onto the envelope. A credential
// rejection purges the local session: the guard timer and this path
// converge on the same recovery.
func (h *Handler) writeBackendError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, backend.ErrUnauthorized) {
		h.Sessions.Purge(r.Context())
		WriteError(w, http.StatusUnauthorized, "session expired, please sign in again")
		return
	}
	WriteError(w, http.StatusBadGateway, err.Error())
}
