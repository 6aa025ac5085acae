package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"oxytoxin-be/internal/logger"
	"oxytoxin-be/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StorageKey is the durable record the cart is mirrored to on every mutation.
const StorageKey = "cartItems"

// Store holds the live cart for one shopping session and writes through to
// durable storage on every mutation. The in-memory state is authoritative:
// persistence failures are logged and never surfaced.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	visible bool
	st      storage.Store
}

// NewStore loads any persisted cart best-effort. A missing or corrupt
// record yields an empty cart, never an error.
func NewStore(ctx context.Context, st storage.Store) *Store {
	s := &Store{st: st}

	data, err := st.Get(ctx, StorageKey)
	if err != nil {
		if err != storage.ErrNotFound {
			logger.FromCtx(ctx).Warn("failed to load persisted cart, starting empty", zap.Error(err))
		}
		return s
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.FromCtx(ctx).Warn("corrupt persisted cart, starting empty", zap.Error(err))
		return s
	}

	s.items = items
	return s
}

// Add appends item under a freshly minted CartItemID and persists.
// Two identical adds in the same millisecond still get distinct ids.
func (s *Store) Add(ctx context.Context, item LineItem) (LineItem, error) {
	if item.ProductID == "" {
		return LineItem{}, ErrMissingProduct
	}
	if item.Size == "" {
		return LineItem{}, ErrMissingSize
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	item.CartItemID = mintCartItemID(item)

	s.mu.Lock()
	s.items = append(s.items, item.clone())
	s.mu.Unlock()

	s.persist(ctx)
	return item, nil
}

// Remove filters by CartItemID. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, cartItemID string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, li := range s.items {
		if li.CartItemID != cartItemID {
			kept = append(kept, li)
		}
	}
	s.items = kept
	s.mu.Unlock()

	s.persist(ctx)
}

// UpdateQuantity sets the quantity for one line. Last call wins.
func (s *Store) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].CartItemID == cartItemID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// Clear empties the cart and removes the persisted record entirely, so a
// reload never sees stale non-empty data.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	if err := s.st.Remove(ctx, StorageKey); err != nil {
		logger.FromCtx(ctx).Warn("failed to clear persisted cart", zap.Error(err))
	}
}

// Items returns a snapshot copy in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, 0, len(s.items))
	for _, li := range s.items {
		out = append(out, li.clone())
	}
	return out
}

// TotalAmount is recomputed from the current line items on every call,
// never cached, so it cannot drift from the sum.
func (s *Store) TotalAmount() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, li := range s.items {
		total += li.Price * float64(li.Quantity)
	}
	return total
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) SetVisible(v bool) {
	s.mu.Lock()
	s.visible = v
	s.mu.Unlock()
}

func (s *Store) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Store) persist(ctx context.Context) {
	s.mu.Lock()
	data, err := json.Marshal(s.items)
	s.mu.Unlock()
	if err != nil {
		logger.FromCtx(ctx).Error("failed to encode cart for persistence", zap.Error(err))
		return
	}

	if err := s.st.Set(ctx, StorageKey, data); err != nil {
		logger.FromCtx(ctx).Warn("cart write-through failed, in-memory state kept", zap.Error(err))
	}
}

func mintCartItemID(item LineItem) string {
	base := fmt.Sprintf("%s-%s", item.ProductID, item.Size)
	if item.Color != "" {
		base += "-" + item.Color
	}
	suffix := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("%s-%d-%s", base, time.Now().UnixMilli(), suffix)
}
