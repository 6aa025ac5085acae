package order

import (
	"context"
	"encoding/json"
	"time"

	"oxytoxin-be/internal/cart"
	"oxytoxin-be/internal/logger"
	"oxytoxin-be/internal/storage"

	"go.uber.org/zap"
)

// HistoryKey is the durable record holding the append-only order history.
const HistoryKey = "orderHistory"

// Recorder materializes one order Record per completed payment and appends
// it to the persisted history. It never clears the cart; the checkout
// caller owns that step so snapshot and mutation stay independently
// testable.
type Recorder struct {
	st  storage.Store
	now func() time.Time
}

func NewRecorder(st storage.Store) *Recorder {
	return &Recorder{st: st, now: time.Now}
}

// Record snapshots items and total into a new order entry. Items are deep
// copied at creation time, so later cart mutations never reach back into
// recorded history.
func (r *Recorder) Record(ctx context.Context, items []cart.LineItem, totalAmount float64, paymentRef string) (*Record, error) {
	if paymentRef == "" {
		return nil, ErrMissingPaymentRef
	}
	if len(items) == 0 {
		return nil, ErrNothingToRecord
	}

	now := r.now()
	snapshot := make([]cart.LineItem, len(items))
	for i, li := range items {
		snapshot[i] = li
		if li.Images != nil {
			snapshot[i].Images = append([]string(nil), li.Images...)
		}
	}

	rec := &Record{
		ID:          now.UnixMilli(),
		Date:        now.Format(time.RFC3339),
		Status:      StatusProcessing,
		Items:       snapshot,
		TotalAmount: totalAmount,
		PaymentRef:  paymentRef,
	}

	history := r.history(ctx)
	history = append(history, *rec)

	data, err := json.Marshal(history)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to encode order history", zap.Error(err))
		return rec, nil
	}
	if err := r.st.Set(ctx, HistoryKey, data); err != nil {
		logger.FromCtx(ctx).Warn("failed to persist order history", zap.Error(err))
	}

	logger.FromCtx(ctx).Info("order recorded",
		zap.Int64("order_id", rec.ID),
		zap.String("payment_ref", paymentRef),
		zap.Float64("total", totalAmount),
	)

	return rec, nil
}

// History returns prior records in append order. A corrupt or missing
// history reads as empty.
func (r *Recorder) History(ctx context.Context) []Record {
	return r.history(ctx)
}

func (r *Recorder) history(ctx context.Context) []Record {
	data, err := r.st.Get(ctx, HistoryKey)
	if err != nil {
		if err != storage.ErrNotFound {
			logger.FromCtx(ctx).Warn("failed to load order history", zap.Error(err))
		}
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		logger.FromCtx(ctx).Warn("corrupt order history, treating as empty", zap.Error(err))
		return nil
	}
	return records
}
