package order

import (
	"oxytoxin-be/internal/cart"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Record is the locally synthesized order snapshot written at payment
// success. It is distinct from the backend's authoritative order and is
// never mutated after creation; status changes live server-side.
type Record struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	Status      Status          `json:"status"`
	Items       []cart.LineItem `json:"items"`
	TotalAmount float64         `json:"totalAmount"`
	PaymentRef  string          `json:"paymentRef"`
}
