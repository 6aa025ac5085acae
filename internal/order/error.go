package order

import "errors"

var (
	ErrMissingPaymentRef = errors.New("payment reference is required")
	ErrNothingToRecord   = errors.New("no items to record")
)
