package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")
	ErrMissingProduct  = errors.New("product id is required")
	ErrMissingSize     = errors.New("size selection is required")

	// -- Resource State --
	ErrCartEmpty = errors.New("cart is empty")
)
