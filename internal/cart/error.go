package cart

import "errors"

var (
	ErrCartEmpty       = errors.New("cart is empty")
	ErrFailedGetCart   = errors.New("failed to get cart rows")
	ErrFailedClearCart = errors.New("failed to clear cart")
)
