package payment

import "errors"

var (
	ErrMalformedCallback = errors.New("malformed gateway callback")
	ErrInvalidSignature  = errors.New("invalid gateway signature")
)
