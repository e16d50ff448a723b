package errors

import "errors"

var (
	ErrNotFound = errors.New("coupon not found")

	// ErrUsageExhausted is returned when the conditional usage increment matched no coupon.
	ErrUsageExhausted = errors.New("coupon usage limit reached")
)
