package errors

import "errors"

var (
	ErrNotFound = errors.New("bookable not found")

	ErrEventNotFound = errors.New("event not found")
)
