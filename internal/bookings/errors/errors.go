package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrDuplicateReference = errors.New("booking reference already exists for tenant")

	ErrInvalidTenant = errors.New("tenant is required")

	ErrEmptyStatusUpdate = errors.New("status update carries no fields")

	ErrUnknownAction = errors.New("unknown booking status action")
)
