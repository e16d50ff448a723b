package errors

import "errors"

var (
	ErrInvalidWindow = errors.New("timeEnd must be after timeBegin")

	ErrHalfOpenWindow = errors.New("timeBegin and timeEnd must be given together")
)
