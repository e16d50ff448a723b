package errors

import "errors"

var ErrNotFound = errors.New("tenant not found")
