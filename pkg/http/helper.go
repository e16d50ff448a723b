package http

import (
	apperrors "bookly/pkg/errors"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// UserIDHeader carries the id of the authenticated user, set by the gateway in front of
// the service. Requests without it are anonymous.
const UserIDHeader = "X-User-ID"

func UserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserIDHeader))
}

// DecodeJSON reads a JSON body into dst. Unknown fields and trailing data are rejected.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
		}
		return apperrors.InvalidInput("Invalid request body: " + err.Error())
	}
	if dec.More() {
		return apperrors.InvalidInput("Invalid request body: unexpected data after JSON object")
	}
	return nil
}
