package http

import (
	apperrors "bookly/pkg/errors"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantReason string
	}{
		{
			name:       "rejected",
			err:        apperrors.Rejected(apperrors.ReasonCapacityExceeded, "full"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperrors.CodeValidation,
			wantReason: string(apperrors.ReasonCapacityExceeded),
		},
		{
			name:       "not found",
			err:        apperrors.NotFoundWithID("Bookable", "b1"),
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.CodeNotFound,
		},
		{
			name:       "conflict",
			err:        apperrors.Conflict("locked"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeConflict,
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteError(rec, tt.err))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, body.Details["reason"])
			}
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apperrors.Internal("Failed to store booking", errors.New("mongo: secret host")).
		WithDetails(map[string]any{"host": "db-1"})

	require.NoError(t, WriteError(rec, err))

	assert.NotContains(t, rec.Body.String(), "secret")
	assert.NotContains(t, rec.Body.String(), "db-1")
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Amount int `json:"amount"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":2}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, 2, dst.Amount)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":2,"extra":true}`))
	assert.True(t, apperrors.HasCode(DecodeJSON(r, &dst), apperrors.CodeInvalidInput))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":2}{}`))
	assert.True(t, apperrors.HasCode(DecodeJSON(r, &dst), apperrors.CodeInvalidInput))
}

func TestUserID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, UserID(r))

	r.Header.Set(UserIDHeader, "  alice ")
	assert.Equal(t, "alice", UserID(r))
}
