package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperrors.NewNotFoundError("order not found"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", apperrors.NewConflictError("bad transition"), http.StatusConflict, "CONFLICT"},
		{"deadlock", apperrors.NewDeadlockError("max retries exceeded"), http.StatusConflict, "DEADLOCK"},
		{"forbidden", apperrors.NewForbiddenError("nope"), http.StatusForbidden, "FORBIDDEN"},
		{"unauthorized", apperrors.NewUnauthorizedError("login"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"rate limited", apperrors.NewRateLimitError("slow down"), http.StatusTooManyRequests, "RATE_LIMITED"},
		{"wrapped not found", fmt.Errorf("x: %w", apperrors.NewNotFoundError("gone")), http.StatusNotFound, "NOT_FOUND"},
		{"unexpected", errors.New("db exploded"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			WriteError(rec, req, zap.NewNop(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.status, body.Status)
			assert.NotEmpty(t, body.TraceID)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, body.Message, "db exploded")
			}
		})
	}
}

func TestWriteError_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	WriteError(rec, req, zap.NewNop(), apperrors.NewValidationError("validation failed",
		apperrors.ValidationDetail{Field: "items", Message: "items must not be empty"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ValidationErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	want := ValidationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: "validation failed",
		Details: []apperrors.ValidationDetail{{Field: "items", Message: "items must not be empty"}},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("validation body mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteError_Stock(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	WriteError(rec, req, zap.NewNop(), apperrors.NewStockError(
		apperrors.StockFailure{ProductID: "p1", Requested: 3, Available: 1, Reason: apperrors.ReasonInsufficientAvailable},
	))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Code    string            `json:"code"`
		Details StockErrorDetails `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	require.Len(t, body.Details.Failures, 1)
	assert.Equal(t, apperrors.ReasonInsufficientAvailable, body.Details.Failures[0].Reason)
}

func TestTrace(t *testing.T) {
	var seen string
	h := Trace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TraceID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(TraceHeader))

	const incoming = "0b1f6c3e-8a43-4d5e-9c55-0f6d3b2a1e90"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, incoming)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, incoming, seen)
}
