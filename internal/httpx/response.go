package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
)

func init() {
	// Money is rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

type StockErrorDetails struct {
	Failures []apperrors.StockFailure `json:"failures"`
}

func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func WriteValidationError(w http.ResponseWriter, logger *zap.Logger, message string, details ...apperrors.ValidationDetail) {
	if details == nil {
		details = []apperrors.ValidationDetail{}
	}
	WriteJSON(w, logger, http.StatusBadRequest, ValidationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

// WriteError maps an application error to its HTTP status and body.
// Unexpected errors are logged and reported without internals.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	traceID := TraceID(r.Context())

	if ve, ok := apperrors.IsValidationError(err); ok {
		WriteValidationError(w, logger, ve.Message, ve.Details...)
		return
	}

	status, code, message, details := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	}

	WriteJSON(w, logger, status, ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func classify(err error) (int, string, string, any) {
	if se, ok := apperrors.IsStockError(err); ok {
		return http.StatusBadRequest, "INSUFFICIENT_STOCK", se.Error(), StockErrorDetails{Failures: se.Failures}
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return http.StatusNotFound, "NOT_FOUND", err.Error(), nil
	}
	if _, ok := apperrors.IsDeadlockError(err); ok {
		return http.StatusConflict, "DEADLOCK", err.Error(), nil
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		return http.StatusConflict, "CONFLICT", err.Error(), nil
	}
	if _, ok := apperrors.IsForbiddenError(err); ok {
		return http.StatusForbidden, "FORBIDDEN", err.Error(), nil
	}
	if _, ok := apperrors.IsUnauthorizedError(err); ok {
		return http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil
	}
	if _, ok := apperrors.IsRateLimitError(err); ok {
		return http.StatusTooManyRequests, "RATE_LIMITED", err.Error(), nil
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil
}
