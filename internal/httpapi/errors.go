package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "startup-insights/internal/common/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorBody(code, message string) map[string]interface{} {
	return map[string]interface{}{
		"ok":    false,
		"error": map[string]interface{}{"code": code, "message": message},
	}
}

// errorPayload is the error object of a response: a stable code, the text a
// user should see and any offending fields.
func errorPayload(err error) map[string]interface{} {
	stdErr := apperrors.ToStandardError(err)
	payload := map[string]interface{}{
		"code":      string(stdErr.Code),
		"message":   apperrors.UserMessage(err),
		"retryable": stdErr.Retryable,
	}

	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		payload["missingFields"] = vErr.MissingFields
		payload["invalidFields"] = vErr.InvalidFields
	}
	return payload
}

func statusFor(err error) int {
	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusUnprocessableEntity
	}
	var rErr *apperrors.RemoteCallError
	if errors.As(err, &rErr) {
		return http.StatusBadGateway
	}

	switch apperrors.ToStandardError(err).Code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeSchemaViolation:
		return http.StatusBadRequest
	case apperrors.ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeNoActivePrediction:
		return http.StatusConflict
	case apperrors.ErrCodeNotConfigured,
		apperrors.ErrCodeCacheUnavailable,
		apperrors.ErrCodeDatabaseConnectionFailed,
		apperrors.ErrCodeElasticsearchConnectionFailed:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeQueryExecutionFailed,
		apperrors.ErrCodeSearchQueryFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]interface{}{
		"ok":    false,
		"error": errorPayload(err),
	})
}

func errUnavailable(component string) error {
	return apperrors.NewNotConfiguredError(component)
}
