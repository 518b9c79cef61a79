package errors

import (
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeSchemaViolation    ErrorCode = "SCHEMA_VIOLATION"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeNoActivePrediction ErrorCode = "NO_ACTIVE_PREDICTION"

	ErrCodePredictionFailed     ErrorCode = "PREDICTION_FAILED"
	ErrCodePeerComparisonFailed ErrorCode = "PEER_COMPARISON_FAILED"
	ErrCodeCompareFailed        ErrorCode = "COMPARE_TO_STARTUP_FAILED"
	ErrCodeListingFailed        ErrorCode = "LISTING_FAILED"
	ErrCodeMalformedResponse    ErrorCode = "MALFORMED_RESPONSE"
	ErrCodePredictionTimeout    ErrorCode = "PREDICTION_TIMEOUT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeWorkflowUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowTimeout     ErrorCode = "WORKFLOW_ENGINE_TIMEOUT"
	ErrCodeWorkflowRejected    ErrorCode = "WORKFLOW_COMMAND_REJECTED"

	ErrCodeNotConfigured ErrorCode = "NOT_CONFIGURED"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newStandard(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewValidationFailedError(fields []string) *StandardError {
	e := newStandard(ErrCodeValidationFailed, "Startup profile validation failed",
		fmt.Sprintf("fields: %s", strings.Join(fields, ", ")), false, nil)
	e.Metadata = map[string]interface{}{"fields": fields}
	return e
}

func NewSchemaViolationError(details string) *StandardError {
	return newStandard(ErrCodeSchemaViolation, "Payload does not match the startup profile schema", details, false, nil)
}

func NewInvalidInputError(details string) *StandardError {
	return newStandard(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return newStandard(ErrCodeSessionNotFound, "Dashboard session not found", fmt.Sprintf("sessionId: %s", sessionID), false, nil)
}

func NewNoActivePredictionError() *StandardError {
	return newStandard(ErrCodeNoActivePrediction, "Peer selection requires a successful prediction", "", false, nil)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newStandard(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true, err)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newStandard(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true, err)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newStandard(ErrCodeCacheUnavailable, "Cache unavailable", err.Error(), true, err)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newStandard(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true, err)
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return newStandard(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true, err)
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return newStandard(ErrCodeIndexNotFound, "Elasticsearch index not found", fmt.Sprintf("indexName: %s", indexName), false, nil)
}

func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newStandard(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true, err)
}

func NewWorkflowUnavailableError(err error) *StandardError {
	return newStandard(ErrCodeWorkflowUnavailable, "Workflow engine unavailable", err.Error(), true, err)
}

func NewWorkflowTimeoutError(err error) *StandardError {
	return newStandard(ErrCodeWorkflowTimeout, "Workflow engine request timed out", err.Error(), true, err)
}

func NewWorkflowRejectedError(err error) *StandardError {
	return newStandard(ErrCodeWorkflowRejected, "Workflow engine rejected the command", err.Error(), false, err)
}

func NewNotConfiguredError(component string) *StandardError {
	return newStandard(ErrCodeNotConfigured, "Feature is not configured", fmt.Sprintf("component: %s", component), false, nil)
}

func NewInternalError(err error) *StandardError {
	return newStandard(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:              "PROFILE_INVALID",
	ErrCodeSchemaViolation:               "PROFILE_INVALID",
	ErrCodeInvalidInput:                  "PROFILE_INVALID",
	ErrCodePredictionFailed:              "PREDICTION_FAILED",
	ErrCodePredictionTimeout:             "PREDICTION_FAILED",
	ErrCodePeerComparisonFailed:          "PEER_COMPARISON_FAILED",
	ErrCodeCompareFailed:                 "COMPARE_TO_STARTUP_FAILED",
	ErrCodeMalformedResponse:             "PREDICTION_RESPONSE_MALFORMED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeDatabaseInsertFailed:          "DATABASE_INSERT_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePredictionFailed,
		ErrCodePeerComparisonFailed,
		ErrCodeCompareFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodePredictionTimeout:
		return 2

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PREDICTION") || strings.Contains(codeStr, "COMPARE") ||
		strings.Contains(codeStr, "COMPARISON") || strings.Contains(codeStr, "MALFORMED") ||
		strings.Contains(codeStr, "LISTING"):
		return "REMOTE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "SCHEMA"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
