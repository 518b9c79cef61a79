package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// RemoteCall names one of the prediction service endpoints.
type RemoteCall string

const (
	CallPredict          RemoteCall = "predict"
	CallPeerComparison   RemoteCall = "peer_comparison"
	CallCompareToStartup RemoteCall = "compare_to_startup"
	CallListStartups     RemoteCall = "startups"
)

// Display returns the sub-report name shown to users.
func (c RemoteCall) Display() string {
	switch c {
	case CallPredict:
		return "prediction"
	case CallPeerComparison:
		return "peer comparison"
	case CallCompareToStartup:
		return "peer selection comparison"
	case CallListStartups:
		return "startup listing"
	}
	return string(c)
}

// ValidationError is raised locally and never reaches the network.
// MissingFields and InvalidFields are in field-model order.
type ValidationError struct {
	MissingFields []string `json:"missingFields"`
	InvalidFields []string `json:"invalidFields,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.MissingFields, ", "))
	}
	if len(e.InvalidFields) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.InvalidFields, ", "))
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return strings.Join(parts, "; ")
}

// Fields returns missing then invalid field names.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.MissingFields)+len(e.InvalidFields))
	out = append(out, e.MissingFields...)
	return append(out, e.InvalidFields...)
}

// RemoteCallError wraps any transport, status or decoding failure of one call.
type RemoteCallError struct {
	Call       RemoteCall
	StatusCode int
	Cause      error
}

func (e *RemoteCallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s call failed with status %d: %v", e.Call, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s call failed: %v", e.Call, e.Cause)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError reports a 2xx response missing a required key.
type MalformedResponseError struct {
	Call RemoteCall
	Key  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: missing %s", e.Call, e.Key)
}

// NewMalformedResponse returns the malformed error wrapped for display.
func NewMalformedResponse(call RemoteCall, key string) *RemoteCallError {
	return &RemoteCallError{Call: call, Cause: &MalformedResponseError{Call: call, Key: key}}
}

// IsMalformed reports whether err carries a MalformedResponseError.
func IsMalformed(err error) bool {
	var m *MalformedResponseError
	return stderrors.As(err, &m)
}

// UserMessage renders the inline message for err. Validation failures and
// remote failures are worded differently and remote failures name the
// sub-report that failed.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	if stderrors.As(err, &vErr) {
		var parts []string
		if len(vErr.MissingFields) > 0 {
			parts = append(parts, "Please fill in the required fields: "+strings.Join(vErr.MissingFields, ", ")+".")
		}
		if len(vErr.InvalidFields) > 0 {
			parts = append(parts, "Please correct the invalid fields: "+strings.Join(vErr.InvalidFields, ", ")+".")
		}
		return strings.Join(parts, " ")
	}

	var rErr *RemoteCallError
	if stderrors.As(err, &rErr) {
		if IsMalformed(rErr) {
			return fmt.Sprintf("The %s service returned an unexpected response. Please try again.", rErr.Call.Display())
		}
		return fmt.Sprintf("The %s request failed. Please try again.", rErr.Call.Display())
	}

	var sErr *StandardError
	if stderrors.As(err, &sErr) {
		return sErr.Message
	}
	return "Something went wrong. Please try again."
}

// ToStandardError normalizes domain errors into StandardError for job handling.
func ToStandardError(err error) *StandardError {
	var sErr *StandardError
	if stderrors.As(err, &sErr) {
		return sErr
	}

	var vErr *ValidationError
	if stderrors.As(err, &vErr) {
		return NewValidationFailedError(vErr.Fields())
	}

	var mErr *MalformedResponseError
	if stderrors.As(err, &mErr) {
		return newStandard(ErrCodeMalformedResponse, "Prediction service response is malformed",
			fmt.Sprintf("call: %s, key: %s", mErr.Call, mErr.Key), false, err)
	}

	var rErr *RemoteCallError
	if stderrors.As(err, &rErr) {
		code := ErrCodePredictionFailed
		switch rErr.Call {
		case CallPeerComparison:
			code = ErrCodePeerComparisonFailed
		case CallCompareToStartup:
			code = ErrCodeCompareFailed
		case CallListStartups:
			code = ErrCodeListingFailed
		}
		retryable := rErr.StatusCode == 0 || rErr.StatusCode >= 500
		e := newStandard(code, fmt.Sprintf("Prediction service %s call failed", rErr.Call), rErr.Error(), retryable, err)
		e.Metadata = map[string]interface{}{"call": string(rErr.Call), "statusCode": rErr.StatusCode}
		return e
	}

	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}
