package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableErrorCode(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{code: ErrCodePredictionFailed, want: true},
		{code: ErrCodePredictionTimeout, want: true},
		{code: ErrCodeNotificationSendFailed, want: true},
		{code: ErrCodeValidationFailed, want: false},
		{code: ErrCodeInvalidInput, want: false},
		{code: ErrCodeNoActivePrediction, want: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantRetries int
	}{
		{
			name:        "server error is retried",
			err:         &RemoteCallError{Call: CallPredict, StatusCode: 503, Cause: stderrors.New("unavailable")},
			wantCode:    "PREDICTION_FAILED",
			wantRetries: 3,
		},
		{
			name:        "client error is thrown",
			err:         &RemoteCallError{Call: CallPredict, StatusCode: 400, Cause: stderrors.New("bad request")},
			wantCode:    "PREDICTION_FAILED",
			wantRetries: 0,
		},
		{
			name:        "invalid profile is thrown",
			err:         NewValidationFailedError([]string{"Industries"}),
			wantCode:    "PROFILE_INVALID",
			wantRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(ToStandardError(tt.err))
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.wantRetries, bpmnErr.Retries)
		})
	}
}
