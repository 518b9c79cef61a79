package validateprofile

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, nil, logger.NewTestLogger(t))
}

func createPayload(t *testing.T, mutate func(p map[string]interface{})) *Input {
	p := map[string]interface{}{
		models.FieldOrganizationName:     "Acme Robotics",
		models.FieldIndustries:           "Manufacturing",
		models.FieldHeadquartersLocation: "Karnataka",
		models.FieldEstimatedRevenue:     "$10M to $50M",
		models.FieldFoundedDate:          2015,
		models.FieldInvestmentStage:      "Series A",
	}
	if mutate != nil {
		mutate(p)
	}
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return &Input{StartupProfile: raw}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ValidProfile(t *testing.T) {
	h := createTestHandler(t)

	out, err := h.Execute(context.Background(), createPayload(t, func(p map[string]interface{}) {
		p[models.FieldNumberOfFundingRounds] = 3
	}))
	require.NoError(t, err)

	assert.True(t, out.ProfileValid)
	require.NotNil(t, out.StartupProfile)
	assert.Equal(t, "Acme Robotics", out.StartupProfile.OrganizationName)
	require.NotNil(t, out.StartupProfile.FoundedDate)
	assert.Equal(t, int64(2015), *out.StartupProfile.FoundedDate)
	require.NotNil(t, out.StartupProfile.NumberOfFundingRounds)
	assert.Equal(t, int64(3), *out.StartupProfile.NumberOfFundingRounds)
}

func TestHandler_Execute_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		input      func(t *testing.T) *Input
		wantCode   apperrors.ErrorCode
		wantFields []string
	}{
		{
			name:     "missing profile",
			input:    func(t *testing.T) *Input { return &Input{} },
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:     "null profile",
			input:    func(t *testing.T) *Input { return &Input{StartupProfile: json.RawMessage("null")} },
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name: "missing required field",
			input: func(t *testing.T) *Input {
				return createPayload(t, func(p map[string]interface{}) { delete(p, models.FieldInvestmentStage) })
			},
			wantCode:   apperrors.ErrCodeValidationFailed,
			wantFields: []string{models.FieldInvestmentStage},
		},
		{
			name: "enum outside catalog",
			input: func(t *testing.T) *Input {
				return createPayload(t, func(p map[string]interface{}) { p[models.FieldEstimatedRevenue] = "10M+" })
			},
			wantCode:   apperrors.ErrCodeValidationFailed,
			wantFields: []string{models.FieldEstimatedRevenue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t)

			out, err := h.Execute(context.Background(), tt.input(t))
			require.Error(t, err)
			assert.Nil(t, out)

			stdErr := apperrors.ToStandardError(err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, stdErr.Metadata["fields"])
			}
		})
	}
}

func TestHandler_Execute_ValidationIsNotRetryable(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), createPayload(t, func(p map[string]interface{}) {
		delete(p, models.FieldOrganizationName)
	}))
	require.Error(t, err)

	bpmnErr := apperrors.ConvertToBPMNError(apperrors.ToStandardError(err))
	assert.Equal(t, "PROFILE_INVALID", bpmnErr.Code)
	assert.Zero(t, bpmnErr.Retries)
}
