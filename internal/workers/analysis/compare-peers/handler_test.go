package comparepeers

import (
	"context"
	"errors"
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

type fakeComparer struct {
	report     *models.PeerComparisonReport
	reportErr  error
	selection  *models.PeerSelectionComparison
	compareErr error
	selected   []string
}

func (f *fakeComparer) PeerComparison(ctx context.Context, profile *models.StartupProfile) (*models.PeerComparisonReport, error) {
	return f.report, f.reportErr
}

func (f *fakeComparer) CompareToStartup(ctx context.Context, profile *models.StartupProfile, selected string) (*models.PeerSelectionComparison, error) {
	f.selected = append(f.selected, selected)
	return f.selection, f.compareErr
}

func createTestHandler(t *testing.T, c Comparer) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, c, logger.NewTestLogger(t))
}

func createReport() *models.PeerComparisonReport {
	return &models.PeerComparisonReport{
		StartupName:     "Acme Robotics",
		SimilarStartups: []string{"Beta Labs", "Gamma AI"},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ReportOnly(t *testing.T) {
	fake := &fakeComparer{report: createReport()}
	h := createTestHandler(t, fake)

	out, err := h.Execute(context.Background(), &Input{
		StartupProfile: &models.StartupProfile{OrganizationName: "Acme Robotics"},
		SelectedPeer:   "   ",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Beta Labs", "Gamma AI"}, out.PeerComparison.SimilarStartups)
	assert.Nil(t, out.PeerSelection)
	assert.Empty(t, fake.selected)
}

func TestHandler_Execute_WithSelectedPeer(t *testing.T) {
	selection := &models.PeerSelectionComparison{StartupName: "Acme Robotics"}
	fake := &fakeComparer{report: createReport(), selection: selection}
	h := createTestHandler(t, fake)

	out, err := h.Execute(context.Background(), &Input{
		StartupProfile: &models.StartupProfile{OrganizationName: "Acme Robotics"},
		SelectedPeer:   " Beta Labs ",
	})
	require.NoError(t, err)

	assert.Same(t, selection, out.PeerSelection)
	assert.Equal(t, []string{"Beta Labs"}, fake.selected)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fake     *fakeComparer
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "missing profile",
			fake:     &fakeComparer{},
			input:    &Input{},
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name: "peer report fails",
			fake: &fakeComparer{reportErr: &apperrors.RemoteCallError{
				Call: apperrors.CallPeerComparison, StatusCode: 503, Cause: errors.New("unavailable"),
			}},
			input:    &Input{StartupProfile: &models.StartupProfile{}},
			wantCode: apperrors.ErrCodePeerComparisonFailed,
		},
		{
			name: "selected comparison fails",
			fake: &fakeComparer{report: createReport(), compareErr: &apperrors.RemoteCallError{
				Call: apperrors.CallCompareToStartup, StatusCode: 404, Cause: errors.New("unknown startup"),
			}},
			input:    &Input{StartupProfile: &models.StartupProfile{}, SelectedPeer: "Nobody"},
			wantCode: apperrors.ErrCodeCompareFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, tt.fake)

			out, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.wantCode, apperrors.ToStandardError(err).Code)
		})
	}
}
