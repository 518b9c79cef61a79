package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeService struct {
	predictErr error
	compared   []string
}

func (f *fakeService) Predict(ctx context.Context, profile *models.StartupProfile) (*models.PredictionResult, error) {
	if f.predictErr != nil {
		return nil, f.predictErr
	}
	return &models.PredictionResult{
		PracticalPrediction:  models.PredictionOutcome{Label: "Success", Confidence: models.Float64(0.8)},
		NoHardworkAdjustment: models.PredictionOutcome{Label: "Success", Confidence: models.Float64(0.7)},
	}, nil
}

func (f *fakeService) PeerComparison(ctx context.Context, profile *models.StartupProfile) (*models.PeerComparisonReport, error) {
	return &models.PeerComparisonReport{
		StartupName:     profile.OrganizationName,
		SimilarStartups: []string{"Beta Labs"},
	}, nil
}

func (f *fakeService) CompareToStartup(ctx context.Context, profile *models.StartupProfile, selected string) (*models.PeerSelectionComparison, error) {
	f.compared = append(f.compared, selected)
	return &models.PeerSelectionComparison{StartupName: profile.OrganizationName, SelectedStartup: selected}, nil
}

func formValues() map[string]interface{} {
	return map[string]interface{}{
		models.FieldOrganizationName:     "Acme Robotics",
		models.FieldIndustries:           "Manufacturing",
		models.FieldHeadquartersLocation: "Karnataka",
		models.FieldEstimatedRevenue:     "$10M to $50M",
		models.FieldFoundedDate:          json.Number("2015"),
		models.FieldInvestmentStage:      "Series A",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestRunScore(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runScore(&out, formValues()))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Contains(t, got, "healthScore")
	assert.Contains(t, got, "breakdown")

	validation := got["validation"].(map[string]interface{})
	assert.Empty(t, validation["missingFields"])
	assert.Empty(t, validation["invalidFields"])
}

func TestRunScore_IncompleteProfileStillScores(t *testing.T) {
	values := formValues()
	delete(values, models.FieldInvestmentStage)

	var out bytes.Buffer
	require.NoError(t, runScore(&out, values))
	assert.Contains(t, out.String(), models.FieldInvestmentStage)
}

func TestRunAnalyze_Markdown(t *testing.T) {
	svc := &fakeService{}

	var out bytes.Buffer
	err := runAnalyze(context.Background(), &out, svc, formValues(), "Beta Labs", "md", logger.NewTestLogger(t))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "# Acme Robotics")
	assert.Equal(t, []string{"Beta Labs"}, svc.compared)
}

func TestRunAnalyze_PredictFailureRendersReport(t *testing.T) {
	svc := &fakeService{predictErr: &apperrors.RemoteCallError{Call: apperrors.CallPredict, StatusCode: 500, Cause: errors.New("boom")}}

	var out bytes.Buffer
	err := runAnalyze(context.Background(), &out, svc, formValues(), "Beta Labs", "json", logger.NewTestLogger(t))
	require.NoError(t, err)

	var state map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &state))
	assert.Equal(t, "predict_failed", state["phase"])
	assert.Empty(t, svc.compared)
}

func TestRunAnalyze_InvalidProfile(t *testing.T) {
	values := formValues()
	delete(values, models.FieldOrganizationName)

	err := runAnalyze(context.Background(), &bytes.Buffer{}, &fakeService{}, values, "", "md", logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.FieldOrganizationName)
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	err := runAnalyze(context.Background(), &bytes.Buffer{}, &fakeService{}, formValues(), "", "pdf", logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestWriteListings(t *testing.T) {
	var out bytes.Buffer
	err := writeListings(&out, []models.StartupListing{
		models.ListingFromRaw(map[string]interface{}{"Organization_Name": "Beta Labs", "Industries": "Fintech"}),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "LOGO"))
	assert.Contains(t, lines[1], "Beta Labs")
	assert.Contains(t, lines[1], "Fintech")
}

func TestScoreCommand_ReadsStdin(t *testing.T) {
	raw, err := json.Marshal(formValues())
	require.NoError(t, err)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(bytes.NewReader(raw))
	cmd.SetArgs([]string{"score"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "healthScore")
}

func TestWorkflowActivitiesCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"workflow", "activities"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"taskType": "request-prediction"`)
}
