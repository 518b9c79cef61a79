package predictionapi

import (
	"encoding/json"
	"strings"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/models"
)

func decodePrediction(body []byte) (*models.PredictionResult, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, &apperrors.RemoteCallError{Call: apperrors.CallPredict, Cause: err}
	}

	practical, err := decodeOutcome(top, "practical_prediction")
	if err != nil {
		return nil, err
	}
	noHardwork, err := decodeOutcome(top, "no_hardwork_adjustment")
	if err != nil {
		return nil, err
	}

	result := &models.PredictionResult{
		PracticalPrediction:  *practical,
		NoHardworkAdjustment: *noHardwork,
	}
	for k, v := range top {
		if k == "practical_prediction" || k == "no_hardwork_adjustment" {
			continue
		}
		if result.Extra == nil {
			result.Extra = make(map[string]json.RawMessage)
		}
		result.Extra[k] = v
	}
	return result, nil
}

// decodeOutcome requires a non-empty label and at least one numeric score.
func decodeOutcome(top map[string]json.RawMessage, key string) (*models.PredictionOutcome, error) {
	raw, ok := top[key]
	if !ok || isNull(raw) {
		return nil, apperrors.NewMalformedResponse(apperrors.CallPredict, key)
	}

	var outcome models.PredictionOutcome
	if err := json.Unmarshal(raw, &outcome); err != nil {
		return nil, apperrors.NewMalformedResponse(apperrors.CallPredict, key)
	}
	if strings.TrimSpace(outcome.Label) == "" {
		return nil, apperrors.NewMalformedResponse(apperrors.CallPredict, key+".label")
	}
	if _, ok := outcome.Score(); !ok {
		return nil, apperrors.NewMalformedResponse(apperrors.CallPredict, key+".confidence")
	}
	return &outcome, nil
}

func decodePeerComparison(body []byte) (*models.PeerComparisonReport, error) {
	if err := requireString(body, apperrors.CallPeerComparison, "Startup_Name"); err != nil {
		return nil, err
	}
	var report models.PeerComparisonReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, &apperrors.RemoteCallError{Call: apperrors.CallPeerComparison, Cause: err}
	}
	report.NormalizeCharts()
	return &report, nil
}

func decodeSelection(body []byte) (*models.PeerSelectionComparison, error) {
	if err := requireString(body, apperrors.CallCompareToStartup, "Selected_Startup"); err != nil {
		return nil, err
	}
	var cmp models.PeerSelectionComparison
	if err := json.Unmarshal(body, &cmp); err != nil {
		return nil, &apperrors.RemoteCallError{Call: apperrors.CallCompareToStartup, Cause: err}
	}
	if cmp.Pros == nil {
		cmp.Pros = []string{}
	}
	if cmp.Cons == nil {
		cmp.Cons = []string{}
	}
	return &cmp, nil
}

func requireString(body []byte, call apperrors.RemoteCall, key string) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return &apperrors.RemoteCallError{Call: call, Cause: err}
	}
	raw, ok := top[key]
	if !ok || isNull(raw) {
		return apperrors.NewMalformedResponse(call, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return apperrors.NewMalformedResponse(call, key)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
