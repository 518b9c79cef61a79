// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

const Version = "1.0.0"

// Analysis returns the activities of the startup analysis process, in the
// order the process runs them.
func Analysis() *ActivityRegistry {
	return &ActivityRegistry{
		Version: Version,
		Activities: []Activity{
			{
				TaskType:    "validate-startup-profile",
				DisplayName: "Validate Startup Profile",
				Description: "Checks the submitted profile against the field catalog",
				Inputs:      []string{"startupProfile"},
				Outputs:     []string{"profileValid", "startupProfile"},
				ErrorCodes:  []string{"PROFILE_INVALID"},
			},
			{
				TaskType:    "request-prediction",
				DisplayName: "Request Prediction",
				Description: "Calls the prediction service for the success outlook",
				Inputs:      []string{"startupProfile"},
				Outputs:     []string{"prediction", "predictionLabel", "confidence"},
				ErrorCodes:  []string{"PREDICTION_FAILED", "PREDICTION_RESPONSE_MALFORMED"},
				Retryable:   true,
			},
			{
				TaskType:    "compare-peers",
				DisplayName: "Compare Peers",
				Description: "Fetches the peer comparison and, when a peer is named, the side-by-side comparison",
				Inputs:      []string{"startupProfile", "selectedPeer"},
				Outputs:     []string{"peerComparison", "peerSelection"},
				ErrorCodes:  []string{"PEER_COMPARISON_FAILED", "COMPARE_TO_STARTUP_FAILED", "PREDICTION_RESPONSE_MALFORMED"},
				Retryable:   true,
			},
			{
				TaskType:    "compute-health-score",
				DisplayName: "Compute Health Score",
				Description: "Derives the health score, recommendations and next milestone",
				Inputs:      []string{"startupProfile", "peerComparison"},
				Outputs:     []string{"healthScore", "breakdown", "recommendations", "nextMilestone"},
				ErrorCodes:  []string{"PROFILE_INVALID"},
			},
			{
				TaskType:    "record-analysis",
				DisplayName: "Record Analysis",
				Description: "Stores the submission and publishes the analyzed event",
				Inputs:      []string{"startupProfile", "prediction", "peerComparison", "healthScore"},
				Outputs:     []string{"submissionId", "eventMessageId", "recorded", "published"},
				ErrorCodes:  []string{"DATABASE_INSERT_FAILED", "NOTIFICATION_SEND_FAILED"},
				Retryable:   true,
			},
		},
	}
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, reg.Validate()
}

// Find returns the activity for taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Validate rejects blank and duplicate task types.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Activities))
	for i, a := range r.Activities {
		if a.TaskType == "" {
			return fmt.Errorf("activity %d has no taskType", i)
		}
		if seen[a.TaskType] {
			return fmt.Errorf("duplicate taskType %q", a.TaskType)
		}
		seen[a.TaskType] = true
	}
	return nil
}

// Unknown returns the names in taskTypes that no activity declares, sorted.
func (r *ActivityRegistry) Unknown(taskTypes []string) []string {
	var out []string
	for _, t := range taskTypes {
		if _, ok := r.Find(t); !ok {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
