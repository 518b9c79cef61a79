package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cp "startup-insights/internal/workers/analysis/compare-peers"
	chs "startup-insights/internal/workers/analysis/compute-health-score"
	ra "startup-insights/internal/workers/analysis/record-analysis"
	rp "startup-insights/internal/workers/analysis/request-prediction"
	vsp "startup-insights/internal/workers/analysis/validate-startup-profile"
)

func TestAnalysis_MatchesWorkers(t *testing.T) {
	reg := Analysis()
	require.NoError(t, reg.Validate())

	var taskTypes []string
	for _, a := range reg.Activities {
		taskTypes = append(taskTypes, a.TaskType)
	}
	assert.Equal(t, []string{vsp.TaskType, rp.TaskType, cp.TaskType, chs.TaskType, ra.TaskType}, taskTypes)
}

func TestRegistry_Find(t *testing.T) {
	reg := Analysis()

	a, ok := reg.Find(rp.TaskType)
	require.True(t, ok)
	assert.True(t, a.Retryable)
	assert.Contains(t, a.ErrorCodes, "PREDICTION_FAILED")

	_, ok = reg.Find("query-elasticsearch")
	assert.False(t, ok)
}

func TestRegistry_Unknown(t *testing.T) {
	reg := Analysis()
	assert.Equal(t, []string{"a-task", "z-task"}, reg.Unknown([]string{"z-task", vsp.TaskType, "a-task"}))
	assert.Empty(t, reg.Unknown(nil))
}

func TestRegistry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		reg     *ActivityRegistry
		wantErr string
	}{
		{name: "empty", reg: &ActivityRegistry{}},
		{
			name:    "blank task type",
			reg:     &ActivityRegistry{Activities: []Activity{{DisplayName: "x"}}},
			wantErr: "no taskType",
		},
		{
			name:    "duplicate",
			reg:     &ActivityRegistry{Activities: []Activity{{TaskType: "a"}, {TaskType: "a"}}},
			wantErr: "duplicate taskType",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"2","activities":[{"taskType":"a"},{"taskType":"a"}]}`), 0o600))

	reg, err := LoadRegistry(path)
	require.Error(t, err)
	assert.Equal(t, "2", reg.Version)

	_, err = LoadRegistry(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
