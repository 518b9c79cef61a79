package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"startup-insights/internal/common/logger"
	"startup-insights/internal/coordinator"
	"startup-insights/internal/fieldmodel"
	"startup-insights/internal/investor"
	"startup-insights/internal/predictionapi"
	"startup-insights/internal/report"
	"startup-insights/internal/storage"
	"startup-insights/internal/theme"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const predictBody = `{
	"practical_prediction": {"label": "Active", "confidence": 0.82},
	"no_hardwork_adjustment": {"label": "Closed", "probability": 0.41}
}`

const peerBody = `{
	"Startup_Name": "Acme Robotics",
	"Similar_Startups": ["Beta Labs", "Gamma Works"],
	"Pros": ["Higher monthly visits"],
	"Cons": ["Fewer patents"],
	"Raw_Comparison": [],
	"bar_chart_data": [{"feature": "Monthly_visit", "z_score": 0.8}],
	"radar_chart_data": []
}`

const listingBody = `[
	{"Organization_Name": "Beta Labs", "Industries": "Banking", "Headquarters_Location": "Goa", "Investment_Stage": "Seed", "prediction": "Active"},
	{"Organization_Name": "Gamma Works", "Industries": "Manufacturing", "Headquarters_Location": "Karnataka", "prediction": "Closed"}
]`

// fakePredictionService answers like the remote prediction API.
type fakePredictionService struct {
	predictStatus int32
	calls         int32
}

func (f *fakePredictionService) handler(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.calls, 1)
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/predict":
		if status := atomic.LoadInt32(&f.predictStatus); status != 0 {
			w.WriteHeader(int(status))
			_, _ = io.WriteString(w, `{"detail": "model unavailable"}`)
			return
		}
		_, _ = io.WriteString(w, predictBody)
	case "/peer_comparison":
		_, _ = io.WriteString(w, peerBody)
	case "/compare_to_startup":
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		_, _ = io.WriteString(w, `{"Startup_Name": "Acme Robotics", "Selected_Startup": "`+req["selected_startup_name"].(string)+`", "Pros": ["More funding"], "Cons": []}`)
	case "/startups":
		_, _ = io.WriteString(w, listingBody)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type fakeHistory struct {
	subs   []storage.Submission
	labels []string
	limit  int
}

func (f *fakeHistory) Recent(_ context.Context, limit int, labels ...string) ([]storage.Submission, error) {
	f.limit = limit
	f.labels = labels
	return f.subs, nil
}

type testEnv struct {
	server  *Server
	http    *httptest.Server
	remote  *fakePredictionService
	history *fakeHistory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewTestLogger(t)

	remote := &fakePredictionService{}
	remoteServer := httptest.NewServer(http.HandlerFunc(remote.handler))
	t.Cleanup(remoteServer.Close)

	client := predictionapi.NewClient(predictionapi.Config{BaseURL: remoteServer.URL, Timeout: 5 * time.Second}, nil, log)
	model := fieldmodel.Default()
	sessions := NewSessionStore(model, time.Hour, func(view *report.ViewModel) *coordinator.Coordinator {
		return coordinator.New(client, view, log)
	}, log)

	history := &fakeHistory{subs: []storage.Submission{{ID: "id-1", OrganizationName: "Beta Labs", PredictionLabel: "Active"}}}
	server := NewServer(Deps{
		Sessions:    sessions,
		Model:       model,
		Investor:    investor.NewService(client, log),
		Submissions: history,
		Theme:       theme.NewPreference(nil, "light", log),
		Checks: map[string]HealthCheck{
			"prediction_api": func(context.Context) error { return nil },
		},
		Logger:      log,
		CallTimeout: 5 * time.Second,
	})
	httpServer := httptest.NewServer(server)
	t.Cleanup(httpServer.Close)

	return &testEnv{server: server, http: httpServer, remote: remote, history: history}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.http.URL+path, reader)
	require.NoError(t, err)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	if strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else {
		out = map[string]interface{}{"raw": string(raw)}
	}
	return res, out
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	res, body := e.do(t, http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, res.StatusCode)
	return body["sessionId"].(string)
}

const validFields = `{
	"Organization_Name": "Acme Robotics",
	"Industries": {"value": "Manufacturing", "label": "Manufacturing"},
	"Headquarters_Location": "Karnataka",
	"Estimated_Revenue": "$10M to $50M",
	"Founded_Date": "2015",
	"Investment_Stage": "Series A"
}`

func path(m map[string]interface{}, keys ...string) interface{} {
	var cur interface{} = m
	for _, k := range keys {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = obj[k]
	}
	return cur
}

// ==========================
// Session Flow Tests
// ==========================

func TestServer_SubmitFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	res, body := env.do(t, http.MethodPut, "/v1/sessions/"+id+"/fields", validFields)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, path(body, "validation", "missingFields"))
	assert.Equal(t, "idle", path(body, "view", "phase"))
	assert.NotZero(t, path(body, "view", "healthScore"))

	res, body = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/submit?wait=true", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "ready", path(body, "view", "phase"))
	assert.Equal(t, "Active", path(body, "view", "prediction", "data", "practical_prediction", "label"))
	assert.Equal(t, "success", path(body, "view", "peerComparison", "status"))

	res, body = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/select-peer?wait=true", `{"name": "Beta Labs"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ready", path(body, "view", "compare"))
	assert.Equal(t, "Beta Labs", path(body, "view", "peerSelection", "selectedPeer"))

	res, body = env.do(t, http.MethodGet, "/v1/sessions/"+id+"/report.md", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body["raw"], "# Acme Robotics")
	assert.Contains(t, body["raw"], "## Selected Peer: Beta Labs")

	res, body = env.do(t, http.MethodGet, "/v1/sessions/"+id+"/report.html", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body["raw"], "<h1")
}

func TestServer_SubmitInvalidIssuesNoCalls(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	env.do(t, http.MethodPut, "/v1/sessions/"+id+"/fields", `{"Organization_Name": "Acme", "Founded_Date": "abc"}`)

	res, body := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/submit", "")
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", path(body, "error", "code"))
	assert.Contains(t, path(body, "error", "missingFields"), "Industries")
	assert.Contains(t, path(body, "error", "invalidFields"), "Founded_Date")
	assert.Equal(t, "invalid", path(body, "view", "phase"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&env.remote.calls))
}

func TestServer_SubmitAsync(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	env.do(t, http.MethodPut, "/v1/sessions/"+id+"/fields", validFields)

	res, body := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/submit", "")
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, float64(1), body["cycle"])

	env.server.Wait()
	_, view := env.do(t, http.MethodGet, "/v1/sessions/"+id+"/view", "")
	assert.Equal(t, "ready", view["phase"])

	// The acknowledgement of a resubmit already reflects the new cycle.
	res, body = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/submit", "")
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, float64(2), body["cycle"])
	assert.Equal(t, float64(2), path(body, "view", "cycle"))
	env.server.Wait()
}

func TestServer_PredictFailure(t *testing.T) {
	env := newTestEnv(t)
	atomic.StoreInt32(&env.remote.predictStatus, http.StatusServiceUnavailable)
	id := env.createSession(t)
	env.do(t, http.MethodPut, "/v1/sessions/"+id+"/fields", validFields)

	res, body := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/submit?wait=true", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "PREDICTION_FAILED", path(body, "error", "code"))
	assert.Equal(t, "predict_failed", path(body, "view", "phase"))
	assert.Equal(t, "idle", path(body, "view", "peerComparison", "status"))
}

func TestServer_SelectPeerGuards(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "empty name", body: `{"name": "  "}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_INPUT"},
		{name: "missing body", body: "", wantStatus: http.StatusBadRequest, wantCode: "INVALID_INPUT"},
		{name: "no prediction yet", body: `{"name": "Beta Labs"}`, wantStatus: http.StatusConflict, wantCode: "NO_ACTIVE_PREDICTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/select-peer", tt.body)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantCode, path(body, "error", "code"))
		})
	}
}

func TestServer_UnknownSession(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.do(t, http.MethodGet, "/v1/sessions/nope/view", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "SESSION_NOT_FOUND", path(body, "error", "code"))

	res, _ = env.do(t, http.MethodDelete, "/v1/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestServer_ResetFields(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	env.do(t, http.MethodPut, "/v1/sessions/"+id+"/fields", validFields)

	res, body := env.do(t, http.MethodDelete, "/v1/sessions/"+id+"/fields", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Nil(t, path(body, "view", "nextMilestone"))
}

// ==========================
// Listing, Theme and Health Tests
// ==========================

func TestServer_FieldModel(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.do(t, http.MethodGet, "/v1/fields", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	fields := body["fields"].([]interface{})
	assert.Len(t, fields, len(fieldmodel.Default().Fields()))

	res, body = env.do(t, http.MethodGet, "/v1/fields/schema", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body["required"], "Organization_Name")
}

func TestServer_Startups(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.do(t, http.MethodGet, "/v1/startups", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, float64(2), body["count"])

	res, body = env.do(t, http.MethodGet, "/v1/startups/search?industry=banking", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, float64(1), body["total"])
}

func TestServer_Submissions(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.do(t, http.MethodGet, "/v1/submissions?limit=5&label=Active", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body["submissions"], 1)
	assert.Equal(t, 5, env.history.limit)
	assert.Equal(t, []string{"Active"}, env.history.labels)
}

func TestServer_Theme(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.do(t, http.MethodGet, "/v1/theme", "")
	assert.Equal(t, "light", body["theme"])

	res, body := env.do(t, http.MethodPut, "/v1/theme", `{"theme": "dark"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "dark", body["theme"])

	res, _ = env.do(t, http.MethodPut, "/v1/theme", `{"theme": "neon"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	env.server.deps.Checks["redis"] = func(context.Context) error { return errors.New("connection refused") }
	res, body = env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, "connection refused", path(body, "checks", "redis"))
}

func TestServer_NotConfigured(t *testing.T) {
	server := NewServer(Deps{
		Sessions: NewSessionStore(nil, time.Hour, nil, logger.NewNoOpLogger()),
		Theme:    theme.NewPreference(nil, "light", logger.NewNoOpLogger()),
		Logger:   logger.NewNoOpLogger(),
	})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/startups", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_CONFIGURED")
}
