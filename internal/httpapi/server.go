// Package httpapi exposes dashboard sessions, the investor listing and the
// theme preference over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/coordinator"
	"startup-insights/internal/fieldmodel"
	"startup-insights/internal/formstate"
	"startup-insights/internal/investor"
	"startup-insights/internal/models"
	"startup-insights/internal/report"
	"startup-insights/internal/storage"
	"startup-insights/internal/theme"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// SubmissionHistory lists stored submissions.
type SubmissionHistory interface {
	Recent(ctx context.Context, limit int, labels ...string) ([]storage.Submission, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Sessions    *SessionStore
	Model       *fieldmodel.Model
	Investor    *investor.Service
	Submissions SubmissionHistory
	Theme       *theme.Preference
	Limiter     *RateLimiter
	Checks      map[string]HealthCheck
	Logger      logger.Logger
	// CallTimeout bounds a background submission or peer selection.
	CallTimeout time.Duration
}

type Server struct {
	deps    Deps
	logger  logger.Logger
	handler http.Handler
	wg      sync.WaitGroup
}

func NewServer(deps Deps) *Server {
	if deps.Model == nil {
		deps.Model = fieldmodel.Default()
	}
	if deps.CallTimeout <= 0 {
		deps.CallTimeout = 60 * time.Second
	}
	s := &Server{deps: deps, logger: logger.Component(deps.Logger, "httpapi")}

	api := http.NewServeMux()
	api.HandleFunc("GET /v1/fields", s.handleFields)
	api.HandleFunc("GET /v1/fields/schema", s.handleFieldSchema)
	api.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	api.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	api.HandleFunc("PUT /v1/sessions/{id}/fields", s.handleSetFields)
	api.HandleFunc("DELETE /v1/sessions/{id}/fields", s.handleResetFields)
	api.HandleFunc("POST /v1/sessions/{id}/submit", s.handleSubmit)
	api.HandleFunc("POST /v1/sessions/{id}/select-peer", s.handleSelectPeer)
	api.HandleFunc("GET /v1/sessions/{id}/view", s.handleView)
	api.HandleFunc("GET /v1/sessions/{id}/report.md", s.handleReportMarkdown)
	api.HandleFunc("GET /v1/sessions/{id}/report.html", s.handleReportHTML)
	api.HandleFunc("GET /v1/startups", s.handleStartups)
	api.HandleFunc("GET /v1/startups/search", s.handleSearchStartups)
	api.HandleFunc("GET /v1/submissions", s.handleSubmissions)
	api.HandleFunc("GET /v1/theme", s.handleGetTheme)
	api.HandleFunc("PUT /v1/theme", s.handleSetTheme)

	var apiHandler http.Handler = api
	if deps.Limiter != nil {
		apiHandler = deps.Limiter.Middleware(api)
	}

	root := http.NewServeMux()
	root.Handle("/v1/", apiHandler)
	root.HandleFunc("GET /health", s.handleHealth)
	root.Handle("GET /metrics", promhttp.Handler())
	s.handler = root
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Wait blocks until background submissions and selections have settled.
func (s *Server) Wait() {
	s.wg.Wait()
}

// ==========================
// Field model
// ==========================

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"fields": s.deps.Model.Fields()})
}

func (s *Server) handleFieldSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Model.JSONSchema())
}

// ==========================
// Sessions
// ==========================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.deps.Sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"sessionId": sess.ID,
		"view":      sess.View().Snapshot(),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.deps.Sessions.Delete(id) {
		writeError(w, apperrors.NewSessionNotFoundError(id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.deps.Sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

// handleSetFields applies raw field values and refreshes the derived metrics
// from the live form. It never submits.
func (s *Server) handleSetFields(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var values map[string]interface{}
	if err := decodeBody(r, &values); err != nil {
		writeError(w, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	var result formstate.ValidationResult
	sess.WithForm(func(form *formstate.FormState) {
		form.SetFields(values)
		result = form.Validate()
		sess.View().RecomputeDerived(form.Snapshot())
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"validation": result,
		"view":       sess.View().Snapshot(),
	})
}

func (s *Server) handleResetFields(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.WithForm(func(form *formstate.FormState) {
		form.Reset()
		sess.View().RecomputeDerived(form.Snapshot())
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"view": sess.View().Snapshot()})
}

// handleSubmit validates synchronously. A valid form starts a cycle in the
// background and answers 202; ?wait=true answers once the cycle settles.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var (
		profile  *models.StartupProfile
		validErr error
	)
	sess.WithForm(func(form *formstate.FormState) {
		profile, validErr = form.ToWireFormat()
		if validErr != nil {
			// Records the failure on the report and invalidates any cycle in flight.
			_ = sess.Coordinator().SubmitForm(r.Context(), form)
		}
	})
	if validErr != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"ok":    false,
			"error": errorPayload(validErr),
			"view":  sess.View().Snapshot(),
		})
		return
	}

	coord := sess.Coordinator()
	token, err := coord.Begin(profile)
	if err != nil {
		writeError(w, err)
		return
	}
	run := func(ctx context.Context) error {
		return coord.Run(ctx, token)
	}
	s.dispatch(w, r, sess, "submit", map[string]interface{}{"cycle": token}, run)
}

type selectPeerRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSelectPeer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req selectPeerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, apperrors.NewInvalidInputError(err.Error()))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, apperrors.NewInvalidInputError("peer name is required"))
		return
	}
	coord := sess.Coordinator()
	seq, err := coord.BeginCompare(name)
	if err != nil {
		writeError(w, err)
		return
	}
	run := func(ctx context.Context) error {
		return coord.RunCompare(ctx, seq)
	}
	s.dispatch(w, r, sess, "select_peer", map[string]interface{}{"compareSeq": seq}, run)
}

// dispatch runs the remote part of an operation that has already started,
// either inline (?wait=true) or in the background with its own deadline so
// the request returning does not cancel the remote call. The ack fields
// identify the started operation in the response.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, sess *Session, op string, ack map[string]interface{}, run func(ctx context.Context) error) {
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		ctx, cancel := context.WithTimeout(r.Context(), s.deps.CallTimeout)
		defer cancel()

		err := run(ctx)
		status := http.StatusOK
		payload := map[string]interface{}{"ok": err == nil, "view": sess.View().Snapshot()}
		for k, v := range ack {
			payload[k] = v
		}
		switch {
		case errors.Is(err, coordinator.ErrSuperseded):
			status = http.StatusConflict
			payload["error"] = map[string]interface{}{"code": "SUPERSEDED", "message": err.Error()}
		case err != nil:
			payload["error"] = errorPayload(err)
		}
		writeJSON(w, status, payload)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.deps.CallTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		if err := run(ctx); err != nil && !errors.Is(err, coordinator.ErrSuperseded) {
			s.logger.Debug("background operation settled with error", map[string]interface{}{
				"sessionId": sess.ID,
				"operation": op,
				"error":     err.Error(),
			})
		}
	}()

	payload := map[string]interface{}{"ok": true, "view": sess.View().Snapshot()}
	for k, v := range ack {
		payload[k] = v
	}
	writeJSON(w, http.StatusAccepted, payload)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View().Snapshot())
}

func (s *Server) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, report.RenderMarkdown(sess.View().Snapshot()))
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	page, err := report.RenderHTML(sess.View().Snapshot())
	if err != nil {
		writeError(w, apperrors.NewInternalError(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, page)
}

// ==========================
// Investor listing
// ==========================

func (s *Server) handleStartups(w http.ResponseWriter, r *http.Request) {
	if s.deps.Investor == nil {
		writeError(w, errUnavailable("investor listing"))
		return
	}

	list := s.deps.Investor.List
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		list = s.deps.Investor.Refresh
	}
	listings, err := list(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(listings),
		"startups": listings,
	})
}

func (s *Server) handleSearchStartups(w http.ResponseWriter, r *http.Request) {
	if s.deps.Investor == nil {
		writeError(w, errUnavailable("investor listing"))
		return
	}

	q := r.URL.Query()
	result, err := s.deps.Investor.Search(r.Context(), investor.Query{
		Text:            q.Get("text"),
		Industry:        q.Get("industry"),
		Location:        q.Get("location"),
		InvestmentStage: q.Get("stage"),
		Prediction:      q.Get("prediction"),
		From:            parseInt(q.Get("from"), 0),
		Size:            parseInt(q.Get("size"), 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	if s.deps.Submissions == nil {
		writeError(w, errUnavailable("submission history"))
		return
	}

	q := r.URL.Query()
	var labels []string
	for _, raw := range q["label"] {
		if v := strings.TrimSpace(raw); v != "" {
			labels = append(labels, v)
		}
	}
	subs, err := s.deps.Submissions.Recent(r.Context(), parseInt(q.Get("limit"), 20), labels...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs})
}

// ==========================
// Theme
// ==========================

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"theme": s.deps.Theme.Get()})
}

type themeRequest struct {
	Theme string `json:"theme"`
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	t, err := s.deps.Theme.Set(r.Context(), req.Theme)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) && stdErr.Code == apperrors.ErrCodeCacheUnavailable {
			// Applied in memory; only persistence failed.
			s.logger.Warn("theme not persisted", map[string]interface{}{"error": err.Error()})
			writeJSON(w, http.StatusOK, map[string]interface{}{"theme": t, "persisted": false})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"theme": t, "persisted": true})
}

// ==========================
// Health
// ==========================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.deps.Checks))
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	writeJSON(w, status, map[string]interface{}{
		"status":   state,
		"sessions": s.deps.Sessions.Len(),
		"checks":   checks,
	})
}

// ==========================
// Helpers
// ==========================

func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	blob, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(blob)) == 0 {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.UseNumber()
	return dec.Decode(dst)
}

func parseInt(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return v
}
