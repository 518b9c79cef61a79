package httpapi

import (
	"context"
	"sync"
	"time"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/common/metrics"
	"startup-insights/internal/coordinator"
	"startup-insights/internal/fieldmodel"
	"startup-insights/internal/formstate"
	"startup-insights/internal/report"

	"github.com/google/uuid"
)

// Session is one dashboard: a form, its report and the coordinator that
// connects them. formMu serializes form access; the report and coordinator
// synchronize themselves.
type Session struct {
	ID        string
	CreatedAt time.Time

	formMu sync.Mutex
	form   *formstate.FormState
	coord  *coordinator.Coordinator

	seenMu   sync.Mutex
	lastSeen time.Time
}

func (s *Session) View() *report.ViewModel {
	return s.coord.View()
}

func (s *Session) Coordinator() *coordinator.Coordinator {
	return s.coord
}

// WithForm runs fn with exclusive access to the form.
func (s *Session) WithForm(fn func(form *formstate.FormState)) {
	s.formMu.Lock()
	defer s.formMu.Unlock()
	fn(s.form)
}

func (s *Session) touch(now time.Time) {
	s.seenMu.Lock()
	s.lastSeen = now
	s.seenMu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	return s.lastSeen
}

// CoordinatorFactory builds the coordinator of a new session around its view.
type CoordinatorFactory func(view *report.ViewModel) *coordinator.Coordinator

// SessionStore holds live sessions and expires the idle ones.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	model    *fieldmodel.Model
	factory  CoordinatorFactory
	logger   logger.Logger
	now      func() time.Time
}

func NewSessionStore(model *fieldmodel.Model, ttl time.Duration, factory CoordinatorFactory, log logger.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		model:    model,
		factory:  factory,
		logger:   logger.Component(log, "sessions"),
		now:      time.Now,
	}
}

func (s *SessionStore) Create() *Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		form:      formstate.New(s.model),
		coord:     s.factory(report.NewViewModel()),
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	s.logger.Debug("session created", map[string]interface{}{"sessionId": sess.ID})
	return sess
}

// Get returns a live session and marks it as used.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewSessionNotFoundError(id)
	}
	sess.touch(s.now())
	return sess, nil
}

func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	return ok
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	if removed > 0 {
		s.logger.Info("expired idle sessions", map[string]interface{}{
			"removed":   removed,
			"remaining": count,
		})
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
