// Package coordinator sequences the remote calls of a dashboard session and
// applies their results to the session's report.
//
// A submission issues predict, then peer comparison, strictly in order. Peer
// selections run as an independent sub-cycle once a prediction succeeded.
// Every request is stamped with a token; a response whose token is no longer
// current is dropped and the call returns ErrSuperseded. Nothing is cancelled.
package coordinator

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/common/metrics"
	"startup-insights/internal/common/observability"
	"startup-insights/internal/derived"
	"startup-insights/internal/formstate"
	"startup-insights/internal/models"
	"startup-insights/internal/predictionapi"
	"startup-insights/internal/report"

	"go.opentelemetry.io/otel/attribute"
)

// ErrSuperseded is returned when a newer submission or selection made the
// response of this call irrelevant.
var ErrSuperseded = stderrors.New("superseded by a newer request")

// Outcome describes a settled submission cycle.
type Outcome struct {
	Cycle          uint64
	Phase          report.Phase
	Profile        *models.StartupProfile
	Prediction     *models.PredictionResult
	PeerComparison *models.PeerComparisonReport
	HealthScore    int
	Err            error
	Duration       time.Duration
}

// SettleHook is called after a cycle settles, outside the coordinator lock.
type SettleHook func(ctx context.Context, outcome Outcome)

type Option func(*Coordinator)

func WithSettleHook(hook SettleHook) Option {
	return func(c *Coordinator) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}

func WithObservability(obs *observability.Observability) Option {
	return func(c *Coordinator) {
		c.obs = obs
	}
}

type Coordinator struct {
	mu     sync.Mutex
	svc    predictionapi.Service
	view   *report.ViewModel
	logger logger.Logger
	obs    *observability.Observability
	hooks  []SettleHook

	cycle      uint64
	compareSeq uint64
	selected   string
	profile    *models.StartupProfile
	predictOK  bool
	cycleStart time.Time
}

func New(svc predictionapi.Service, view *report.ViewModel, log logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		svc:    svc,
		view:   view,
		logger: logger.Component(log, "coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns the report this coordinator writes to.
func (c *Coordinator) View() *report.ViewModel {
	return c.view
}

// SubmitForm validates the form and, when valid, submits its wire payload.
// A validation failure issues no network call and invalidates any cycle
// still in flight.
func (c *Coordinator) SubmitForm(ctx context.Context, form *formstate.FormState) error {
	c.view.SetPhase(report.PhaseValidating)

	profile, err := form.ToWireFormat()
	if err != nil {
		c.mu.Lock()
		c.cycle++
		c.compareSeq++
		c.predictOK = false
		c.view.ValidationFailed(c.cycle, err)
		c.mu.Unlock()

		metrics.SubmissionsTotal.WithLabelValues(string(report.PhaseInvalid)).Inc()
		c.logger.Info("submission rejected by validation", map[string]interface{}{
			"message": apperrors.UserMessage(err),
		})
		return err
	}
	return c.Submit(ctx, profile)
}

// Submit runs one submission cycle: predict, then peer comparison. A predict
// failure halts the cycle; a peer comparison failure keeps the prediction.
// The returned error is the failure that settled the cycle, if any.
func (c *Coordinator) Submit(ctx context.Context, profile *models.StartupProfile) error {
	token, err := c.Begin(profile)
	if err != nil {
		return err
	}
	return c.Run(ctx, token)
}

// Begin starts a submission cycle and returns its token. The view shows the
// new cycle as pending before Begin returns; Run issues its remote calls.
func (c *Coordinator) Begin(profile *models.StartupProfile) (uint64, error) {
	if profile == nil {
		return 0, apperrors.NewInvalidInputError("profile is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycle++
	c.compareSeq++
	c.profile = profile.Clone()
	c.predictOK = false
	c.cycleStart = time.Now()
	c.view.SetPhase(report.PhaseSubmitting)
	c.view.BeginCycle(c.cycle, profile)
	return c.cycle, nil
}

// Run issues the remote calls of the cycle started by Begin. It returns
// ErrSuperseded without calling out when a newer cycle has started.
func (c *Coordinator) Run(ctx context.Context, token uint64) error {
	c.mu.Lock()
	if token != c.cycle {
		c.mu.Unlock()
		return ErrSuperseded
	}
	profile := c.profile
	c.mu.Unlock()

	ctx, span := c.obs.StartSpan(ctx, "coordinator.submit",
		attribute.Int64("cycle", int64(token)),
		attribute.String("organization", profile.OrganizationName),
	)
	defer span.End()

	log := c.logger.WithFields(map[string]interface{}{"cycle": token})
	log.Info("submission cycle started", map[string]interface{}{
		"organization": profile.OrganizationName,
	})

	prediction, err := c.svc.Predict(ctx, profile)

	c.mu.Lock()
	if token != c.cycle {
		c.mu.Unlock()
		c.discard(apperrors.CallPredict, log)
		return ErrSuperseded
	}
	if err != nil {
		c.view.PredictFailed(err)
		outcome := c.outcomeLocked(report.PhasePredictFailed, nil, nil, err)
		c.mu.Unlock()
		log.Warn("prediction failed", map[string]interface{}{
			"error":     err.Error(),
			"malformed": apperrors.IsMalformed(err),
		})
		c.settle(ctx, outcome)
		return err
	}
	c.predictOK = true
	c.view.PredictSucceeded(prediction)
	c.mu.Unlock()
	log.Info("prediction received", map[string]interface{}{
		"label": prediction.PracticalPrediction.Label,
	})

	peer, err := c.svc.PeerComparison(ctx, profile)

	c.mu.Lock()
	if token != c.cycle {
		c.mu.Unlock()
		c.discard(apperrors.CallPeerComparison, log)
		return ErrSuperseded
	}
	if err != nil {
		c.view.PeerFailed(err)
		outcome := c.outcomeLocked(report.PhasePeerFailed, prediction, nil, err)
		c.mu.Unlock()
		log.Warn("peer comparison failed", map[string]interface{}{
			"error":     err.Error(),
			"malformed": apperrors.IsMalformed(err),
		})
		c.settle(ctx, outcome)
		return err
	}
	c.view.PeerSucceeded(peer)
	outcome := c.outcomeLocked(report.PhaseReady, prediction, peer, nil)
	c.mu.Unlock()
	log.Info("submission cycle ready", map[string]interface{}{
		"similarStartups": len(peer.SimilarStartups),
	})
	c.settle(ctx, outcome)
	return nil
}

// SelectPeer compares the current profile against one peer. The latest
// selection wins; earlier responses are discarded on arrival.
func (c *Coordinator) SelectPeer(ctx context.Context, name string) error {
	seq, err := c.BeginCompare(name)
	if err != nil {
		return err
	}
	return c.RunCompare(ctx, seq)
}

// BeginCompare starts a peer selection and returns its token. Later
// selections supersede it.
func (c *Coordinator) BeginCompare(name string) (uint64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperrors.NewInvalidInputError("peer name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.predictOK {
		return 0, apperrors.NewNoActivePredictionError()
	}
	c.compareSeq++
	c.selected = name
	c.view.CompareStarted(name)
	return c.compareSeq, nil
}

// RunCompare issues the comparison call of the selection started by
// BeginCompare.
func (c *Coordinator) RunCompare(ctx context.Context, seq uint64) error {
	c.mu.Lock()
	if seq != c.compareSeq {
		c.mu.Unlock()
		return ErrSuperseded
	}
	profile := c.profile
	name := c.selected
	c.mu.Unlock()

	ctx, span := c.obs.StartSpan(ctx, "coordinator.select_peer",
		attribute.Int64("compare_seq", int64(seq)),
		attribute.String("peer", name),
	)
	defer span.End()

	log := c.logger.WithFields(map[string]interface{}{"compareSeq": seq, "peer": name})
	log.Info("peer selection started", nil)

	cmp, err := c.svc.CompareToStartup(ctx, profile, name)

	c.mu.Lock()
	if seq != c.compareSeq {
		c.mu.Unlock()
		c.discard(apperrors.CallCompareToStartup, log)
		return ErrSuperseded
	}
	if err != nil {
		c.view.CompareFailed(err)
		c.mu.Unlock()
		log.Warn("peer selection comparison failed", map[string]interface{}{
			"error":     err.Error(),
			"malformed": apperrors.IsMalformed(err),
		})
		return err
	}
	c.view.CompareSucceeded(cmp)
	c.mu.Unlock()
	log.Info("peer selection comparison ready", map[string]interface{}{
		"pros": len(cmp.Pros),
		"cons": len(cmp.Cons),
	})
	return nil
}

// HasPrediction reports whether the current cycle's prediction succeeded,
// which is what SelectPeer requires.
func (c *Coordinator) HasPrediction() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.predictOK
}

// Cycle returns the current submission token.
func (c *Coordinator) Cycle() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycle
}

func (c *Coordinator) discard(call apperrors.RemoteCall, log logger.Logger) {
	metrics.StaleResponsesDiscarded.WithLabelValues(string(call)).Inc()
	log.Debug("discarded stale response", map[string]interface{}{
		"call": string(call),
	})
}

// outcomeLocked builds the settle outcome. Caller holds c.mu.
func (c *Coordinator) outcomeLocked(phase report.Phase, prediction *models.PredictionResult, peer *models.PeerComparisonReport, err error) Outcome {
	return Outcome{
		Cycle:          c.cycle,
		Phase:          phase,
		Profile:        c.profile.Clone(),
		Prediction:     prediction.Clone(),
		PeerComparison: peer.Clone(),
		HealthScore:    derived.HealthScore(c.profile),
		Err:            err,
		Duration:       time.Since(c.cycleStart),
	}
}

func (c *Coordinator) settle(ctx context.Context, outcome Outcome) {
	metrics.SubmissionsTotal.WithLabelValues(string(outcome.Phase)).Inc()
	metrics.HealthScores.Observe(float64(outcome.HealthScore))
	c.obs.RecordCycle(ctx, string(outcome.Phase), outcome.Duration)

	for _, hook := range c.hooks {
		hook(ctx, outcome)
	}
}
