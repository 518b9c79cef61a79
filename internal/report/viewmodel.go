// Package report holds the view state the dashboard renders: one sub-report
// per remote call, the local validation outcome and the derived metrics.
package report

import (
	"errors"
	"sync"
	"time"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/derived"
	"startup-insights/internal/models"
)

// Phase is the position of the submission cycle.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseValidating     Phase = "validating"
	PhaseInvalid        Phase = "invalid"
	PhaseSubmitting     Phase = "submitting"
	PhasePredictPending Phase = "predict_pending"
	PhasePredictFailed  Phase = "predict_failed"
	PhasePeerPending    Phase = "peer_pending"
	PhasePeerFailed     Phase = "peer_failed"
	PhaseReady          Phase = "ready"
)

// Settled reports whether no call of the cycle is still in flight.
func (p Phase) Settled() bool {
	switch p {
	case PhaseInvalid, PhasePredictFailed, PhasePeerFailed, PhaseReady:
		return true
	}
	return false
}

// CompareState is the position of the peer selection sub-cycle.
type CompareState string

const (
	CompareNone    CompareState = "none"
	ComparePending CompareState = "pending"
	CompareFailed  CompareState = "failed"
	CompareReady   CompareState = "ready"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// SubReport is one independently failable section of the report. Data is set
// only on success and Error only on failure.
type SubReport[T any] struct {
	Status    Status               `json:"status"`
	Call      apperrors.RemoteCall `json:"call"`
	Data      *T                   `json:"data,omitempty"`
	Error     string               `json:"error,omitempty"`
	Malformed bool                 `json:"malformed,omitempty"`
}

func (s *SubReport[T]) reset() {
	s.Status = StatusIdle
	s.Data = nil
	s.Error = ""
	s.Malformed = false
}

func (s *SubReport[T]) loading() {
	s.reset()
	s.Status = StatusLoading
}

func (s *SubReport[T]) succeed(data *T) {
	s.reset()
	s.Status = StatusSuccess
	s.Data = data
}

func (s *SubReport[T]) fail(err error) {
	s.reset()
	s.Status = StatusError
	s.Error = apperrors.UserMessage(err)
	s.Malformed = apperrors.IsMalformed(err)
}

func (s SubReport[T]) cloneWith(clone func(*T) *T) SubReport[T] {
	out := s
	if s.Data != nil {
		out.Data = clone(s.Data)
	}
	return out
}

// PeerSelection is the compare-to-startup section.
type PeerSelection struct {
	SubReport[models.PeerSelectionComparison]
	SelectedPeer string `json:"selectedPeer,omitempty"`
}

// ValidationSection is the consolidated local validation message.
type ValidationSection struct {
	MissingFields []string `json:"missingFields"`
	InvalidFields []string `json:"invalidFields,omitempty"`
	Message       string   `json:"message"`
}

// State is a point-in-time copy of the view.
type State struct {
	Phase           Phase                                  `json:"phase"`
	Compare         CompareState                           `json:"compare"`
	Cycle           uint64                                 `json:"cycle"`
	Profile         *models.StartupProfile                 `json:"profile,omitempty"`
	Validation      *ValidationSection                     `json:"validation,omitempty"`
	Prediction      SubReport[models.PredictionResult]     `json:"prediction"`
	PeerComparison  SubReport[models.PeerComparisonReport] `json:"peerComparison"`
	PeerSelection   PeerSelection                          `json:"peerSelection"`
	HealthScore     int                                    `json:"healthScore"`
	Breakdown       []derived.BreakdownItem                `json:"breakdown"`
	Recommendations []derived.Recommendation               `json:"recommendations"`
	NextMilestone   *derived.Milestone                     `json:"nextMilestone,omitempty"`
	UpdatedAt       time.Time                              `json:"updatedAt"`
}

// ViewModel is the single mutable report of one dashboard session. It is
// written by the coordinator's transition methods and by RecomputeDerived.
type ViewModel struct {
	mu    sync.RWMutex
	state State
	live  *models.StartupProfile
	now   func() time.Time
}

func NewViewModel() *ViewModel {
	v := &ViewModel{now: time.Now}
	v.state = State{
		Phase:          PhaseIdle,
		Compare:        CompareNone,
		Prediction:     SubReport[models.PredictionResult]{Status: StatusIdle, Call: apperrors.CallPredict},
		PeerComparison: SubReport[models.PeerComparisonReport]{Status: StatusIdle, Call: apperrors.CallPeerComparison},
		PeerSelection: PeerSelection{
			SubReport: SubReport[models.PeerSelectionComparison]{Status: StatusIdle, Call: apperrors.CallCompareToStartup},
		},
	}
	v.applyDerived()
	return v
}

// SetPhase moves the cycle without touching any sub-report.
func (v *ViewModel) SetPhase(phase Phase) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Phase = phase
	v.touch()
}

// ValidationFailed records a local failure. The rejected submit starts a new
// cycle, so every result of the previous one is cleared.
func (v *ViewModel) ValidationFailed(cycle uint64, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	section := &ValidationSection{MissingFields: []string{}, Message: apperrors.UserMessage(err)}
	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		section.MissingFields = append(section.MissingFields, vErr.MissingFields...)
		section.InvalidFields = append([]string(nil), vErr.InvalidFields...)
	}
	v.state.Cycle = cycle
	v.state.Validation = section
	v.state.Phase = PhaseInvalid
	v.state.Compare = CompareNone
	v.state.Prediction.reset()
	v.state.PeerComparison.reset()
	v.state.PeerSelection.reset()
	v.state.PeerSelection.SelectedPeer = ""
	v.applyDerived()
	v.touch()
}

// BeginCycle clears every result of the previous cycle and marks the
// prediction as loading.
func (v *ViewModel) BeginCycle(cycle uint64, profile *models.StartupProfile) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.state.Cycle = cycle
	v.state.Profile = profile.Clone()
	v.state.Validation = nil
	v.state.Phase = PhasePredictPending
	v.state.Compare = CompareNone
	v.state.Prediction.loading()
	v.state.PeerComparison.reset()
	v.state.PeerSelection.reset()
	v.state.PeerSelection.SelectedPeer = ""
	v.applyDerived()
	v.touch()
}

func (v *ViewModel) PredictSucceeded(result *models.PredictionResult) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Prediction.succeed(result.Clone())
	v.state.PeerComparison.loading()
	v.state.Phase = PhasePeerPending
	v.touch()
}

// PredictFailed halts the cycle; the peer comparison is never issued.
func (v *ViewModel) PredictFailed(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Prediction.fail(err)
	v.state.PeerComparison.reset()
	v.state.Phase = PhasePredictFailed
	v.touch()
}

// PeerSucceeded settles the cycle and feeds the peer signal into the
// recommendations.
func (v *ViewModel) PeerSucceeded(peer *models.PeerComparisonReport) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.PeerComparison.succeed(peer.Clone())
	v.state.Phase = PhaseReady
	v.applyDerived()
	v.touch()
}

// PeerFailed marks only the comparison as failed; the prediction is kept.
func (v *ViewModel) PeerFailed(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.PeerComparison.fail(err)
	v.state.Phase = PhasePeerFailed
	v.touch()
}

// CompareStarted drops the previous selection result.
func (v *ViewModel) CompareStarted(peer string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.PeerSelection.loading()
	v.state.PeerSelection.SelectedPeer = peer
	v.state.Compare = ComparePending
	v.touch()
}

func (v *ViewModel) CompareSucceeded(cmp *models.PeerSelectionComparison) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.PeerSelection.succeed(cmp.Clone())
	v.state.Compare = CompareReady
	v.touch()
}

func (v *ViewModel) CompareFailed(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.PeerSelection.fail(err)
	v.state.Compare = CompareFailed
	v.touch()
}

// RecomputeDerived refreshes the health score, breakdown, recommendations and
// milestone from the live form profile. It never touches the sub-reports.
func (v *ViewModel) RecomputeDerived(profile *models.StartupProfile) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.live = profile.Clone()
	v.applyDerived()
	v.touch()
}

// Snapshot returns a deep copy of the current state.
func (v *ViewModel) Snapshot() State {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := v.state
	s.Profile = v.state.Profile.Clone()
	if v.state.Validation != nil {
		val := *v.state.Validation
		val.MissingFields = append([]string{}, val.MissingFields...)
		val.InvalidFields = append([]string(nil), val.InvalidFields...)
		s.Validation = &val
	}
	s.Prediction = v.state.Prediction.cloneWith((*models.PredictionResult).Clone)
	s.PeerComparison = v.state.PeerComparison.cloneWith((*models.PeerComparisonReport).Clone)
	s.PeerSelection.SubReport = v.state.PeerSelection.SubReport.cloneWith((*models.PeerSelectionComparison).Clone)
	s.Breakdown = append([]derived.BreakdownItem{}, v.state.Breakdown...)
	s.Recommendations = append([]derived.Recommendation{}, v.state.Recommendations...)
	if v.state.NextMilestone != nil {
		m := *v.state.NextMilestone
		m.Requirements = append([]string{}, m.Requirements...)
		s.NextMilestone = &m
	}
	return s
}

// applyDerived prefers the live form profile and falls back to the profile
// of the current cycle. Caller holds the lock.
func (v *ViewModel) applyDerived() {
	profile := v.live
	if profile == nil {
		profile = v.state.Profile
	}
	m := derived.Compute(profile, v.state.PeerComparison.Data)
	v.state.HealthScore = m.HealthScore
	v.state.Breakdown = m.Breakdown
	v.state.Recommendations = m.Recommendations
	v.state.NextMilestone = m.NextMilestone
}

func (v *ViewModel) touch() {
	v.state.UpdatedAt = v.now().UTC()
}
