// Package storage keeps the history of settled submissions in PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/coordinator"
	"startup-insights/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const maxRecent = 100

// Submission is one stored row. Profile and Prediction hold the JSON that was
// sent to and received from the prediction service.
type Submission struct {
	ID               string          `json:"id"`
	OrganizationName string          `json:"organizationName"`
	InvestmentStage  string          `json:"investmentStage"`
	Industries       string          `json:"industries"`
	PredictionLabel  string          `json:"predictionLabel"`
	Confidence       *float64        `json:"confidence,omitempty"`
	HealthScore      int             `json:"healthScore"`
	Profile          json.RawMessage `json:"profile"`
	Prediction       json.RawMessage `json:"prediction"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type Store struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.Component(log, "submission-store"),
		now:    time.Now,
	}
}

// Save upserts the submission of an organization. A resubmission keeps the
// row ID and creation time and replaces everything else.
func (s *Store) Save(ctx context.Context, profile *models.StartupProfile, prediction *models.PredictionResult, healthScore int) (*Submission, error) {
	if profile == nil || prediction == nil {
		return nil, apperrors.NewInvalidInputError("profile and prediction are required")
	}
	name := strings.TrimSpace(profile.OrganizationName)
	if name == "" {
		return nil, apperrors.NewInvalidInputError("organization name is required")
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("marshal profile: %w", err))
	}
	predictionJSON, err := json.Marshal(prediction)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("marshal prediction: %w", err))
	}

	var confidence *float64
	if score, ok := prediction.PracticalPrediction.Score(); ok {
		confidence = &score
	}

	sub := &Submission{
		OrganizationName: name,
		InvestmentStage:  profile.InvestmentStage,
		Industries:       profile.Industries,
		PredictionLabel:  prediction.PracticalPrediction.Label,
		Confidence:       confidence,
		HealthScore:      healthScore,
		Profile:          profileJSON,
		Prediction:       predictionJSON,
	}
	now := s.now().UTC()

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO startup_submissions (
			id, organization_name, investment_stage, industries, prediction_label,
			confidence, health_score, profile, prediction, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (organization_name) DO UPDATE SET
			investment_stage = EXCLUDED.investment_stage,
			industries       = EXCLUDED.industries,
			prediction_label = EXCLUDED.prediction_label,
			confidence       = EXCLUDED.confidence,
			health_score     = EXCLUDED.health_score,
			profile          = EXCLUDED.profile,
			prediction       = EXCLUDED.prediction,
			updated_at       = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`,
		uuid.New().String(),
		sub.OrganizationName,
		sub.InvestmentStage,
		sub.Industries,
		sub.PredictionLabel,
		confidence,
		healthScore,
		profileJSON,
		predictionJSON,
		now,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	s.logger.Info("submission stored", map[string]interface{}{
		"submissionId":     sub.ID,
		"organizationName": sub.OrganizationName,
		"predictionLabel":  sub.PredictionLabel,
		"healthScore":      healthScore,
	})
	return sub, nil
}

// Recent returns the latest submissions, newest first. When labels are given
// only submissions with one of those prediction labels are returned.
func (s *Store) Recent(ctx context.Context, limit int, labels ...string) ([]Submission, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}

	query := `
		SELECT id, organization_name, investment_stage, industries, prediction_label,
			confidence, health_score, profile, prediction, created_at, updated_at
		FROM startup_submissions`
	args := []interface{}{limit}
	if len(labels) > 0 {
		query += ` WHERE prediction_label = ANY($2)`
		args = append(args, pq.Array(labels))
	}
	query += ` ORDER BY updated_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("recent_submissions", err)
	}
	defer rows.Close()

	out := make([]Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("recent_submissions", err)
		}
		out = append(out, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("recent_submissions", err)
	}
	return out, nil
}

// Get returns the stored submission of an organization, or nil when there is
// none.
func (s *Store) Get(ctx context.Context, organizationName string) (*Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, organization_name, investment_stage, industries, prediction_label,
			confidence, health_score, profile, prediction, created_at, updated_at
		FROM startup_submissions
		WHERE organization_name = $1`, strings.TrimSpace(organizationName))

	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get_submission", err)
	}
	return sub, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row scanner) (*Submission, error) {
	var (
		sub        Submission
		confidence sql.NullFloat64
		profile    []byte
		prediction []byte
	)
	if err := row.Scan(
		&sub.ID,
		&sub.OrganizationName,
		&sub.InvestmentStage,
		&sub.Industries,
		&sub.PredictionLabel,
		&confidence,
		&sub.HealthScore,
		&profile,
		&prediction,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if confidence.Valid {
		v := confidence.Float64
		sub.Confidence = &v
	}
	sub.Profile = profile
	sub.Prediction = prediction
	return &sub, nil
}

// SettleHook stores every cycle that produced a prediction. Failures are
// logged; the dashboard never waits on history.
func (s *Store) SettleHook() coordinator.SettleHook {
	return func(ctx context.Context, outcome coordinator.Outcome) {
		if outcome.Prediction == nil || outcome.Profile == nil {
			return
		}
		if _, err := s.Save(ctx, outcome.Profile, outcome.Prediction, outcome.HealthScore); err != nil {
			s.logger.Warn("failed to store submission", map[string]interface{}{
				"cycle": outcome.Cycle,
				"error": err.Error(),
			})
		}
	}
}
