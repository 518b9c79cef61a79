// Package formstate stages one startup profile while it is being entered and
// turns it into the normalized payload the prediction service accepts.
package formstate

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/validation"
	"startup-insights/internal/fieldmodel"
	"startup-insights/internal/models"
)

// ValidationResult lists every offending field at once, in field-model order.
type ValidationResult struct {
	MissingFields []string `json:"missingFields"`
	InvalidFields []string `json:"invalidFields"`
}

func (r ValidationResult) Valid() bool {
	return len(r.MissingFields) == 0 && len(r.InvalidFields) == 0
}

// Err returns nil when valid, otherwise a *errors.ValidationError.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return &apperrors.ValidationError{
		MissingFields: append([]string(nil), r.MissingFields...),
		InvalidFields: append([]string(nil), r.InvalidFields...),
	}
}

// FormState is not safe for concurrent use; callers serialize access.
type FormState struct {
	model  *fieldmodel.Model
	schema validation.JSONSchema
	values map[string]interface{}
}

func New(model *fieldmodel.Model) *FormState {
	if model == nil {
		model = fieldmodel.Default()
	}
	return &FormState{
		model:  model,
		schema: model.JSONSchema(),
		values: make(map[string]interface{}),
	}
}

// SetField stores raw verbatim. Select fields usually receive a
// fieldmodel.Option, scalar fields a string or number. Last write wins.
func (s *FormState) SetField(name string, raw interface{}) {
	s.values[name] = raw
}

// SetFields applies each entry as SetField would.
func (s *FormState) SetFields(values map[string]interface{}) {
	for k, v := range values {
		s.SetField(k, v)
	}
}

// Get returns the raw stored value.
func (s *FormState) Get(name string) (interface{}, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Values returns a copy of the raw stored values.
func (s *FormState) Values() map[string]interface{} {
	out := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Reset clears every field.
func (s *FormState) Reset() {
	s.values = make(map[string]interface{})
}

type outcome int

const (
	absent outcome = iota
	present
	invalid
)

type resolved struct {
	state outcome
	value interface{}
	nan   bool
}

// Validate reports every required field that is absent, empty or not a
// number, and every optional field whose value cannot be used.
func (s *FormState) Validate() ValidationResult {
	result := ValidationResult{MissingFields: []string{}, InvalidFields: []string{}}
	for _, f := range s.model.Fields() {
		r := s.resolve(f)
		switch {
		case f.Required && r.state == absent:
			result.MissingFields = append(result.MissingFields, f.Name)
		case f.Required && r.nan:
			// NaN counts as missing for required numbers
			result.MissingFields = append(result.MissingFields, f.Name)
		case r.state == invalid:
			result.InvalidFields = append(result.InvalidFields, f.Name)
		}
	}
	return result
}

// ToWireFormat normalizes the form into the prediction payload. Enum fields
// carry their canonical catalog value, numbers are parsed, blank optional
// fields are omitted. Invalid forms return *errors.ValidationError.
func (s *FormState) ToWireFormat() (*models.StartupProfile, error) {
	if err := s.Validate().Err(); err != nil {
		return nil, err
	}

	profile := s.build()

	result, err := validation.Validate(s.schema, profile)
	if err != nil {
		return nil, fmt.Errorf("schema check: %w", err)
	}
	if !result.Valid {
		return nil, apperrors.NewSchemaViolationError(strings.Join(result.GetErrorMessages(), "; "))
	}
	return profile, nil
}

// Snapshot is the lenient counterpart of ToWireFormat used for live metrics:
// unusable values are dropped and nothing fails.
func (s *FormState) Snapshot() *models.StartupProfile {
	return s.build()
}

func (s *FormState) build() *models.StartupProfile {
	profile := &models.StartupProfile{}
	for _, f := range s.model.Fields() {
		r := s.resolve(f)
		if r.state != present {
			continue
		}
		_ = profile.Set(f.Name, r.value)
	}
	return profile
}

func (s *FormState) resolve(f fieldmodel.Field) resolved {
	raw, ok := s.values[f.Name]
	if !ok || raw == nil {
		return resolved{state: absent}
	}

	switch f.Kind {
	case fieldmodel.KindEnum:
		text, ok := optionValue(raw)
		if !ok {
			return resolved{state: invalid}
		}
		if strings.TrimSpace(text) == "" {
			return resolved{state: absent}
		}
		canonical, ok := s.model.Canonical(f.Name, text)
		if !ok {
			return resolved{state: invalid}
		}
		return resolved{state: present, value: canonical}

	case fieldmodel.KindText:
		text, ok := scalarText(raw)
		if !ok {
			return resolved{state: invalid}
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return resolved{state: absent}
		}
		return resolved{state: present, value: text}

	case fieldmodel.KindInteger, fieldmodel.KindDecimal:
		text, isText := raw.(string)
		if isText && strings.TrimSpace(text) == "" {
			return resolved{state: absent}
		}
		n := parseNumber(raw, f.Kind)
		if math.IsNaN(n) {
			return resolved{state: invalid, nan: true}
		}
		if math.IsInf(n, 0) {
			return resolved{state: invalid}
		}
		if f.Minimum != nil && n < *f.Minimum {
			return resolved{state: invalid}
		}
		if f.Kind == fieldmodel.KindInteger {
			if n >= math.MaxInt64 || n < math.MinInt64 {
				return resolved{state: invalid}
			}
			return resolved{state: present, value: int64(n)}
		}
		return resolved{state: present, value: n}
	}
	return resolved{state: invalid}
}

func parseNumber(raw interface{}, kind fieldmodel.Kind) float64 {
	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case json.Number:
		text = v.String()
	case float64:
		if kind == fieldmodel.KindDecimal || math.IsNaN(v) || math.IsInf(v, 0) {
			return v
		}
		text = numberString(v)
	case float32:
		return parseNumber(float64(v), kind)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	default:
		return math.NaN()
	}
	if kind == fieldmodel.KindInteger {
		return parseIntPrefix(text)
	}
	return parseFloatPrefix(text)
}

// optionValue extracts the selected value from an option, an option-shaped
// JSON object or a bare string.
func optionValue(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case fieldmodel.Option:
		return v.Value, true
	case *fieldmodel.Option:
		if v == nil {
			return "", true
		}
		return v.Value, true
	case map[string]interface{}:
		val, ok := v["value"]
		if !ok || val == nil {
			return "", true
		}
		s, ok := val.(string)
		return s, ok
	case string:
		return v, true
	}
	return "", false
}

func scalarText(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return numberString(v), true
	case int:
		return fmt.Sprint(v), true
	case int64:
		return fmt.Sprint(v), true
	}
	if opt, ok := optionValue(raw); ok {
		return opt, true
	}
	return "", false
}
