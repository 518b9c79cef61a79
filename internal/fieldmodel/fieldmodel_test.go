package fieldmodel

import (
	"testing"

	"startup-insights/internal/common/validation"
	"startup-insights/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		models.FieldOrganizationName:     "Acme Robotics",
		models.FieldIndustries:           "Manufacturing",
		models.FieldHeadquartersLocation: "Karnataka",
		models.FieldEstimatedRevenue:     "$10M to $50M",
		models.FieldFoundedDate:          2015,
		models.FieldInvestmentStage:      "Series A",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestModel_RequiredFields(t *testing.T) {
	m := Default()

	assert.Equal(t, []string{
		models.FieldOrganizationName,
		models.FieldIndustries,
		models.FieldHeadquartersLocation,
		models.FieldEstimatedRevenue,
		models.FieldFoundedDate,
		models.FieldInvestmentStage,
	}, m.RequiredFields())

	assert.True(t, m.IsRequired(models.FieldFoundedDate))
	assert.False(t, m.IsRequired(models.FieldGrowthCategory))
	assert.False(t, m.IsRequired("Unknown_Field"))
}

func TestModel_OptionsFor(t *testing.T) {
	m := Default()

	tests := []struct {
		name      string
		field     string
		wantLen   int
		wantFirst string
		wantLast  string
	}{
		{name: "industries", field: models.FieldIndustries, wantLen: 45, wantFirst: "Agriculture and Allied Industries", wantLast: "Tourism and Hospitality"},
		{name: "regions", field: models.FieldHeadquartersLocation, wantLen: 29, wantFirst: "Andhra Pradesh", wantLast: "Jammu and Kashmir"},
		{name: "revenue", field: models.FieldEstimatedRevenue, wantLen: 7, wantFirst: "Less than $1M", wantLast: "$10B+"},
		{name: "employees", field: models.FieldNumberOfEmployees, wantLen: 7, wantFirst: "1-10", wantLast: "1001-5000"},
		{name: "stages", field: models.FieldInvestmentStage, wantLen: 5, wantFirst: "Seed", wantLast: "IPO"},
		{name: "growth category", field: models.FieldGrowthCategory, wantLen: 3, wantFirst: "Medium", wantLast: "High"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := m.OptionsFor(tt.field)
			require.Len(t, opts, tt.wantLen)
			assert.Equal(t, tt.wantFirst, opts[0].Value)
			assert.Equal(t, tt.wantLast, opts[len(opts)-1].Value)
		})
	}

	assert.Nil(t, m.OptionsFor(models.FieldOrganizationName))
	assert.Nil(t, m.OptionsFor(models.FieldMonthlyVisit))
}

func TestModel_OptionsFor_ReturnsCopy(t *testing.T) {
	m := Default()
	opts := m.OptionsFor(models.FieldInvestmentStage)
	opts[0].Value = "mutated"

	assert.Equal(t, "Seed", m.OptionsFor(models.FieldInvestmentStage)[0].Value)
}

func TestModel_OrdinalOf(t *testing.T) {
	m := Default()

	tests := []struct {
		name   string
		field  string
		value  string
		want   int
		wantOK bool
	}{
		{name: "first revenue band", field: models.FieldEstimatedRevenue, value: "Less than $1M", want: 0, wantOK: true},
		{name: "top revenue band", field: models.FieldEstimatedRevenue, value: "$10B+", want: 6, wantOK: true},
		{name: "series b", field: models.FieldInvestmentStage, value: "Series B", want: 2, wantOK: true},
		{name: "growth order medium below growing", field: models.FieldGrowthCategory, value: "Growing", want: 1, wantOK: true},
		{name: "unknown value is unranked", field: models.FieldGrowthCategory, value: "Low", wantOK: false},
		{name: "unordered field is unranked", field: models.FieldIndustries, value: "Banking", wantOK: false},
		{name: "unknown field is unranked", field: "Nope", value: "x", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.OrdinalOf(tt.field, tt.value)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestModel_Canonical(t *testing.T) {
	m := Default()

	tests := []struct {
		name   string
		field  string
		raw    string
		want   string
		wantOK bool
	}{
		{name: "exact value", field: models.FieldEstimatedRevenue, raw: "$1M to $10M", want: "$1M to $10M", wantOK: true},
		{name: "display label", field: models.FieldEstimatedRevenue, raw: "Under $1M", want: "Less than $1M", wantOK: true},
		{name: "case insensitive", field: models.FieldInvestmentStage, raw: "series a", want: "Series A", wantOK: true},
		{name: "surrounding space", field: models.FieldGrowthConfidence, raw: "  High ", want: "High", wantOK: true},
		{name: "outside catalog", field: models.FieldEstimatedRevenue, raw: "10M+", wantOK: false},
		{name: "not an enum", field: models.FieldFounders, raw: "Alice", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Canonical(tt.field, tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModel_CanonicalRoundTrip(t *testing.T) {
	m := Default()
	for _, f := range m.Fields() {
		if f.Kind != KindEnum {
			continue
		}
		for _, opt := range f.Options {
			got, ok := m.Canonical(f.Name, opt.Label)
			require.True(t, ok, "%s/%s", f.Name, opt.Label)
			assert.Equal(t, opt.Value, got)
			assert.Equal(t, opt.Label, m.LabelOf(f.Name, got))
		}
	}
}

// ==========================
// Schema Tests
// ==========================

func TestModel_JSONSchema(t *testing.T) {
	schema := Default().JSONSchema()

	assert.Equal(t, "object", schema.Type)
	assert.Len(t, schema.Properties, 19)
	assert.Equal(t, "integer", schema.Properties[models.FieldFoundedDate].Type)
	assert.Equal(t, "number", schema.Properties[models.FieldVisitDurationGrowth].Type)
	assert.Len(t, schema.Properties[models.FieldIndustries].Enum, 45)
}

func TestModel_JSONSchema_Validates(t *testing.T) {
	schema := Default().JSONSchema()

	tests := []struct {
		name      string
		mutate    func(p map[string]interface{})
		wantValid bool
		wantField string
		wantCode  string
	}{
		{
			name:      "valid payload",
			mutate:    func(p map[string]interface{}) {},
			wantValid: true,
		},
		{
			name:      "missing required",
			mutate:    func(p map[string]interface{}) { delete(p, models.FieldInvestmentStage) },
			wantField: models.FieldInvestmentStage,
			wantCode:  "REQUIRED_FIELD_MISSING",
		},
		{
			name:      "enum outside catalog",
			mutate:    func(p map[string]interface{}) { p[models.FieldEstimatedRevenue] = "10M+" },
			wantField: models.FieldEstimatedRevenue,
			wantCode:  "INVALID_ENUM_VALUE",
		},
		{
			name:      "negative count",
			mutate:    func(p map[string]interface{}) { p[models.FieldPatentsGranted] = -1 },
			wantField: models.FieldPatentsGranted,
			wantCode:  "MINIMUM_VIOLATION",
		},
		{
			name:      "negative growth allowed",
			mutate:    func(p map[string]interface{}) { p[models.FieldVisitDurationGrowth] = -12.5 },
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)

			result, err := validation.Validate(schema, payload)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid, result.GetErrorMessages())
			if !tt.wantValid {
				assert.True(t, result.HasErrors(tt.wantField), result.GetErrorMessages())
				assert.Contains(t, result.FieldsWithCode(tt.wantCode), tt.wantField)
			}
		})
	}
}
