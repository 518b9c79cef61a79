// Package fieldmodel is the single definition of the startup profile schema:
// field names, value domains and required-ness. Input widgets, the form
// validator and the wire schema all read from it.
package fieldmodel

import (
	"strings"

	"startup-insights/internal/common/validation"
	"startup-insights/internal/models"
)

type Kind string

const (
	KindText    Kind = "text"
	KindEnum    Kind = "enum"
	KindInteger Kind = "integer"
	KindDecimal Kind = "decimal"
)

// Option is one selectable value. Value is what goes on the wire.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required"`
	Ordered  bool     `json:"ordered"`
	Options  []Option `json:"options,omitempty"`
	Minimum  *float64 `json:"minimum,omitempty"`
}

// Numeric reports whether the field holds a parsed number.
func (f Field) Numeric() bool {
	return f.Kind == KindInteger || f.Kind == KindDecimal
}

// Model is immutable after construction and safe for concurrent use.
type Model struct {
	fields []Field
	index  map[string]int
}

var zero = 0.0

var defaultModel = New([]Field{
	{Name: models.FieldOrganizationName, Label: "Organization Name", Kind: KindText, Required: true},
	{Name: models.FieldIndustries, Label: "Industry", Kind: KindEnum, Required: true, Options: plain(industries)},
	{Name: models.FieldHeadquartersLocation, Label: "Headquarters Location", Kind: KindEnum, Required: true, Options: plain(headquartersRegions)},
	{Name: models.FieldEstimatedRevenue, Label: "Estimated Revenue", Kind: KindEnum, Required: true, Ordered: true, Options: revenueBands},
	{Name: models.FieldFoundedDate, Label: "Founded Year", Kind: KindInteger, Required: true, Minimum: &zero},
	{Name: models.FieldInvestmentStage, Label: "Investment Stage", Kind: KindEnum, Required: true, Ordered: true, Options: plain(investmentStages)},
	{Name: models.FieldIndustryGroups, Label: "Industry Groups", Kind: KindText},
	{Name: models.FieldNumberOfFounders, Label: "Number of Founders", Kind: KindInteger, Minimum: &zero},
	{Name: models.FieldFounders, Label: "Founders", Kind: KindText},
	{Name: models.FieldNumberOfEmployees, Label: "Number of Employees", Kind: KindEnum, Ordered: true, Options: employeeBands},
	{Name: models.FieldNumberOfFundingRounds, Label: "Number of Funding Rounds", Kind: KindInteger, Minimum: &zero},
	{Name: models.FieldFundingStatus, Label: "Funding Status", Kind: KindEnum, Options: plain(fundingStatuses)},
	{Name: models.FieldTotalFundingAmount, Label: "Total Funding Amount", Kind: KindEnum, Ordered: true, Options: fundingAmountBands},
	{Name: models.FieldGrowthCategory, Label: "Growth Category", Kind: KindEnum, Ordered: true, Options: plain(growthCategories)},
	{Name: models.FieldGrowthConfidence, Label: "Growth Confidence", Kind: KindEnum, Ordered: true, Options: plain(growthConfidences)},
	{Name: models.FieldMonthlyVisit, Label: "Monthly Visits", Kind: KindInteger, Minimum: &zero},
	{Name: models.FieldVisitDurationGrowth, Label: "Visit Duration Growth (%)", Kind: KindDecimal},
	{Name: models.FieldPatentsGranted, Label: "Patents Granted", Kind: KindInteger, Minimum: &zero},
	{Name: models.FieldVisitDuration, Label: "Visit Duration (seconds)", Kind: KindInteger, Minimum: &zero},
})

// Default returns the startup profile model.
func Default() *Model {
	return defaultModel
}

// New builds a model over fields in the given order.
func New(fields []Field) *Model {
	m := &Model{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(m.fields, fields)
	for i, f := range m.fields {
		m.index[f.Name] = i
	}
	return m
}

// Fields returns the field definitions in display order.
func (m *Model) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Field looks up one definition.
func (m *Model) Field(name string) (Field, bool) {
	i, ok := m.index[name]
	if !ok {
		return Field{}, false
	}
	return m.fields[i], true
}

// OptionsFor returns the ordered options of an enum field, nil otherwise.
func (m *Model) OptionsFor(field string) []Option {
	f, ok := m.Field(field)
	if !ok || f.Kind != KindEnum {
		return nil
	}
	out := make([]Option, len(f.Options))
	copy(out, f.Options)
	return out
}

func (m *Model) IsRequired(field string) bool {
	f, ok := m.Field(field)
	return ok && f.Required
}

// RequiredFields lists required field names in display order.
func (m *Model) RequiredFields() []string {
	var out []string
	for _, f := range m.fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// OrdinalOf returns the position of value within an ordered band. The second
// result is false for unordered fields and values outside the catalog; callers
// treat that as unranked.
func (m *Model) OrdinalOf(field, value string) (int, bool) {
	f, ok := m.Field(field)
	if !ok || !f.Ordered {
		return 0, false
	}
	for i, opt := range f.Options {
		if opt.Value == value {
			return i, true
		}
	}
	return 0, false
}

// Canonical resolves raw, given either as a value or a display label and
// compared case-insensitively, to the catalog value.
func (m *Model) Canonical(field, raw string) (string, bool) {
	f, ok := m.Field(field)
	if !ok || f.Kind != KindEnum {
		return "", false
	}
	needle := strings.TrimSpace(raw)
	for _, opt := range f.Options {
		if opt.Value == needle {
			return opt.Value, true
		}
	}
	for _, opt := range f.Options {
		if strings.EqualFold(opt.Value, needle) || strings.EqualFold(opt.Label, needle) {
			return opt.Value, true
		}
	}
	return "", false
}

// LabelOf returns the display label for a catalog value.
func (m *Model) LabelOf(field, value string) string {
	for _, opt := range m.OptionsFor(field) {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// JSONSchema describes the wire payload. Enum fields accept only catalog
// values, numbers must be non-negative where the model says so.
func (m *Model) JSONSchema() validation.JSONSchema {
	noExtra := false
	minLen := 1
	schema := validation.JSONSchema{
		Schema:               "http://json-schema.org/draft-07/schema#",
		Title:                "StartupProfile",
		Type:                 "object",
		Properties:           make(map[string]validation.Property, len(m.fields)),
		Required:             m.RequiredFields(),
		AdditionalProperties: &noExtra,
	}

	for _, f := range m.fields {
		prop := validation.Property{Description: f.Label}
		switch f.Kind {
		case KindText:
			prop.Type = "string"
			if f.Required {
				prop.MinLength = &minLen
			}
		case KindEnum:
			prop.Type = "string"
			for _, opt := range f.Options {
				prop.Enum = append(prop.Enum, opt.Value)
			}
		case KindInteger:
			prop.Type = "integer"
			prop.Minimum = f.Minimum
		case KindDecimal:
			prop.Type = "number"
			prop.Minimum = f.Minimum
		}
		schema.Properties[f.Name] = prop
	}
	return schema
}
