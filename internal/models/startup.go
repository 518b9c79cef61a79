// internal/models/startup.go
package models

import "fmt"

// Wire names of the startup profile fields, as used by the prediction service.
const (
	FieldOrganizationName      = "Organization_Name"
	FieldIndustries            = "Industries"
	FieldHeadquartersLocation  = "Headquarters_Location"
	FieldEstimatedRevenue      = "Estimated_Revenue"
	FieldFoundedDate           = "Founded_Date"
	FieldInvestmentStage       = "Investment_Stage"
	FieldIndustryGroups        = "Industry_Groups"
	FieldNumberOfFounders      = "Number_of_Founders"
	FieldFounders              = "Founders"
	FieldNumberOfEmployees     = "Number_of_Employees"
	FieldNumberOfFundingRounds = "Number_of_Funding_Rounds"
	FieldFundingStatus         = "Funding_Status"
	FieldTotalFundingAmount    = "Total_Funding_Amount"
	FieldGrowthCategory        = "Growth_Category"
	FieldGrowthConfidence      = "Growth_Confidence"
	FieldMonthlyVisit          = "Monthly_visit"
	FieldVisitDurationGrowth   = "Visit_Duration_Growth"
	FieldPatentsGranted        = "Patents_Granted"
	FieldVisitDuration         = "Visit_Duration"
)

// StartupProfile is the normalized payload sent to the prediction service.
// Blank optional fields are omitted rather than sent as empty strings.
type StartupProfile struct {
	OrganizationName      string   `json:"Organization_Name,omitempty"`
	Industries            string   `json:"Industries,omitempty"`
	HeadquartersLocation  string   `json:"Headquarters_Location,omitempty"`
	EstimatedRevenue      string   `json:"Estimated_Revenue,omitempty"`
	FoundedDate           *int64   `json:"Founded_Date,omitempty"`
	InvestmentStage       string   `json:"Investment_Stage,omitempty"`
	IndustryGroups        string   `json:"Industry_Groups,omitempty"`
	NumberOfFounders      *int64   `json:"Number_of_Founders,omitempty"`
	Founders              string   `json:"Founders,omitempty"`
	NumberOfEmployees     string   `json:"Number_of_Employees,omitempty"`
	NumberOfFundingRounds *int64   `json:"Number_of_Funding_Rounds,omitempty"`
	FundingStatus         string   `json:"Funding_Status,omitempty"`
	TotalFundingAmount    string   `json:"Total_Funding_Amount,omitempty"`
	GrowthCategory        string   `json:"Growth_Category,omitempty"`
	GrowthConfidence      string   `json:"Growth_Confidence,omitempty"`
	MonthlyVisit          *int64   `json:"Monthly_visit,omitempty"`
	VisitDurationGrowth   *float64 `json:"Visit_Duration_Growth,omitempty"`
	PatentsGranted        *int64   `json:"Patents_Granted,omitempty"`
	VisitDuration         *int64   `json:"Visit_Duration,omitempty"`
}

// Set assigns a parsed value to the named field. Strings go to text and enum
// fields, int64 to integer fields, float64 to Visit_Duration_Growth.
func (p *StartupProfile) Set(field string, value interface{}) error {
	switch v := value.(type) {
	case string:
		target := p.stringField(field)
		if target == nil {
			return fmt.Errorf("field %s does not hold text", field)
		}
		*target = v
	case int64:
		target := p.intField(field)
		if target == nil {
			if field == FieldVisitDurationGrowth {
				f := float64(v)
				p.VisitDurationGrowth = &f
				return nil
			}
			return fmt.Errorf("field %s does not hold an integer", field)
		}
		*target = &v
	case float64:
		if field != FieldVisitDurationGrowth {
			return fmt.Errorf("field %s does not hold a decimal", field)
		}
		p.VisitDurationGrowth = &v
	default:
		return fmt.Errorf("unsupported value type %T for field %s", value, field)
	}
	return nil
}

// Value returns the field's value and whether it is present.
func (p *StartupProfile) Value(field string) (interface{}, bool) {
	if s := p.stringField(field); s != nil {
		return *s, *s != ""
	}
	if i := p.intField(field); i != nil {
		if *i == nil {
			return nil, false
		}
		return **i, true
	}
	if field == FieldVisitDurationGrowth && p.VisitDurationGrowth != nil {
		return *p.VisitDurationGrowth, true
	}
	return nil, false
}

// Clone returns a deep copy.
func (p *StartupProfile) Clone() *StartupProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.FoundedDate = cloneInt(p.FoundedDate)
	out.NumberOfFounders = cloneInt(p.NumberOfFounders)
	out.NumberOfFundingRounds = cloneInt(p.NumberOfFundingRounds)
	out.MonthlyVisit = cloneInt(p.MonthlyVisit)
	out.PatentsGranted = cloneInt(p.PatentsGranted)
	out.VisitDuration = cloneInt(p.VisitDuration)
	if p.VisitDurationGrowth != nil {
		f := *p.VisitDurationGrowth
		out.VisitDurationGrowth = &f
	}
	return &out
}

func (p *StartupProfile) stringField(field string) *string {
	switch field {
	case FieldOrganizationName:
		return &p.OrganizationName
	case FieldIndustries:
		return &p.Industries
	case FieldHeadquartersLocation:
		return &p.HeadquartersLocation
	case FieldEstimatedRevenue:
		return &p.EstimatedRevenue
	case FieldInvestmentStage:
		return &p.InvestmentStage
	case FieldIndustryGroups:
		return &p.IndustryGroups
	case FieldFounders:
		return &p.Founders
	case FieldNumberOfEmployees:
		return &p.NumberOfEmployees
	case FieldFundingStatus:
		return &p.FundingStatus
	case FieldTotalFundingAmount:
		return &p.TotalFundingAmount
	case FieldGrowthCategory:
		return &p.GrowthCategory
	case FieldGrowthConfidence:
		return &p.GrowthConfidence
	}
	return nil
}

func (p *StartupProfile) intField(field string) **int64 {
	switch field {
	case FieldFoundedDate:
		return &p.FoundedDate
	case FieldNumberOfFounders:
		return &p.NumberOfFounders
	case FieldNumberOfFundingRounds:
		return &p.NumberOfFundingRounds
	case FieldMonthlyVisit:
		return &p.MonthlyVisit
	case FieldPatentsGranted:
		return &p.PatentsGranted
	case FieldVisitDuration:
		return &p.VisitDuration
	}
	return nil
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }
