package derived

import "startup-insights/internal/models"

type Milestone struct {
	CurrentStage string   `json:"currentStage"`
	NextStage    string   `json:"nextStage"`
	Requirements []string `json:"requirements"`
}

// milestones only covers the early stages. Later stages have no successor
// here and callers show no milestone for them.
var milestones = map[string]Milestone{
	"Pre-Seed": {
		NextStage: "Seed",
		Requirements: []string{
			"Launch a working product with first paying customers before the Seed round",
			"Assemble a founding team of at least two",
			"Show early traction in monthly visits",
		},
	},
	"Seed": {
		NextStage: "Series A",
		Requirements: []string{
			"Reach the $1M to $10M revenue band for a Series A raise",
			"Grow the team to 11-50 employees ahead of Series A",
			"Sustain positive visit duration growth over two quarters",
			"Close at least one priced funding round",
		},
	},
	"Series A": {
		NextStage: "Series B",
		Requirements: []string{
			"Reach the $10M to $50M revenue band for a Series B raise",
			"Grow the team to 51-100 employees",
			"Reach the High growth category with High confidence",
			"Complete three or more funding rounds",
		},
	},
}

// NextMilestone looks up the successor stage for the profile's investment
// stage. It returns false when the stage has no successor in the table.
func NextMilestone(p *models.StartupProfile) (*Milestone, bool) {
	if p == nil {
		return nil, false
	}
	m, ok := milestones[p.InvestmentStage]
	if !ok {
		return nil, false
	}
	out := Milestone{
		CurrentStage: p.InvestmentStage,
		NextStage:    m.NextStage,
		Requirements: append([]string(nil), m.Requirements...),
	}
	return &out, true
}

// Metrics bundles every derived value shown on the report.
type Metrics struct {
	HealthScore     int              `json:"healthScore"`
	Breakdown       []BreakdownItem  `json:"breakdown"`
	Recommendations []Recommendation `json:"recommendations"`
	NextMilestone   *Milestone       `json:"nextMilestone,omitempty"`
}

// Compute evaluates all derived metrics at once.
func Compute(p *models.StartupProfile, peer *models.PeerComparisonReport) Metrics {
	items := Breakdown(p)
	m := Metrics{
		HealthScore:     scoreOf(items),
		Breakdown:       items,
		Recommendations: Recommendations(p, peer),
	}
	if next, ok := NextMilestone(p); ok {
		m.NextMilestone = next
	}
	return m
}
