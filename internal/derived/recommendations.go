package derived

import (
	"fmt"

	"startup-insights/internal/fieldmodel"
	"startup-insights/internal/models"
)

type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
)

// MaxRecommendations caps the list shown on the report.
const MaxRecommendations = 3

type Recommendation struct {
	Title    string   `json:"title"`
	Action   string   `json:"action"`
	Priority Priority `json:"priority"`
	Metric   string   `json:"metric"`
}

// rule yields at most one recommendation for its category.
type rule func(p *models.StartupProfile, peer *models.PeerComparisonReport) (Recommendation, bool)

// rules run in priority order; the first MaxRecommendations matches win.
var rules = []rule{
	revenueRule,
	growthRule,
	stageRule,
	teamRule,
	peerRule,
}

// revenueThreshold is the lowest band that does not trigger the revenue rule.
const revenueThreshold = "$10M to $50M"

// stageTeamMinimum is the smallest employee band expected at each stage.
var stageTeamMinimum = map[string]string{
	"Seed":     "1-10",
	"Series A": "11-50",
	"Series B": "51-100",
	"Series C": "101-250",
	"IPO":      "251-500",
}

var stageAdvice = map[string]Recommendation{
	"Seed": {
		Title:  "Prepare for Series A",
		Action: "Prove product-market fit and build a repeatable acquisition channel before raising a Series A.",
	},
	"Series A": {
		Title:  "Prepare for Series B",
		Action: "Turn early traction into predictable revenue and document unit economics for Series B investors.",
	},
	"Series B": {
		Title:  "Prepare for Series C",
		Action: "Expand into adjacent markets and strengthen the leadership bench ahead of a Series C.",
	},
	"Series C": {
		Title:  "Prepare for IPO",
		Action: "Put audit-ready financial controls and governance in place for public-market scrutiny.",
	},
	"IPO": {
		Title:  "Sustain Public-Market Performance",
		Action: "Keep growth and margins consistent quarter over quarter to hold investor confidence.",
	},
}

// Recommendations evaluates the rule table against the profile and the
// optional peer report. At most one recommendation per category is returned.
func Recommendations(p *models.StartupProfile, peer *models.PeerComparisonReport) []Recommendation {
	if p == nil {
		p = &models.StartupProfile{}
	}
	out := make([]Recommendation, 0, MaxRecommendations)
	for _, r := range rules {
		rec, ok := r(p, peer)
		if !ok {
			continue
		}
		out = append(out, rec)
		if len(out) == MaxRecommendations {
			break
		}
	}
	return out
}

func revenueRule(p *models.StartupProfile, _ *models.PeerComparisonReport) (Recommendation, bool) {
	fm := fieldmodel.Default()
	current, ok := fm.OrdinalOf(models.FieldEstimatedRevenue, p.EstimatedRevenue)
	if !ok {
		return Recommendation{}, false
	}
	threshold, _ := fm.OrdinalOf(models.FieldEstimatedRevenue, revenueThreshold)
	if current >= threshold {
		return Recommendation{}, false
	}
	return Recommendation{
		Title:    "Revenue Growth Required",
		Action:   fmt.Sprintf("Focus on customer acquisition and pricing to reach the %s revenue band.", revenueThreshold),
		Priority: PriorityCritical,
		Metric:   fmt.Sprintf("Estimated revenue: %s", p.EstimatedRevenue),
	}, true
}

// growthRule also fires for categories outside the catalog.
func growthRule(p *models.StartupProfile, _ *models.PeerComparisonReport) (Recommendation, bool) {
	if p.GrowthCategory == "" {
		return Recommendation{}, false
	}
	fm := fieldmodel.Default()
	current, ok := fm.OrdinalOf(models.FieldGrowthCategory, p.GrowthCategory)
	top, _ := fm.OrdinalOf(models.FieldGrowthCategory, "High")
	if ok && current >= top {
		return Recommendation{}, false
	}
	return Recommendation{
		Title:    "Accelerate Growth",
		Action:   "Invest in the channels with the best retention and raise visit duration to move into the High growth category.",
		Priority: PriorityHigh,
		Metric:   fmt.Sprintf("Growth category: %s", p.GrowthCategory),
	}, true
}

func stageRule(p *models.StartupProfile, _ *models.PeerComparisonReport) (Recommendation, bool) {
	advice, ok := stageAdvice[p.InvestmentStage]
	if !ok {
		return Recommendation{}, false
	}
	advice.Priority = PriorityMedium
	advice.Metric = fmt.Sprintf("Investment stage: %s", p.InvestmentStage)
	return advice, true
}

func teamRule(p *models.StartupProfile, _ *models.PeerComparisonReport) (Recommendation, bool) {
	minBand, ok := stageTeamMinimum[p.InvestmentStage]
	if !ok {
		return Recommendation{}, false
	}
	fm := fieldmodel.Default()
	current, ok := fm.OrdinalOf(models.FieldNumberOfEmployees, p.NumberOfEmployees)
	if !ok {
		return Recommendation{}, false
	}
	minimum, _ := fm.OrdinalOf(models.FieldNumberOfEmployees, minBand)
	if current >= minimum {
		return Recommendation{}, false
	}
	return Recommendation{
		Title:    "Scale the Team",
		Action:   fmt.Sprintf("Companies at %s typically have at least %s employees; hire for the roles that unblock growth.", p.InvestmentStage, minBand),
		Priority: PriorityHigh,
		Metric:   fmt.Sprintf("Employees: %s", p.NumberOfEmployees),
	}, true
}

func peerRule(_ *models.StartupProfile, peer *models.PeerComparisonReport) (Recommendation, bool) {
	if peer == nil || len(peer.Cons) <= len(peer.Pros) {
		return Recommendation{}, false
	}
	return Recommendation{
		Title:    "Close Peer Gaps",
		Action:   "Address the weaknesses highlighted in the peer comparison, starting with the largest negative z-scores.",
		Priority: PriorityMedium,
		Metric:   fmt.Sprintf("%d weaknesses vs %d strengths against peers", len(peer.Cons), len(peer.Pros)),
	}, true
}
