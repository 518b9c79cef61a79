// Package derived computes profile-only metrics: the health score, the
// recommendation list and the next funding milestone. Everything here is pure
// and deterministic so it can be recomputed on every form change.
package derived

import (
	"math"

	"startup-insights/internal/models"
)

// Rubric item names, in breakdown order.
const (
	ItemGrowthCategory   = "growth_category"
	ItemGrowthConfidence = "growth_confidence"
	ItemRevenue          = "revenue"
	ItemEmployees        = "employees"
	ItemVisitGrowth      = "visit_growth"
	ItemFundingRounds    = "funding_rounds"
)

const (
	maxGrowthCategory   = 25
	maxGrowthConfidence = 20
	maxRevenue          = 20
	maxEmployees        = 15
	maxVisitGrowth      = 10
	maxFundingRounds    = 10
)

var growthCategoryPoints = map[string]int{
	"High":    25,
	"Growing": 18,
	"Medium":  12,
}

var growthConfidencePoints = map[string]int{
	"High":   20,
	"Medium": 14,
	"Low":    8,
}

var revenuePoints = map[string]int{
	"$10B+":          20,
	"$1B to $10B":    20,
	"$100M to $500M": 16,
	"$50M to $100M":  16,
	"$10M to $50M":   12,
	"$1M to $10M":    8,
	"Less than $1M":  4,
}

var employeePoints = map[string]int{
	"1001-5000": 15,
	"501-1000":  15,
	"251-500":   12,
	"101-250":   12,
	"51-100":    8,
	"11-50":     8,
	"1-10":      4,
}

// BreakdownItem is one rubric line. Items without source data are reported
// with Present false and contribute nothing to either side of the ratio.
type BreakdownItem struct {
	Item    string `json:"item"`
	Earned  int    `json:"earned"`
	Max     int    `json:"max"`
	Present bool   `json:"present"`
}

// Breakdown scores each rubric item in fixed order.
func Breakdown(p *models.StartupProfile) []BreakdownItem {
	if p == nil {
		p = &models.StartupProfile{}
	}
	return []BreakdownItem{
		enumItem(ItemGrowthCategory, p.GrowthCategory, growthCategoryPoints, 6, maxGrowthCategory),
		enumItem(ItemGrowthConfidence, p.GrowthConfidence, growthConfidencePoints, 8, maxGrowthConfidence),
		enumItem(ItemRevenue, p.EstimatedRevenue, revenuePoints, 4, maxRevenue),
		enumItem(ItemEmployees, p.NumberOfEmployees, employeePoints, 4, maxEmployees),
		visitGrowthItem(p.VisitDurationGrowth),
		fundingRoundsItem(p.NumberOfFundingRounds),
	}
}

// HealthScore returns round(100 * earned / available) over the rubric items
// that have data, or 0 when none do. The result is always within [0, 100].
func HealthScore(p *models.StartupProfile) int {
	return scoreOf(Breakdown(p))
}

func scoreOf(items []BreakdownItem) int {
	earned, available := 0, 0
	for _, it := range items {
		if !it.Present {
			continue
		}
		earned += it.Earned
		available += it.Max
	}
	if available == 0 {
		return 0
	}
	return clamp(int(math.Round(100*float64(earned)/float64(available))), 0, 100)
}

func enumItem(name, value string, table map[string]int, fallback, max int) BreakdownItem {
	if value == "" {
		return BreakdownItem{Item: name, Max: max}
	}
	points, ok := table[value]
	if !ok {
		points = fallback
	}
	return BreakdownItem{Item: name, Earned: points, Max: max, Present: true}
}

func visitGrowthItem(growth *float64) BreakdownItem {
	item := BreakdownItem{Item: ItemVisitGrowth, Max: maxVisitGrowth}
	if growth == nil {
		return item
	}
	item.Present = true

	g := *growth
	if g > 50 {
		item.Earned = 10
	} else if g > 25 {
		item.Earned = 8
	} else if g > 0 {
		item.Earned = 6
	} else {
		item.Earned = 3
	}
	return item
}

func fundingRoundsItem(rounds *int64) BreakdownItem {
	item := BreakdownItem{Item: ItemFundingRounds, Max: maxFundingRounds}
	if rounds == nil {
		return item
	}
	item.Present = true

	r := *rounds
	if r >= 5 {
		item.Earned = 10
	} else if r >= 3 {
		item.Earned = 8
	} else if r >= 1 {
		item.Earned = 5
	} else {
		item.Earned = 2
	}
	return item
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
