package derived

import (
	"math/rand"
	"strings"
	"testing"

	"startup-insights/internal/fieldmodel"
	"startup-insights/internal/formstate"
	"startup-insights/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createFullProfile() *models.StartupProfile {
	return &models.StartupProfile{
		OrganizationName:      "Acme Robotics",
		Industries:            "Manufacturing",
		HeadquartersLocation:  "Karnataka",
		EstimatedRevenue:      "$10M to $50M",
		FoundedDate:           models.Int64(2015),
		InvestmentStage:       "Series A",
		NumberOfEmployees:     "51-100",
		NumberOfFundingRounds: models.Int64(3),
		GrowthCategory:        "Growing",
		GrowthConfidence:      "Medium",
		VisitDurationGrowth:   models.Float64(30),
	}
}

func titles(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

// ==========================
// Health Score Tests
// ==========================

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.StartupProfile
		want    int
	}{
		{
			name:    "nil profile",
			profile: nil,
			want:    0,
		},
		{
			name:    "no rubric data",
			profile: &models.StartupProfile{OrganizationName: "Empty"},
			want:    0,
		},
		{
			name:    "full profile",
			profile: createFullProfile(),
			// 18 + 14 + 12 + 8 + 8 + 8 = 68 of 100
			want: 68,
		},
		{
			name: "top of every bucket",
			profile: &models.StartupProfile{
				GrowthCategory:        "High",
				GrowthConfidence:      "High",
				EstimatedRevenue:      "$10B+",
				NumberOfEmployees:     "1001-5000",
				VisitDurationGrowth:   models.Float64(75),
				NumberOfFundingRounds: models.Int64(6),
			},
			want: 100,
		},
		{
			name: "partial profile is not penalized for absent items",
			profile: &models.StartupProfile{
				GrowthCategory: "High",
			},
			want: 100,
		},
		{
			name: "partial profile rounds the ratio",
			profile: &models.StartupProfile{
				GrowthCategory:   "Medium",
				GrowthConfidence: "Low",
			},
			// (12 + 8) / 45
			want: 44,
		},
		{
			name: "unknown growth category scores fallback",
			profile: &models.StartupProfile{
				GrowthCategory: "Low",
			},
			// 6 / 25
			want: 24,
		},
		{
			name: "floor buckets",
			profile: &models.StartupProfile{
				EstimatedRevenue:      "Less than $1M",
				NumberOfEmployees:     "1-10",
				VisitDurationGrowth:   models.Float64(-5),
				NumberOfFundingRounds: models.Int64(0),
			},
			// (4 + 4 + 3 + 2) / 55
			want: 24,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HealthScore(tt.profile))
		})
	}
}

func TestHealthScore_VisitGrowthBuckets(t *testing.T) {
	tests := []struct {
		growth float64
		want   int
	}{
		{growth: 51, want: 10},
		{growth: 50, want: 8},
		{growth: 25.5, want: 8},
		{growth: 25, want: 6},
		{growth: 0.1, want: 6},
		{growth: 0, want: 3},
		{growth: -40, want: 3},
	}
	for _, tt := range tests {
		item := visitGrowthItem(models.Float64(tt.growth))
		assert.Equal(t, tt.want, item.Earned, "growth %v", tt.growth)
	}
}

func TestHealthScore_MonotonicInGrowthCategory(t *testing.T) {
	for _, base := range []*models.StartupProfile{createFullProfile(), {}, {EstimatedRevenue: "$10B+"}} {
		low := base.Clone()
		low.GrowthCategory = "Medium"
		high := base.Clone()
		high.GrowthCategory = "High"

		assert.GreaterOrEqual(t, HealthScore(high), HealthScore(low))
	}
}

func TestHealthScore_IndependentOfAssignmentOrder(t *testing.T) {
	values := map[string]interface{}{
		models.FieldGrowthCategory:        "High",
		models.FieldGrowthConfidence:      "Low",
		models.FieldEstimatedRevenue:      "$50M to $100M",
		models.FieldNumberOfEmployees:     "11-50",
		models.FieldVisitDurationGrowth:   "12",
		models.FieldNumberOfFundingRounds: "2",
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}

	want := -1
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(keys), func(a, b int) { keys[a], keys[b] = keys[b], keys[a] })
		form := formstate.New(fieldmodel.Default())
		for _, k := range keys {
			form.SetField(k, values[k])
		}
		score := HealthScore(form.Snapshot())
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
		if want < 0 {
			want = score
		}
		assert.Equal(t, want, score)
	}
}

// ==========================
// Recommendation Tests
// ==========================

func TestRecommendations_RevenueFirstForLowRevenue(t *testing.T) {
	p := createFullProfile()
	p.EstimatedRevenue = "Less than $1M"
	p.GrowthCategory = "Low"

	recs := Recommendations(p, nil)

	require.NotEmpty(t, recs)
	assert.Equal(t, "Revenue Growth Required", recs[0].Title)
	assert.Equal(t, PriorityCritical, recs[0].Priority)
	assert.Equal(t, "Accelerate Growth", recs[1].Title)
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *models.StartupProfile)
		peer   *models.PeerComparisonReport
		want   []string
	}{
		{
			name:   "growing series a",
			mutate: func(p *models.StartupProfile) {},
			want:   []string{"Accelerate Growth", "Prepare for Series B"},
		},
		{
			name: "strong company only gets stage advice",
			mutate: func(p *models.StartupProfile) {
				p.GrowthCategory = "High"
			},
			want: []string{"Prepare for Series B"},
		},
		{
			name: "understaffed series c",
			mutate: func(p *models.StartupProfile) {
				p.GrowthCategory = "High"
				p.InvestmentStage = "Series C"
				p.NumberOfEmployees = "11-50"
			},
			want: []string{"Prepare for IPO", "Scale the Team"},
		},
		{
			name: "peer cons outnumber pros",
			mutate: func(p *models.StartupProfile) {
				p.GrowthCategory = "High"
				p.NumberOfEmployees = "1-10"
			},
			peer: &models.PeerComparisonReport{Pros: []string{"a"}, Cons: []string{"b", "c"}},
			want: []string{"Prepare for Series B", "Scale the Team", "Close Peer Gaps"},
		},
		{
			name: "capped at three",
			mutate: func(p *models.StartupProfile) {
				p.EstimatedRevenue = "$1M to $10M"
				p.NumberOfEmployees = "1-10"
			},
			peer: &models.PeerComparisonReport{Cons: []string{"b"}},
			want: []string{"Revenue Growth Required", "Accelerate Growth", "Prepare for Series B"},
		},
		{
			name: "balanced peer report adds nothing",
			mutate: func(p *models.StartupProfile) {
				p.GrowthCategory = "High"
			},
			peer: &models.PeerComparisonReport{Pros: []string{"a"}, Cons: []string{"b"}},
			want: []string{"Prepare for Series B"},
		},
		{
			name: "unknown revenue band is unranked",
			mutate: func(p *models.StartupProfile) {
				p.EstimatedRevenue = "10M+"
				p.GrowthCategory = "High"
			},
			want: []string{"Prepare for Series B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := createFullProfile()
			tt.mutate(p)

			recs := Recommendations(p, tt.peer)
			assert.Equal(t, tt.want, titles(recs))
			assert.LessOrEqual(t, len(recs), MaxRecommendations)
		})
	}
}

func TestRecommendations_NoDuplicateTitles(t *testing.T) {
	p := &models.StartupProfile{
		EstimatedRevenue:  "Less than $1M",
		GrowthCategory:    "Medium",
		InvestmentStage:   "IPO",
		NumberOfEmployees: "1-10",
	}
	peer := &models.PeerComparisonReport{Cons: []string{"x"}}

	seen := map[string]bool{}
	for _, r := range Recommendations(p, peer) {
		assert.False(t, seen[r.Title], r.Title)
		seen[r.Title] = true
	}
}

// ==========================
// Milestone Tests
// ==========================

func TestNextMilestone(t *testing.T) {
	m, ok := NextMilestone(&models.StartupProfile{InvestmentStage: "Seed"})
	require.True(t, ok)
	assert.Equal(t, "Series A", m.NextStage)
	referencesNext := false
	for _, r := range m.Requirements {
		if assert.NotEmpty(t, r) && strings.Contains(r, "Series A") {
			referencesNext = true
		}
	}
	assert.True(t, referencesNext)

	m, ok = NextMilestone(&models.StartupProfile{InvestmentStage: "Series A"})
	require.True(t, ok)
	assert.Equal(t, "Series B", m.NextStage)

	m, ok = NextMilestone(&models.StartupProfile{InvestmentStage: "Pre-Seed"})
	require.True(t, ok)
	assert.Equal(t, "Seed", m.NextStage)

	for _, stage := range []string{"IPO", "Series B", "Series C", "", "Unknown"} {
		m, ok := NextMilestone(&models.StartupProfile{InvestmentStage: stage})
		assert.False(t, ok, stage)
		assert.Nil(t, m)
	}
}

func TestNextMilestone_ReturnsCopy(t *testing.T) {
	m, _ := NextMilestone(&models.StartupProfile{InvestmentStage: "Seed"})
	m.Requirements[0] = "changed"

	again, _ := NextMilestone(&models.StartupProfile{InvestmentStage: "Seed"})
	assert.NotEqual(t, "changed", again.Requirements[0])
}

func TestCompute_IsDeterministic(t *testing.T) {
	p := createFullProfile()
	peer := &models.PeerComparisonReport{Cons: []string{"a", "b"}}

	assert.Equal(t, Compute(p, peer), Compute(p.Clone(), peer))
}
