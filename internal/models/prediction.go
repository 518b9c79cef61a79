// internal/models/prediction.go
package models

import "encoding/json"

// PredictionOutcome is one labelled outcome of the prediction service.
type PredictionOutcome struct {
	Label       string   `json:"label"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
}

// Score returns the confidence, falling back to the probability.
func (o PredictionOutcome) Score() (float64, bool) {
	if o.Confidence != nil {
		return *o.Confidence, true
	}
	if o.Probability != nil {
		return *o.Probability, true
	}
	return 0, false
}

// PredictionResult is the response of POST /predict. Fields the service adds
// beyond the two named outcomes are kept in Extra and written back on marshal.
type PredictionResult struct {
	PracticalPrediction  PredictionOutcome         `json:"practical_prediction"`
	NoHardworkAdjustment PredictionOutcome         `json:"no_hardwork_adjustment"`
	Extra                map[string]json.RawMessage `json:"-"`
}

// MarshalJSON merges Extra into the top-level object.
func (r PredictionResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Extra)+2)
	for k, v := range r.Extra {
		out[k] = v
	}
	out["practical_prediction"] = r.PracticalPrediction
	out["no_hardwork_adjustment"] = r.NoHardworkAdjustment
	return json.Marshal(out)
}

// FeatureComparison is one row of Raw_Comparison.
type FeatureComparison struct {
	Feature      string   `json:"Feature"`
	StartupValue *float64 `json:"Startup_Value"`
	IndustryAvg  *float64 `json:"Industry_Avg"`
}

// BarChartPoint is a per-feature z-score bar.
type BarChartPoint struct {
	Feature string  `json:"feature"`
	ZScore  float64 `json:"z_score"`
	Fill    string  `json:"fill"`
}

// RadarChartPoint compares the startup against the industry for one feature.
type RadarChartPoint struct {
	Feature       string  `json:"feature"`
	StartupZScore float64 `json:"startup_z_score"`
	IndustryAvg   float64 `json:"industry_avg"`
}

// PeerMetrics holds one peer's per-feature values.
type PeerMetrics struct {
	Name    string              `json:"name"`
	Metrics map[string]*float64 `json:"metrics"`
}

// PeerComparisonReport is the response of POST /peer_comparison.
type PeerComparisonReport struct {
	StartupName     string              `json:"Startup_Name"`
	SimilarStartups []string            `json:"Similar_Startups"`
	Pros            []string            `json:"Pros"`
	Cons            []string            `json:"Cons"`
	RawComparison   []FeatureComparison `json:"Raw_Comparison"`
	BarChartData    []BarChartPoint     `json:"bar_chart_data"`
	RadarChartData  []RadarChartPoint   `json:"radar_chart_data"`
	PeerData        []PeerMetrics       `json:"peer_data,omitempty"`
}

const (
	FillPositive = "green"
	FillNegative = "red"
)

// FillFor derives the bar color from the z-score sign.
func FillFor(z float64) string {
	if z > 0 {
		return FillPositive
	}
	return FillNegative
}

// NormalizeCharts fills in bar colors the service left blank and replaces
// nil slices with empty ones so the report renders without nil checks.
func (r *PeerComparisonReport) NormalizeCharts() {
	for i := range r.BarChartData {
		if r.BarChartData[i].Fill == "" {
			r.BarChartData[i].Fill = FillFor(r.BarChartData[i].ZScore)
		}
	}
	if r.SimilarStartups == nil {
		r.SimilarStartups = []string{}
	}
	if r.Pros == nil {
		r.Pros = []string{}
	}
	if r.Cons == nil {
		r.Cons = []string{}
	}
	if r.RawComparison == nil {
		r.RawComparison = []FeatureComparison{}
	}
	if r.BarChartData == nil {
		r.BarChartData = []BarChartPoint{}
	}
	if r.RadarChartData == nil {
		r.RadarChartData = []RadarChartPoint{}
	}
}

// HasPeer reports whether name is one of the similar startups.
func (r *PeerComparisonReport) HasPeer(name string) bool {
	for _, s := range r.SimilarStartups {
		if s == name {
			return true
		}
	}
	return false
}

// PeerSelectionComparison is the response of POST /compare_to_startup.
type PeerSelectionComparison struct {
	StartupName     string   `json:"Startup_Name,omitempty"`
	SelectedStartup string   `json:"Selected_Startup"`
	Pros            []string `json:"Pros"`
	Cons            []string `json:"Cons"`
}

// CompareRequest is the body of POST /compare_to_startup.
type CompareRequest struct {
	StartupData         *StartupProfile `json:"startup_data"`
	SelectedStartupName string          `json:"selected_startup_name"`
}

// Clone returns a deep copy.
func (r *PredictionResult) Clone() *PredictionResult {
	if r == nil {
		return nil
	}
	out := *r
	out.PracticalPrediction = r.PracticalPrediction.clone()
	out.NoHardworkAdjustment = r.NoHardworkAdjustment.clone()
	if r.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &out
}

func (o PredictionOutcome) clone() PredictionOutcome {
	return PredictionOutcome{
		Label:       o.Label,
		Confidence:  copyFloat(o.Confidence),
		Probability: copyFloat(o.Probability),
	}
}

// Clone returns a deep copy.
func (r *PeerComparisonReport) Clone() *PeerComparisonReport {
	if r == nil {
		return nil
	}
	out := *r
	out.SimilarStartups = copyStrings(r.SimilarStartups)
	out.Pros = copyStrings(r.Pros)
	out.Cons = copyStrings(r.Cons)
	if r.RawComparison != nil {
		out.RawComparison = make([]FeatureComparison, len(r.RawComparison))
		for i, row := range r.RawComparison {
			out.RawComparison[i] = FeatureComparison{
				Feature:      row.Feature,
				StartupValue: copyFloat(row.StartupValue),
				IndustryAvg:  copyFloat(row.IndustryAvg),
			}
		}
	}
	if r.BarChartData != nil {
		out.BarChartData = append([]BarChartPoint{}, r.BarChartData...)
	}
	if r.RadarChartData != nil {
		out.RadarChartData = append([]RadarChartPoint{}, r.RadarChartData...)
	}
	if r.PeerData != nil {
		out.PeerData = make([]PeerMetrics, len(r.PeerData))
		for i, peer := range r.PeerData {
			metrics := make(map[string]*float64, len(peer.Metrics))
			for k, v := range peer.Metrics {
				metrics[k] = copyFloat(v)
			}
			out.PeerData[i] = PeerMetrics{Name: peer.Name, Metrics: metrics}
		}
	}
	return &out
}

// Clone returns a deep copy.
func (c *PeerSelectionComparison) Clone() *PeerSelectionComparison {
	if c == nil {
		return nil
	}
	out := *c
	out.Pros = copyStrings(c.Pros)
	out.Cons = copyStrings(c.Cons)
	return &out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}
