package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"startup-insights/internal/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// RenderMarkdown writes a printable report of the state. Sections that have
// not settled are rendered with their status instead of their data.
func RenderMarkdown(s State) string {
	var b strings.Builder

	title := "Startup Report"
	if s.Profile != nil && s.Profile.OrganizationName != "" {
		title = s.Profile.OrganizationName
	}
	fmt.Fprintf(&b, "# %s\n\n", escape(title))
	if s.Profile != nil {
		writeProfile(&b, s.Profile)
	}

	if s.Validation != nil {
		fmt.Fprintf(&b, "> **Validation failed.** %s\n\n", escape(s.Validation.Message))
	}

	writeHealth(&b, s)
	writePrediction(&b, s.Prediction)
	writePeerComparison(&b, s.PeerComparison)
	writePeerSelection(&b, s.PeerSelection)

	if !s.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "---\n\n_Generated %s_\n", s.UpdatedAt.Format("2006-01-02 15:04 MST"))
	}
	return b.String()
}

// RenderHTML converts the markdown report into a standalone HTML page.
func RenderHTML(s State) (string, error) {
	var content bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(RenderMarkdown(s)), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}

	title := "Startup Report"
	if s.Profile != nil && s.Profile.OrganizationName != "" {
		title = s.Profile.OrganizationName
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + html.EscapeString(title) + "</title>" +
		"<style>body{font-family:sans-serif;max-width:960px;margin:0 auto;padding:1rem;} " +
		"table{border-collapse:collapse;width:100%;} th,td{border:1px solid #ccc;padding:0.3rem 0.5rem;text-align:left;} " +
		"blockquote{border-left:4px solid #b91c1c;margin:0;padding:0.2rem 0.8rem;color:#7f1d1d;}</style></head><body>" +
		content.String() + "</body></html>", nil
}

func writeProfile(b *strings.Builder, p *models.StartupProfile) {
	rows := [][2]string{
		{"Industry", p.Industries},
		{"Headquarters", p.HeadquartersLocation},
		{"Investment stage", p.InvestmentStage},
		{"Estimated revenue", p.EstimatedRevenue},
		{"Employees", p.NumberOfEmployees},
	}
	if p.FoundedDate != nil {
		rows = append(rows, [2]string{"Founded", fmt.Sprintf("%d", *p.FoundedDate)})
	}
	b.WriteString("| Field | Value |\n|---|---|\n")
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(b, "| %s | %s |\n", row[0], escape(row[1]))
	}
	b.WriteString("\n")
}

func writeHealth(b *strings.Builder, s State) {
	fmt.Fprintf(b, "## Health Score: %d/100\n\n", s.HealthScore)
	if len(s.Breakdown) > 0 {
		b.WriteString("| Item | Points |\n|---|---|\n")
		for _, item := range s.Breakdown {
			if !item.Present {
				fmt.Fprintf(b, "| %s | n/a |\n", item.Item)
				continue
			}
			fmt.Fprintf(b, "| %s | %d/%d |\n", item.Item, item.Earned, item.Max)
		}
		b.WriteString("\n")
	}

	if len(s.Recommendations) > 0 {
		b.WriteString("### Recommendations\n\n")
		for i, rec := range s.Recommendations {
			fmt.Fprintf(b, "%d. **%s** (%s): %s", i+1, escape(rec.Title), rec.Priority, escape(rec.Action))
			if rec.Metric != "" {
				fmt.Fprintf(b, " _%s_", escape(rec.Metric))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m := s.NextMilestone; m != nil {
		fmt.Fprintf(b, "### Next Milestone: %s → %s\n\n", escape(m.CurrentStage), escape(m.NextStage))
		for _, req := range m.Requirements {
			fmt.Fprintf(b, "- %s\n", escape(req))
		}
		b.WriteString("\n")
	}
}

func writePrediction(b *strings.Builder, r SubReport[models.PredictionResult]) {
	b.WriteString("## Prediction\n\n")
	if !writeStatus(b, r.Status, r.Error) {
		return
	}
	writeOutcome(b, "Practical prediction", r.Data.PracticalPrediction)
	writeOutcome(b, "Without hard-work adjustment", r.Data.NoHardworkAdjustment)
	b.WriteString("\n")
}

func writeOutcome(b *strings.Builder, name string, o models.PredictionOutcome) {
	if score, ok := o.Score(); ok {
		fmt.Fprintf(b, "- **%s:** %s (%.1f%%)\n", name, escape(o.Label), score*100)
		return
	}
	fmt.Fprintf(b, "- **%s:** %s\n", name, escape(o.Label))
}

func writePeerComparison(b *strings.Builder, r SubReport[models.PeerComparisonReport]) {
	b.WriteString("## Peer Comparison\n\n")
	if !writeStatus(b, r.Status, r.Error) {
		return
	}
	peer := r.Data
	if len(peer.SimilarStartups) > 0 {
		fmt.Fprintf(b, "Similar startups: %s\n\n", escape(strings.Join(peer.SimilarStartups, ", ")))
	}
	writeList(b, "Strengths", peer.Pros)
	writeList(b, "Weaknesses", peer.Cons)

	if len(peer.RawComparison) > 0 {
		b.WriteString("| Feature | Startup | Industry average |\n|---|---|---|\n")
		for _, row := range peer.RawComparison {
			fmt.Fprintf(b, "| %s | %s | %s |\n", escape(row.Feature), number(row.StartupValue), number(row.IndustryAvg))
		}
		b.WriteString("\n")
	}
	if len(peer.BarChartData) > 0 {
		b.WriteString("| Feature | z-score | |\n|---|---|---|\n")
		for _, bar := range peer.BarChartData {
			fmt.Fprintf(b, "| %s | %.2f | %s |\n", escape(bar.Feature), bar.ZScore, bar.Fill)
		}
		b.WriteString("\n")
	}
}

func writePeerSelection(b *strings.Builder, r PeerSelection) {
	if r.Status == StatusIdle {
		return
	}
	heading := "## Selected Peer"
	if r.SelectedPeer != "" {
		heading += ": " + escape(r.SelectedPeer)
	}
	b.WriteString(heading + "\n\n")
	if !writeStatus(b, r.Status, r.Error) {
		return
	}
	writeList(b, "Pros", r.Data.Pros)
	writeList(b, "Cons", r.Data.Cons)
}

// writeStatus renders non-success states and reports whether data follows.
func writeStatus(b *strings.Builder, status Status, msg string) bool {
	switch status {
	case StatusSuccess:
		return true
	case StatusLoading:
		b.WriteString("_Loading…_\n\n")
	case StatusError:
		fmt.Fprintf(b, "> %s\n\n", escape(msg))
	default:
		b.WriteString("_Not requested._\n\n")
	}
	return false
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", escape(item))
	}
	b.WriteString("\n")
}

func number(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"<", "&lt;",
	">", "&gt;",
	"`", "\\`",
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
