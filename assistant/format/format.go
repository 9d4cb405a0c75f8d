// Package format renders pipeline results as Markdown. Everything here is
// deterministic string templating; the same input always yields the same
// output.
package format

import (
	"fmt"
	"strings"

	contractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/contract"
)

const divider = "---"

// Impact markers. Unrecognized impact values render unannotated.
var impactMarkers = map[string]string{
	contractx.ImpactPositive: "🟢",
	contractx.ImpactNegative: "🔴",
	contractx.ImpactNeutral:  "🔵",
}

// PlainAnswer renders a non-augmented answer verbatim.
func PlainAnswer(text string) string {
	return text
}

// InventoryAnswer renders the inventory answer with its grounding id.
func InventoryAnswer(answer contractx.InventoryAnswer) string {
	if answer.SourceID == "" {
		return answer.AnswerText
	}
	return fmt.Sprintf("%s (Inventory ID: %s)", answer.AnswerText, answer.SourceID)
}

// AugmentedResult renders the four-section Markdown body: historical
// analysis plus the three insight lists. Empty lists produce a section with
// an empty body.
func AugmentedResult(result contractx.AugmentedResult) string {
	var b strings.Builder

	b.WriteString("## 📊 Historical Data Analysis\n")
	b.WriteString(result.Query.AnswerText)
	b.WriteString("\n\n" + divider + "\n\n")

	b.WriteString("## 📈 Market Trends\n")
	b.WriteString(trendBullets(result.Insights.MarketTrends))
	b.WriteString("\n" + divider + "\n\n")

	b.WriteString("## 🏢 Competitive Landscape\n")
	b.WriteString(competitorBullets(result.Insights.CompetitiveLandscape))
	b.WriteString("\n" + divider + "\n\n")

	b.WriteString("## 📝 Regulatory Considerations\n")
	b.WriteString(regulationBullets(result.Insights.RegulatoryConsiderations))

	return strings.TrimRight(b.String(), "\n")
}

func annotateImpact(impact string) string {
	if marker, ok := impactMarkers[impact]; ok {
		return fmt.Sprintf("%s **%s**", marker, impact)
	}
	if impact == "" {
		return ""
	}
	return fmt.Sprintf("**%s**", impact)
}

func trendBullets(trends []contractx.MarketTrend) string {
	lines := make([]string, 0, len(trends))
	for _, t := range trends {
		if t.Name == "" {
			lines = append(lines, fmt.Sprintf("* %s", t.Description))
			continue
		}
		lines = append(lines, fmt.Sprintf("* **%s** (%s): %s", t.Name, annotateImpact(t.Impact), t.Description))
	}
	return joinBullets(lines)
}

func competitorBullets(moves []contractx.CompetitorMove) string {
	lines := make([]string, 0, len(moves))
	for _, m := range moves {
		if m.Name == "" {
			lines = append(lines, fmt.Sprintf("* %s", m.Description))
			continue
		}
		lines = append(lines, fmt.Sprintf("* **%s** - %s (%s): %s", m.Name, m.Action, annotateImpact(m.Impact), m.Description))
	}
	return joinBullets(lines)
}

func regulationBullets(regs []contractx.Regulation) string {
	lines := make([]string, 0, len(regs))
	for _, r := range regs {
		if r.Name == "" {
			lines = append(lines, fmt.Sprintf("* %s", r.Description))
			continue
		}
		lines = append(lines, fmt.Sprintf("* **%s** - %s (%s): %s", r.Name, r.Timeline, annotateImpact(r.Impact), r.Description))
	}
	return joinBullets(lines)
}

func joinBullets(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
