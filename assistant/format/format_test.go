package format

import (
	"strings"
	"testing"

	contractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/contract"
)

func sampleResult() contractx.AugmentedResult {
	return contractx.AugmentedResult{
		Query: contractx.ExtractedQuery{
			AnswerText: "Energy Bars sold 500 units last month.",
			Products:   []string{"Energy Bars"},
			TimePeriod: "next month",
		},
		Insights: contractx.MarketInsights{
			MarketTrends: []contractx.MarketTrend{
				{Name: "Fitness boom", Impact: "Positive", Description: "Demand up 8%"},
				{Name: "Label shift", Impact: "Mixed", Description: "Packaging redesigns"},
				{Description: "Unnamed trend"},
			},
			CompetitiveLandscape: []contractx.CompetitorMove{
				{Name: "NewBar Inc", Action: "Market Entry", Impact: "Negative", Description: "Entered last month"},
			},
			RegulatoryConsiderations: nil,
		},
	}
}

func TestAugmentedResultIdempotent(t *testing.T) {
	t.Parallel()

	result := sampleResult()
	first := AugmentedResult(result)
	second := AugmentedResult(result)
	if first != second {
		t.Fatal("formatting must be deterministic")
	}
}

func TestAugmentedResultSections(t *testing.T) {
	t.Parallel()

	out := AugmentedResult(sampleResult())

	for _, header := range []string{
		"## 📊 Historical Data Analysis",
		"## 📈 Market Trends",
		"## 🏢 Competitive Landscape",
		"## 📝 Regulatory Considerations",
	} {
		if !strings.Contains(out, header) {
			t.Fatalf("missing section %q in:\n%s", header, out)
		}
	}

	if !strings.Contains(out, "* **Fitness boom** (🟢 **Positive**): Demand up 8%") {
		t.Fatalf("positive trend not annotated:\n%s", out)
	}
	if !strings.Contains(out, "* **NewBar Inc** - Market Entry (🔴 **Negative**): Entered last month") {
		t.Fatalf("competitor bullet malformed:\n%s", out)
	}
	// Nameless entries render description-only bullets.
	if !strings.Contains(out, "* Unnamed trend") {
		t.Fatalf("nameless trend missing:\n%s", out)
	}
}

func TestAugmentedResultEmptySectionBody(t *testing.T) {
	t.Parallel()

	out := AugmentedResult(sampleResult())

	// Regulatory list is empty: header present, body empty.
	idx := strings.Index(out, "## 📝 Regulatory Considerations")
	if idx < 0 {
		t.Fatalf("regulatory header missing:\n%s", out)
	}
	tail := strings.TrimSpace(out[idx+len("## 📝 Regulatory Considerations"):])
	if tail != "" {
		t.Fatalf("expected empty regulatory body, got %q", tail)
	}

	// An empty trends list renders a header with an empty body too.
	bare := AugmentedResult(contractx.AugmentedResult{
		Query: contractx.ExtractedQuery{AnswerText: "Flat sales.", Products: []string{"Energy Bars"}, TimePeriod: "next month"},
	})
	start := strings.Index(bare, "## 📈 Market Trends")
	end := strings.Index(bare, "## 🏢 Competitive Landscape")
	if start < 0 || end < 0 || start > end {
		t.Fatalf("sections out of order:\n%s", bare)
	}
	body := bare[start+len("## 📈 Market Trends") : end]
	if got := strings.TrimSpace(body); got != "---" {
		t.Fatalf("expected empty market trends body before the divider, got %q", got)
	}
}

func TestUnrecognizedImpactUnannotated(t *testing.T) {
	t.Parallel()

	out := AugmentedResult(sampleResult())
	if !strings.Contains(out, "* **Label shift** (**Mixed**): Packaging redesigns") {
		t.Fatalf("unrecognized impact must render without a marker:\n%s", out)
	}
}

func TestPlainAnswerVerbatim(t *testing.T) {
	t.Parallel()

	text := "Sales were flat.\nNo trend detected."
	if got := PlainAnswer(text); got != text {
		t.Fatalf("plain answer mutated: %q", got)
	}
}

func TestInventoryAnswerCitesSource(t *testing.T) {
	t.Parallel()

	got := InventoryAnswer(contractx.InventoryAnswer{AnswerText: "500 Energy Bars in stock.", SourceID: "INV-3"})
	if got != "500 Energy Bars in stock. (Inventory ID: INV-3)" {
		t.Fatalf("unexpected rendering: %q", got)
	}

	noSource := InventoryAnswer(contractx.InventoryAnswer{AnswerText: "Stock level unavailable."})
	if noSource != "Stock level unavailable." {
		t.Fatalf("unexpected rendering without source: %q", noSource)
	}
}
