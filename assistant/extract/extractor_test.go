package extract

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/contract"
)

func TestNewConstructorFailureIsConfiguration(t *testing.T) {
	t.Parallel()

	// Wiring problems are configuration errors, not extraction errors.
	_, err := New(context.Background(), nil, "   ")
	if !errors.Is(err, contractx.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNormalizeBlankPeriodBecomesUnknown(t *testing.T) {
	t.Parallel()

	query, err := normalize(llmOutput{
		ResponseText: "Sales held steady.",
		Products:     []string{" Energy Bars ", ""},
		TimePeriod:   "  ",
	})
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if query.TimePeriod != contractx.TimePeriodUnknown {
		t.Fatalf("time period = %q, want unknown sentinel", query.TimePeriod)
	}
	if len(query.Products) != 1 || query.Products[0] != "Energy Bars" {
		t.Fatalf("unexpected products: %v", query.Products)
	}
	if query.HasTimePeriod() {
		t.Fatal("unknown period must not count as recognized")
	}
}

func TestNormalizeEmptyAnswerIsExtractionError(t *testing.T) {
	t.Parallel()

	_, err := normalize(llmOutput{ResponseText: "   "})
	if !errors.Is(err, contractx.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestNormalizeKeepsRecognizedPeriod(t *testing.T) {
	t.Parallel()

	query, err := normalize(llmOutput{
		ResponseText: "Expect around 500 units.",
		Products:     []string{"Energy Bars"},
		TimePeriod:   "next month",
	})
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if !query.HasTimePeriod() || !query.HasProducts() {
		t.Fatalf("expected recognized period and products: %+v", query)
	}
}
