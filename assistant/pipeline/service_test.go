package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/contract"
	sessionx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/session"
)

type fakeExtractor struct {
	resp  contractx.ExtractedQuery
	err   error
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, question string, digest contractx.SalesDigest) (contractx.ExtractedQuery, error) {
	f.calls++
	if f.err != nil {
		return contractx.ExtractedQuery{}, f.err
	}
	return f.resp, nil
}

type fakeResponder struct {
	resp  contractx.InventoryAnswer
	err   error
	calls int
}

func (f *fakeResponder) AnswerInventory(ctx context.Context, products []string) (contractx.InventoryAnswer, error) {
	f.calls++
	if f.err != nil {
		return contractx.InventoryAnswer{}, f.err
	}
	return f.resp, nil
}

type fakeAugmenter struct {
	insights contractx.MarketInsights
	err      error
	calls    int
}

func (f *fakeAugmenter) Augment(ctx context.Context, query contractx.ExtractedQuery) (contractx.AugmentedResult, error) {
	f.calls++
	if f.err != nil {
		return contractx.AugmentedResult{}, f.err
	}
	return contractx.AugmentedResult{Query: query, Insights: f.insights}, nil
}

func newTestAssistant(t *testing.T, extractor *fakeExtractor, responder *fakeResponder, augmenter *fakeAugmenter) *Assistant {
	t.Helper()

	a, err := New(contractx.SalesDigest{}, extractor, responder, augmenter)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestHandleQueryRunsAllStages(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{resp: contractx.ExtractedQuery{
		AnswerText: "Protein Powder sold 1,200 units in Q3.",
		Products:   []string{"Protein Powder"},
		TimePeriod: "next quarter",
	}}
	responder := &fakeResponder{resp: contractx.InventoryAnswer{
		AnswerText: "There are 500 units of Protein Powder in stock.",
		SourceID:   "INV-3",
	}}
	augmenter := &fakeAugmenter{insights: contractx.MarketInsights{
		MarketTrends: []contractx.MarketTrend{
			{Name: "Fitness boom", Impact: contractx.ImpactPositive, Description: "Gym memberships up"},
		},
	}}

	a := newTestAssistant(t, extractor, responder, augmenter)
	sess := sessionx.New("alice", nil)

	reply, err := a.HandleQuery(context.Background(), sess, "How will Protein Powder sell next quarter?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	if extractor.calls != 1 || responder.calls != 1 || augmenter.calls != 1 {
		t.Fatalf("stage calls = %d/%d/%d, want 1/1/1", extractor.calls, responder.calls, augmenter.calls)
	}
	if !strings.Contains(reply.Inventory, "INV-3") {
		t.Fatalf("inventory reply %q does not cite the source record", reply.Inventory)
	}
	if !reply.Augmented {
		t.Fatal("reply not marked augmented")
	}
	if !strings.Contains(reply.Body, "## 📈 Market Trends") {
		t.Fatalf("augmented body missing market trends section:\n%s", reply.Body)
	}
	if !strings.Contains(reply.Body, "Protein Powder sold 1,200 units in Q3.") {
		t.Fatalf("augmented body missing historical answer:\n%s", reply.Body)
	}
}

func TestHandleQueryWithoutProductsSkipsInventoryAndAugmentation(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{resp: contractx.ExtractedQuery{
		AnswerText: "I can help with sales forecasts. Which product are you interested in?",
		TimePeriod: "next quarter",
	}}
	responder := &fakeResponder{}
	augmenter := &fakeAugmenter{}

	a := newTestAssistant(t, extractor, responder, augmenter)
	sess := sessionx.New("alice", nil)

	reply, err := a.HandleQuery(context.Background(), sess, "Hello there")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	if responder.calls != 0 {
		t.Fatalf("responder called %d times, want 0", responder.calls)
	}
	if augmenter.calls != 0 {
		t.Fatalf("augmenter called %d times, want 0", augmenter.calls)
	}
	if reply.Body != extractor.resp.AnswerText {
		t.Fatalf("body = %q, want the extracted answer verbatim", reply.Body)
	}
	if reply.Inventory != "" {
		t.Fatalf("inventory = %q, want empty", reply.Inventory)
	}
	if reply.Augmented {
		t.Fatal("reply marked augmented")
	}
}

func TestHandleQueryUnknownPeriodSkipsAugmentationOnly(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{resp: contractx.ExtractedQuery{
		AnswerText: "Energy Bars averaged 150 units per month.",
		Products:   []string{"Energy Bars"},
		TimePeriod: contractx.TimePeriodUnknown,
	}}
	responder := &fakeResponder{resp: contractx.InventoryAnswer{
		AnswerText: "Energy Bars are out of stock.",
	}}
	augmenter := &fakeAugmenter{}

	a := newTestAssistant(t, extractor, responder, augmenter)
	sess := sessionx.New("alice", nil)

	reply, err := a.HandleQuery(context.Background(), sess, "How are Energy Bars doing?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	if responder.calls != 1 {
		t.Fatalf("responder called %d times, want 1", responder.calls)
	}
	if augmenter.calls != 0 {
		t.Fatalf("augmenter called %d times, want 0", augmenter.calls)
	}
	if reply.Body != extractor.resp.AnswerText {
		t.Fatalf("body = %q, want the plain answer", reply.Body)
	}
}

func TestHandleQueryAugmentationFailureFallsBackToPlainAnswer(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{resp: contractx.ExtractedQuery{
		AnswerText: "Vitamins grew 10% quarter over quarter.",
		Products:   []string{"Vitamins"},
		TimePeriod: "next month",
	}}
	responder := &fakeResponder{resp: contractx.InventoryAnswer{
		AnswerText: "There are 80 units of Vitamins in stock.",
		SourceID:   "INV-7",
	}}
	augmenter := &fakeAugmenter{err: contractx.ErrAugmentationTimeout}

	a := newTestAssistant(t, extractor, responder, augmenter)
	sess := sessionx.New("alice", nil)

	reply, err := a.HandleQuery(context.Background(), sess, "Forecast Vitamins for next month")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	if augmenter.calls != 1 {
		t.Fatalf("augmenter called %d times, want 1", augmenter.calls)
	}
	if reply.Augmented {
		t.Fatal("reply marked augmented after a failed run")
	}
	if reply.Body != extractor.resp.AnswerText {
		t.Fatalf("body = %q, want the plain answer fallback", reply.Body)
	}
	if !strings.Contains(reply.Inventory, "INV-7") {
		t.Fatalf("inventory reply %q lost the source record", reply.Inventory)
	}
}

func TestHandleQueryInventoryFailurePropagates(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{resp: contractx.ExtractedQuery{
		AnswerText: "Protein Powder sold well.",
		Products:   []string{"Protein Powder"},
		TimePeriod: "next quarter",
	}}
	responder := &fakeResponder{err: contractx.ErrInventoryQuery}
	augmenter := &fakeAugmenter{}

	a := newTestAssistant(t, extractor, responder, augmenter)
	sess := sessionx.New("alice", nil)

	_, err := a.HandleQuery(context.Background(), sess, "How will Protein Powder sell?")
	if !errors.Is(err, contractx.ErrInventoryQuery) {
		t.Fatalf("err = %v, want ErrInventoryQuery", err)
	}
	if augmenter.calls != 0 {
		t.Fatalf("augmenter called %d times after inventory failure, want 0", augmenter.calls)
	}
}

func TestHandleQueryRejectsBlankQuestion(t *testing.T) {
	t.Parallel()

	a := newTestAssistant(t, &fakeExtractor{}, &fakeResponder{}, &fakeAugmenter{})
	sess := sessionx.New("alice", nil)

	if _, err := a.HandleQuery(context.Background(), sess, "   "); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("err = %v, want ErrInvalidQuestion", err)
	}
}

func TestHandleQueryRecordsConversationTurn(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{resp: contractx.ExtractedQuery{
		AnswerText: "Protein Powder sold 1,200 units in Q3.",
		Products:   []string{"Protein Powder"},
		TimePeriod: "next quarter",
	}}
	responder := &fakeResponder{resp: contractx.InventoryAnswer{
		AnswerText: "There are 500 units in stock.",
		SourceID:   "INV-3",
	}}
	augmenter := &fakeAugmenter{}

	a := newTestAssistant(t, extractor, responder, augmenter)
	sess := sessionx.New("alice", nil)

	if _, err := a.HandleQuery(context.Background(), sess, "How will Protein Powder sell next quarter?"); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	msgs := sess.Conversation.Messages
	if len(msgs) != 3 {
		t.Fatalf("conversation has %d messages, want 3", len(msgs))
	}
	if msgs[0].Role != sessionx.RoleUser {
		t.Fatalf("first message role = %q, want user", msgs[0].Role)
	}
	if msgs[1].Role != sessionx.RoleAssistant || !strings.Contains(msgs[1].Content, "INV-3") {
		t.Fatalf("second message should be the inventory reply, got %+v", msgs[1])
	}
	if msgs[2].Role != sessionx.RoleAssistant {
		t.Fatalf("third message role = %q, want assistant", msgs[2].Role)
	}
}
