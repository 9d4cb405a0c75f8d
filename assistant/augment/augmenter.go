package augment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	contractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/contract"
)

const (
	defaultPollInterval = time.Second
	defaultRunTimeout   = 120 * time.Second
)

// Run status vocabulary as observed on the wire. Anything not listed here
// means: keep polling.
const (
	statusCompleted = "completed"
	statusFailed    = "failed"
	statusCancelled = "cancelled"
	statusExpired   = "expired"
)

// threadAPI is the narrow slice of the assistant-thread API the augmenter
// needs. Kept as an interface so run transitions are simulatable in tests.
type threadAPI interface {
	CreateThread(ctx context.Context) (string, error)
	AddMessage(ctx context.Context, threadID, content string) error
	StartRun(ctx context.Context, threadID, assistantID string) (string, error)
	RunStatus(ctx context.Context, threadID, runID string) (string, error)
	LatestMessage(ctx context.Context, threadID string) (string, error)
}

// Augmenter enriches an extracted query with market insights from a stateful
// assistant run. Each call creates a fresh thread; no context is shared
// across queries.
type Augmenter struct {
	api         threadAPI
	assistantID string
	template    string

	pollInterval time.Duration
	runTimeout   time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

var _ contractx.Augmenter = (*Augmenter)(nil)

// Option customizes an Augmenter.
type Option func(*Augmenter)

func WithPollInterval(d time.Duration) Option {
	return func(a *Augmenter) {
		if d > 0 {
			a.pollInterval = d
		}
	}
}

func WithRunTimeout(d time.Duration) Option {
	return func(a *Augmenter) {
		if d > 0 {
			a.runTimeout = d
		}
	}
}

func New(client *openaisdk.Client, assistantID string, template string, opts ...Option) (*Augmenter, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrConfiguration)
	}
	if strings.TrimSpace(assistantID) == "" {
		return nil, fmt.Errorf("%w: assistant id is required", contractx.ErrConfiguration)
	}
	return newWithAPI(sdkThreads{client: client}, assistantID, template, opts...), nil
}

func newWithAPI(api threadAPI, assistantID string, template string, opts ...Option) *Augmenter {
	a := &Augmenter{
		api:          api,
		assistantID:  strings.TrimSpace(assistantID),
		template:     strings.TrimSpace(template),
		pollInterval: defaultPollInterval,
		runTimeout:   defaultRunTimeout,
		now:          time.Now,
		sleep:        time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

func (a *Augmenter) Augment(ctx context.Context, query contractx.ExtractedQuery) (contractx.AugmentedResult, error) {
	if !query.HasProducts() || !query.HasTimePeriod() {
		return contractx.AugmentedResult{}, fmt.Errorf("%w: augmentation needs products and a recognized time period", contractx.ErrValidation)
	}

	product := query.Products[0]
	content := strings.NewReplacer(
		"{product}", product,
		"{time_period}", query.TimePeriod,
		"{forecast}", query.AnswerText,
	).Replace(a.template)

	threadID, err := a.api.CreateThread(ctx)
	if err != nil {
		return contractx.AugmentedResult{}, fmt.Errorf("%w: create thread: %v", contractx.ErrAugmentationRun, err)
	}
	if err := a.api.AddMessage(ctx, threadID, content); err != nil {
		return contractx.AugmentedResult{}, fmt.Errorf("%w: add message: %v", contractx.ErrAugmentationRun, err)
	}
	runID, err := a.api.StartRun(ctx, threadID, a.assistantID)
	if err != nil {
		return contractx.AugmentedResult{}, fmt.Errorf("%w: start run: %v", contractx.ErrAugmentationRun, err)
	}

	log.Debug().Str("thread", threadID).Str("run", runID).Str("product", product).Msg("augmentation run started")

	if err := a.waitForRun(ctx, threadID, runID); err != nil {
		return contractx.AugmentedResult{}, err
	}

	body, err := a.api.LatestMessage(ctx, threadID)
	if err != nil {
		return contractx.AugmentedResult{}, fmt.Errorf("%w: read response: %v", contractx.ErrAugmentationRun, err)
	}

	insights, err := parseInsights(body)
	if err != nil {
		return contractx.AugmentedResult{}, err
	}

	return contractx.AugmentedResult{Query: query, Insights: insights}, nil
}

// waitForRun polls on a fixed interval until the run reaches a terminal
// status or the deadline elapses.
func (a *Augmenter) waitForRun(ctx context.Context, threadID, runID string) error {
	deadline := a.now().Add(a.runTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", contractx.ErrAugmentationRun, err)
		}

		status, err := a.api.RunStatus(ctx, threadID, runID)
		if err != nil {
			return fmt.Errorf("%w: retrieve run: %v", contractx.ErrAugmentationRun, err)
		}

		switch status {
		case statusCompleted:
			return nil
		case statusFailed, statusCancelled, statusExpired:
			return &contractx.RunError{Status: status}
		}

		if !a.now().Before(deadline) {
			return fmt.Errorf("%w: run=%s after %s", contractx.ErrAugmentationTimeout, runID, a.runTimeout)
		}
		a.sleep(a.pollInterval)
	}
}

// parseInsights validates the assistant response eagerly. There is no
// placeholder fallback: an unparseable body is surfaced as a failure and the
// caller decides the user-facing degradation.
func parseInsights(body string) (contractx.MarketInsights, error) {
	var insights contractx.MarketInsights
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &insights); err != nil {
		return contractx.MarketInsights{}, fmt.Errorf("%w: %v", contractx.ErrAugmentationParse, err)
	}
	return insights, nil
}
