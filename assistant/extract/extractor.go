package extract

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/contract"
	digestx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/digest"
)

// Extractor runs the structured query-extraction call.
type Extractor struct {
	runner compose.Runnable[map[string]any, llmOutput]
}

var _ contractx.Extractor = (*Extractor)(nil)

type llmOutput struct {
	ResponseText string   `json:"response_text"`
	Products     []string `json:"products"`
	TimePeriod   string   `json:"time_period"`
}

func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Extractor, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: extractor prompt is empty", contractx.ErrConfiguration)
	}
	runner, err := compileExtractionGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
	}
	return &Extractor{runner: runner}, nil
}

func (e *Extractor) Extract(ctx context.Context, question string, digest contractx.SalesDigest) (contractx.ExtractedQuery, error) {
	if strings.TrimSpace(question) == "" {
		return contractx.ExtractedQuery{}, fmt.Errorf("%w: question is empty", contractx.ErrValidation)
	}

	digestJSON, err := digestx.JSON(digest)
	if err != nil {
		return contractx.ExtractedQuery{}, fmt.Errorf("%w: %v", contractx.ErrExtraction, err)
	}

	out, err := e.runner.Invoke(ctx, map[string]any{
		"digest":   digestJSON,
		"question": question,
	})
	if err != nil {
		return contractx.ExtractedQuery{}, fmt.Errorf("%w: extraction invoke: %v", contractx.ErrExtraction, err)
	}

	query, err := normalize(out)
	if err != nil {
		return contractx.ExtractedQuery{}, err
	}

	log.Debug().
		Strs("products", query.Products).
		Str("time_period", query.TimePeriod).
		Msg("query extracted")

	return query, nil
}

// normalize validates the model output eagerly at the API boundary and maps
// a missing time period to the "unknown" sentinel.
func normalize(out llmOutput) (contractx.ExtractedQuery, error) {
	answer := strings.TrimSpace(out.ResponseText)
	if answer == "" {
		return contractx.ExtractedQuery{}, fmt.Errorf("%w: response_text is empty", contractx.ErrExtraction)
	}

	products := make([]string, 0, len(out.Products))
	for _, p := range out.Products {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			products = append(products, trimmed)
		}
	}

	period := strings.TrimSpace(out.TimePeriod)
	if period == "" {
		period = contractx.TimePeriodUnknown
	}

	return contractx.ExtractedQuery{
		AnswerText: answer,
		Products:   products,
		TimePeriod: period,
	}, nil
}
