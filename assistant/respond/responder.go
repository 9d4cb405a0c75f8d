package respond

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog/log"

	contractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/contract"
)

const toolGetInventory = "get_inventory"

// Responder runs the two-round tool-calling protocol: the model decides
// which products need lookups, the orchestrator resolves them against the
// real catalog, and the model phrases the final grounded answer.
type Responder struct {
	api          completionsAPI
	catalog      contractx.Catalog
	model        string
	systemPrompt string
}

var _ contractx.Responder = (*Responder)(nil)

func New(client *openaisdk.Client, catalog contractx.Catalog, model string, systemPrompt string) (*Responder, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrConfiguration)
	}
	if catalog == nil {
		return nil, fmt.Errorf("%w: inventory catalog is required", contractx.ErrConfiguration)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: model is required", contractx.ErrConfiguration)
	}
	return newWithAPI(sdkCompletions{client: client}, catalog, model, systemPrompt), nil
}

func newWithAPI(api completionsAPI, catalog contractx.Catalog, model string, systemPrompt string) *Responder {
	return &Responder{
		api:          api,
		catalog:      catalog,
		model:        strings.TrimSpace(model),
		systemPrompt: strings.TrimSpace(systemPrompt),
	}
}

func (r *Responder) AnswerInventory(ctx context.Context, products []string) (contractx.InventoryAnswer, error) {
	if len(products) == 0 {
		return contractx.InventoryAnswer{}, fmt.Errorf("%w: no products to look up", contractx.ErrValidation)
	}

	messages := []openaisdk.ChatCompletionMessageParamUnion{
		openaisdk.SystemMessage(r.systemPrompt),
		openaisdk.UserMessage(fmt.Sprintf("What is the inventory for the following products: %s", strings.Join(products, ", "))),
	}

	first, err := r.api.Complete(ctx, openaisdk.ChatCompletionNewParams{
		Model:       shared.ChatModel(r.model),
		Messages:    messages,
		Tools:       inventoryTools(),
		Temperature: openaisdk.Float(0.7),
	})
	if err != nil {
		return contractx.InventoryAnswer{}, fmt.Errorf("%w: tool planning round: %v", contractx.ErrInventoryQuery, err)
	}

	messages = append(messages, first.ToParam())

	toolMessages, err := resolveToolCalls(first.ToolCalls, r.catalog)
	if err != nil {
		return contractx.InventoryAnswer{}, err
	}
	messages = append(messages, toolMessages...)

	second, err := r.api.Complete(ctx, openaisdk.ChatCompletionNewParams{
		Model:          shared.ChatModel(r.model),
		Messages:       messages,
		Tools:          inventoryTools(),
		ResponseFormat: answerResponseFormat(),
	})
	if err != nil {
		return contractx.InventoryAnswer{}, fmt.Errorf("%w: answer round: %v", contractx.ErrInventoryQuery, err)
	}

	var answer contractx.InventoryAnswer
	if err := json.Unmarshal([]byte(second.Content), &answer); err != nil {
		return contractx.InventoryAnswer{}, fmt.Errorf("%w: decode answer: %v", contractx.ErrInventoryQuery, err)
	}
	if strings.TrimSpace(answer.AnswerText) == "" {
		return contractx.InventoryAnswer{}, fmt.Errorf("%w: answer is empty", contractx.ErrInventoryQuery)
	}

	log.Debug().Str("source", answer.SourceID).Msg("inventory answer composed")

	return answer, nil
}

// resolveToolCalls grounds each requested lookup in the catalog. A missing
// product yields an explicit JSON null payload so the model reports
// unavailability instead of fabricating a quantity. Every tool call gets a
// response, including ones for undeclared tools.
func resolveToolCalls(calls []openaisdk.ChatCompletionMessageToolCall, catalog contractx.Catalog) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	results := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(calls))
	for _, call := range calls {
		if call.Function.Name != toolGetInventory {
			results = append(results, openaisdk.ToolMessage(fmt.Sprintf("tool %q is not available", call.Function.Name), call.ID))
			continue
		}

		var args struct {
			ProductName string `json:"product_name"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("%w: invalid %s arguments: %v", contractx.ErrInventoryQuery, toolGetInventory, err)
		}

		payload := "null"
		if record, ok := catalog.Lookup(args.ProductName); ok {
			raw, err := json.Marshal(record)
			if err != nil {
				return nil, fmt.Errorf("%w: encode inventory record: %v", contractx.ErrInventoryQuery, err)
			}
			payload = string(raw)
		} else {
			log.Debug().Str("product", args.ProductName).Msg("no inventory record")
		}

		results = append(results, openaisdk.ToolMessage(payload, call.ID))
	}
	return results, nil
}

func inventoryTools() []openaisdk.ChatCompletionToolParam {
	return []openaisdk.ChatCompletionToolParam{
		{
			Function: shared.FunctionDefinitionParam{
				Name:        toolGetInventory,
				Description: openaisdk.String("Get the inventory of the product"),
				Parameters: shared.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"product_name": map[string]any{
							"type":        "string",
							"description": "The name of the product",
						},
					},
					"required":             []string{"product_name"},
					"additionalProperties": false,
				},
				Strict: openaisdk.Bool(true),
			},
		},
	}
}

func answerResponseFormat() openaisdk.ChatCompletionNewParamsResponseFormatUnion {
	return openaisdk.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
			JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        "inventory_answer",
				Description: openaisdk.String("Natural-language inventory answer with the grounding record id"),
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"answer": map[string]any{"type": "string"},
						"source": map[string]any{"type": "string"},
					},
					"required":             []string{"answer", "source"},
					"additionalProperties": false,
				},
				Strict: openaisdk.Bool(true),
			},
		},
	}
}
