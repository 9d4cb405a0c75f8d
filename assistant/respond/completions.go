package respond

import (
	"context"
	"errors"

	openaisdk "github.com/openai/openai-go"
)

// completionsAPI is the narrow slice of the chat-completions API the
// responder needs. Kept as an interface so both tool-calling rounds are
// scriptable in tests.
type completionsAPI interface {
	Complete(ctx context.Context, params openaisdk.ChatCompletionNewParams) (openaisdk.ChatCompletionMessage, error)
}

// sdkCompletions adapts the OpenAI SDK client to the completionsAPI
// interface.
type sdkCompletions struct {
	client *openaisdk.Client
}

var _ completionsAPI = sdkCompletions{}

func (s sdkCompletions) Complete(ctx context.Context, params openaisdk.ChatCompletionNewParams) (openaisdk.ChatCompletionMessage, error) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openaisdk.ChatCompletionMessage{}, err
	}
	if len(resp.Choices) == 0 {
		return openaisdk.ChatCompletionMessage{}, errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message, nil
}
